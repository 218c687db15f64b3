package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"eventregistration/internal/domain"
)

// IntN returns a uniform integer in [0, n). rand.IntN satisfies it.
type IntN func(n int) int

type luckyNumberAllocator struct {
	repo        domain.RegistrantRepository
	maxAttempts int
	intN        IntN
	recorder    Recorder
}

// NewLuckyNumberAllocator returns an allocator that probes the repository at most maxAttempts
// times. intN may be nil to use math/rand/v2; recorder may be nil.
func NewLuckyNumberAllocator(repo domain.RegistrantRepository, maxAttempts int, intN IntN, recorder Recorder) domain.LuckyNumberAllocator {
	if intN == nil {
		intN = rand.IntN
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &luckyNumberAllocator{repo: repo, maxAttempts: maxAttempts, intN: intN, recorder: orNop(recorder)}
}

func (a *luckyNumberAllocator) Allocate(ctx context.Context) (domain.Allocation, error) {
	capacity := domain.MaxLuckyNumber - domain.MinLuckyNumber + 1
	active, err := a.repo.Count(ctx)
	if err != nil {
		return domain.Allocation{}, fmt.Errorf("count registrants: %w", err)
	}
	if active >= capacity {
		a.recorder.ObserveAllocation(0, true)
		return domain.Allocation{Exhausted: true}, nil
	}

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		candidate := domain.MinLuckyNumber + a.intN(capacity)
		taken, err := a.repo.ExistsByLuckyNumber(ctx, candidate)
		if err != nil {
			return domain.Allocation{}, fmt.Errorf("check lucky number %d: %w", candidate, err)
		}
		if !taken {
			a.recorder.ObserveAllocation(attempt, false)
			return domain.Allocation{Number: candidate, Attempts: attempt}, nil
		}
	}
	a.recorder.ObserveAllocation(a.maxAttempts, true)
	return domain.Allocation{Attempts: a.maxAttempts, Exhausted: true}, nil
}
