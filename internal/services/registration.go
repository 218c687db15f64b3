package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventregistration/internal/domain"
)

// maxPersistAttempts bounds how often Register draws a fresh lucky number after the
// store reports the drawn one was claimed concurrently.
const maxPersistAttempts = 3

const mirrorAppendWarning = "registration saved, but the spreadsheet mirror could not be updated"

// RegistrationConfig holds the collaborators of the registration workflow.
type RegistrationConfig struct {
	Registrants    domain.RegistrantRepository
	Allocator      domain.LuckyNumberAllocator
	Mirror         domain.SpreadsheetMirror
	Detector       domain.CountryDetector
	HostEmail      string
	DefaultCountry string
	Clock          domain.Clock
	Logger         *slog.Logger
	Recorder       Recorder
}

type registrationService struct {
	registrants    domain.RegistrantRepository
	allocator      domain.LuckyNumberAllocator
	mirror         domain.SpreadsheetMirror
	detector       domain.CountryDetector
	hostEmail      string
	defaultCountry string
	clock          domain.Clock
	logger         *slog.Logger
	recorder       Recorder
}

// NewRegistrationService creates the attendee registration workflow.
func NewRegistrationService(cfg RegistrationConfig) domain.RegistrationService {
	s := &registrationService{
		registrants:    cfg.Registrants,
		allocator:      cfg.Allocator,
		mirror:         cfg.Mirror,
		detector:       cfg.Detector,
		hostEmail:      cfg.HostEmail,
		defaultCountry: cfg.DefaultCountry,
		clock:          cfg.Clock,
		logger:         cfg.Logger,
		recorder:       orNop(cfg.Recorder),
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.defaultCountry == "" {
		s.defaultCountry = "IN"
	}
	return s
}

func (s *registrationService) Status(ctx context.Context, identity domain.Identity, clientIP string) (*domain.RegistrationStatus, error) {
	if identity.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	if identity.IsHost(s.hostEmail) {
		return &domain.RegistrationStatus{State: domain.StateHost, Redirect: domain.RedirectHost}, nil
	}

	existing, err := s.registrants.GetByEmail(ctx, identity.Email)
	if err == nil {
		return &domain.RegistrationStatus{
			State:      domain.StateRegistered,
			Redirect:   domain.RedirectHome,
			Registrant: existing,
		}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registrant: %w", err)
	}
	return &domain.RegistrationStatus{
		State:   domain.StateNotRegistered,
		Slots:   domain.Slots(),
		Country: s.detectCountry(ctx, clientIP),
	}, nil
}

// detectCountry never fails: lookup errors fall back to the default country.
func (s *registrationService) detectCountry(ctx context.Context, clientIP string) string {
	if s.detector == nil || clientIP == "" {
		return s.defaultCountry
	}
	country, err := s.detector.Detect(ctx, clientIP)
	if err != nil || country == "" {
		s.logger.DebugContext(ctx, "country detection failed, using default", "ip", clientIP, "err", err)
		return s.defaultCountry
	}
	return country
}

func (s *registrationService) Register(ctx context.Context, identity domain.Identity, form domain.RegistrationForm) (*domain.RegistrationResult, error) {
	if identity.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	if identity.IsHost(s.hostEmail) {
		return nil, domain.ErrHostIdentity
	}

	reg, err := BuildRegistrant(identity, form, s.defaultCountry)
	if err != nil {
		return nil, err
	}

	// Re-submission by a registered identity is a no-op returning the existing record.
	if existing, err := s.registrants.GetByEmail(ctx, identity.Email); err == nil {
		s.recorder.RegistrationCompleted(false)
		return &domain.RegistrationResult{Registrant: existing, Created: false, Redirect: domain.RedirectHome}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registrant: %w", err)
	}

	if err := s.persist(ctx, reg); err != nil {
		return nil, err
	}

	result := &domain.RegistrationResult{Registrant: reg, Created: true, Redirect: domain.RedirectHome}
	if err := s.mirror.AppendRow(ctx, reg.MirrorRow()); err != nil {
		s.logger.WarnContext(ctx, "spreadsheet mirror append failed", "email", reg.Email, "err", err)
		s.recorder.MirrorFailed("append")
		result.MirrorWarning = mirrorAppendWarning
	}
	s.recorder.RegistrationCompleted(true)
	s.logger.InfoContext(ctx, "registrant created", "email", reg.Email, "lucky_number", reg.LuckyNumber)
	return result, nil
}

// persist allocates a lucky number and upserts reg, drawing again when a concurrent
// registration claimed the same number between the check and the write.
func (s *registrationService) persist(ctx context.Context, reg *domain.Registrant) error {
	for attempt := 1; attempt <= maxPersistAttempts; attempt++ {
		alloc, err := s.allocator.Allocate(ctx)
		if err != nil {
			return fmt.Errorf("allocate lucky number: %w", err)
		}
		if alloc.Exhausted {
			return domain.ErrLuckyNumbersExhausted
		}

		now := s.clock()
		reg.LuckyNumber = alloc.Number
		reg.CreatedAt = now
		reg.UpdatedAt = now
		err = s.registrants.Upsert(ctx, reg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrLuckyNumberTaken) {
			return fmt.Errorf("save registrant: %w", err)
		}
		s.logger.WarnContext(ctx, "lucky number claimed concurrently, drawing again", "lucky_number", alloc.Number, "attempt", attempt)
	}
	return domain.ErrLuckyNumberTaken
}

func (s *registrationService) Me(ctx context.Context, identity domain.Identity) (*domain.Registrant, error) {
	if identity.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	reg, err := s.registrants.GetByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registrant: %w", err)
	}
	return reg, nil
}
