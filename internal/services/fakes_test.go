package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"eventregistration/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testHost = "host@example.com"

var errBoom = errors.New("boom")

// fakeRegistrantRepo implements domain.RegistrantRepository for tests. calls counts every
// method invocation so tests can assert the store was never touched.
type fakeRegistrantRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*domain.Registrant
	order     []string
	calls     int
	getErr    error
	upsertErr []error
	existsErr error
	countErr  error
	count     *int
	deleteErr error
	listErr   error
}

func newFakeRegistrantRepo(regs ...*domain.Registrant) *fakeRegistrantRepo {
	f := &fakeRegistrantRepo{byEmail: make(map[string]*domain.Registrant)}
	for _, r := range regs {
		f.byEmail[r.Email] = r
		f.order = append(f.order, r.Email)
	}
	return f
}

func (f *fakeRegistrantRepo) GetByEmail(ctx context.Context, email string) (*domain.Registrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.byEmail[email]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrantRepo) Upsert(ctx context.Context, r *domain.Registrant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.upsertErr) > 0 {
		err := f.upsertErr[0]
		f.upsertErr = f.upsertErr[1:]
		if err != nil {
			return err
		}
	}
	for email, other := range f.byEmail {
		if email != r.Email && other.LuckyNumber == r.LuckyNumber {
			return domain.ErrLuckyNumberTaken
		}
	}
	if _, ok := f.byEmail[r.Email]; !ok {
		f.order = append(f.order, r.Email)
	}
	cp := *r
	f.byEmail[r.Email] = &cp
	return nil
}

func (f *fakeRegistrantRepo) ExistsByLuckyNumber(ctx context.Context, n int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, r := range f.byEmail {
		if r.LuckyNumber == n {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrantRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	if f.count != nil {
		return *f.count, nil
	}
	return len(f.byEmail), nil
}

func (f *fakeRegistrantRepo) DeleteByEmail(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byEmail[email]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byEmail, email)
	for i, e := range f.order {
		if e == email {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRegistrantRepo) List(ctx context.Context) ([]*domain.Registrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.Registrant, 0, len(f.order))
	for _, e := range f.order {
		out = append(out, f.byEmail[e])
	}
	return out, nil
}

func (f *fakeRegistrantRepo) luckyNumbers() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	nums := make([]int, 0, len(f.byEmail))
	for _, r := range f.byEmail {
		nums = append(nums, r.LuckyNumber)
	}
	sort.Ints(nums)
	return nums
}

// fakeArchiveRepo implements domain.ArchiveRepository for tests.
type fakeArchiveRepo struct {
	rows      []*domain.ArchivedRegistrant
	calls     int
	createErr error
	listErr   error
}

func (f *fakeArchiveRepo) Create(ctx context.Context, a *domain.ArchivedRegistrant) error {
	f.calls++
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, a)
	return nil
}

func (f *fakeArchiveRepo) ListByDeletedAt(ctx context.Context) ([]*domain.ArchivedRegistrant, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

// fakeMirror implements domain.SpreadsheetMirror over an in-memory row list.
type fakeMirror struct {
	mu        sync.Mutex
	rows      [][]any
	calls     int
	appendErr error
	findErr   error
	deleteErr error
}

func (f *fakeMirror) AppendRow(ctx context.Context, values []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeMirror) FindRowByColumnValue(ctx context.Context, column int, value string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.findErr != nil {
		return 0, f.findErr
	}
	for i, row := range f.rows {
		if s, ok := row[column].(string); ok && s == value {
			return i, nil
		}
	}
	return 0, domain.ErrNotFound
}

func (f *fakeMirror) DeleteRow(ctx context.Context, rowIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.rows = append(f.rows[:rowIndex], f.rows[rowIndex+1:]...)
	return nil
}

// fakeDetector implements domain.CountryDetector for tests.
type fakeDetector struct {
	country string
	err     error
	calls   int
}

func (f *fakeDetector) Detect(ctx context.Context, ip string) (string, error) {
	f.calls++
	return f.country, f.err
}

// fakeAllocator returns the queued allocations in order.
type fakeAllocator struct {
	allocs []domain.Allocation
	err    error
	calls  int
}

func (f *fakeAllocator) Allocate(ctx context.Context) (domain.Allocation, error) {
	f.calls++
	if f.err != nil {
		return domain.Allocation{}, f.err
	}
	a := f.allocs[0]
	if len(f.allocs) > 1 {
		f.allocs = f.allocs[1:]
	}
	return a, nil
}

// fakeMailer implements domain.Mailer; failOn makes the send to that address fail.
type fakeMailer struct {
	sent   []string
	failOn string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if to == f.failOn {
		return errBoom
	}
	f.sent = append(f.sent, to)
	return nil
}

// fakeRenderer implements domain.EmailTemplateRenderer for tests.
type fakeRenderer struct {
	data []*domain.ReminderEmailData
	err  error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	if d, ok := data.(*domain.ReminderEmailData); ok {
		f.data = append(f.data, d)
	}
	return "subject " + templateName, "<p>html</p>", "text", nil
}

// fakeNotifier implements domain.NotificationService for tests.
type fakeNotifier struct {
	calls int
	sent  int
	err   error
}

func (f *fakeNotifier) SendBulk(ctx context.Context, recipients []*domain.Registrant) (int, error) {
	f.calls++
	if f.err != nil {
		return f.sent, f.err
	}
	return len(recipients), nil
}

// fakeRecorder captures Recorder events.
type fakeRecorder struct {
	mu           sync.Mutex
	allocations  []domain.Allocation
	created      []bool
	deletions    []domain.DeletionStep
	notified     int
	mirrorFailed []string
}

func (f *fakeRecorder) ObserveAllocation(attempts int, exhausted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allocations = append(f.allocations, domain.Allocation{Attempts: attempts, Exhausted: exhausted})
}

func (f *fakeRecorder) RegistrationCompleted(created bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, created)
}

func (f *fakeRecorder) DeletionFinished(failed domain.DeletionStep) {
	f.deletions = append(f.deletions, failed)
}

func (f *fakeRecorder) NotificationsSent(n int) { f.notified += n }

func (f *fakeRecorder) MirrorFailed(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mirrorFailed = append(f.mirrorFailed, op)
}

func intPtr(n int) *int { return &n }

func sampleRegistrant(email, name string, lucky int) *domain.Registrant {
	return &domain.Registrant{
		Email:       email,
		Name:        name,
		Phone:       "+91 98765 43210",
		LuckyNumber: lucky,
		Slot:        domain.SlotMorning,
	}
}
