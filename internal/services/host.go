package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventregistration/internal/domain"
)

// ArchiveTimeLayout renders archive deletion times in the display timezone.
const ArchiveTimeLayout = "2 Jan 2006, 3:04:05 PM MST"

const notifySuccessMessage = "Emails sent successfully"

// HostConfig holds the collaborators of the host administration workflow.
type HostConfig struct {
	Registrants domain.RegistrantRepository
	Archive     domain.ArchiveRepository
	Mirror      domain.SpreadsheetMirror
	Notifier    domain.NotificationService
	HostEmail   string
	Location    *time.Location
	Clock       domain.Clock
	NewID       func() string
	Logger      *slog.Logger
	Recorder    Recorder
}

type hostService struct {
	registrants domain.RegistrantRepository
	archive     domain.ArchiveRepository
	mirror      domain.SpreadsheetMirror
	notifier    domain.NotificationService
	hostEmail   string
	location    *time.Location
	clock       domain.Clock
	newID       func() string
	logger      *slog.Logger
	recorder    Recorder
}

// NewHostService creates the host-only administration workflow.
func NewHostService(cfg HostConfig) domain.HostService {
	s := &hostService{
		registrants: cfg.Registrants,
		archive:     cfg.Archive,
		mirror:      cfg.Mirror,
		notifier:    cfg.Notifier,
		hostEmail:   cfg.HostEmail,
		location:    cfg.Location,
		clock:       cfg.Clock,
		newID:       cfg.NewID,
		logger:      cfg.Logger,
		recorder:    orNop(cfg.Recorder),
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *hostService) authorize(identity domain.Identity) error {
	if !identity.IsHost(s.hostEmail) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *hostService) ListRegistrants(ctx context.Context, identity domain.Identity, query string) (*domain.RegistrantListing, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	all, err := s.registrants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	shown := FilterRegistrants(all, query)
	return &domain.RegistrantListing{
		Registrants: shown,
		Total:       len(all),
		Shown:       len(shown),
	}, nil
}

func (s *hostService) GetRegistrant(ctx context.Context, identity domain.Identity, email string) (*domain.Registrant, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	reg, err := s.registrants.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registrant: %w", err)
	}
	return reg, nil
}

// DeleteRegistrant archives the registrant, deletes the active row and removes the
// mirror row, in that order. A failure at archive or delete stops the sequence and is
// returned alongside the partial result; a mirror failure only sets MirrorDiverged.
// Nothing is rolled back.
func (s *hostService) DeleteRegistrant(ctx context.Context, identity domain.Identity, email string, confirmed bool) (*domain.DeletionResult, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, domain.ErrConfirmationRequired
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	res := &domain.DeletionResult{Email: email}
	defer func() { s.recorder.DeletionFinished(res.FailedStep) }()

	reg, err := s.registrants.GetByEmail(ctx, email)
	res.Record(domain.StepLookup, err)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return res, domain.ErrNotFound
		}
		return res, fmt.Errorf("get registrant: %w", err)
	}

	archived := domain.NewArchivedRegistrant(s.newID(), reg, s.clock())
	err = s.archive.Create(ctx, archived)
	res.Record(domain.StepArchive, err)
	if err != nil {
		return res, fmt.Errorf("archive registrant: %w", err)
	}
	res.Archive = archived

	err = s.registrants.DeleteByEmail(ctx, email)
	res.Record(domain.StepDelete, err)
	if errors.Is(err, domain.ErrNotFound) {
		// A concurrent deletion won the race; its archive row is kept alongside this one.
		res.AlreadyDeleted = true
		s.logger.WarnContext(ctx, "registrant deleted concurrently, archive row duplicated", "email", email, "archive_id", archived.ID)
		return res, fmt.Errorf("delete registrant: %w", domain.ErrNotFound)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "registrant archived but not deleted", "email", email, "archive_id", archived.ID, "err", err)
		return res, fmt.Errorf("%w: %w", domain.ErrDeletePartial, err)
	}

	err = s.unmirror(ctx, email)
	res.Record(domain.StepUnmirror, err)
	if err != nil {
		res.MirrorDiverged = true
		s.recorder.MirrorFailed("delete")
		s.logger.WarnContext(ctx, "registrant deleted but spreadsheet mirror row remains", "email", email, "err", err)
	}
	s.logger.InfoContext(ctx, "registrant deleted", "email", email, "archive_id", archived.ID)
	return res, nil
}

func (s *hostService) unmirror(ctx context.Context, email string) error {
	row, err := s.mirror.FindRowByColumnValue(ctx, domain.MirrorEmailColumn, email)
	if err != nil {
		return fmt.Errorf("find mirror row: %w", err)
	}
	if err := s.mirror.DeleteRow(ctx, row); err != nil {
		return fmt.Errorf("delete mirror row %d: %w", row, err)
	}
	return nil
}

func (s *hostService) ListArchive(ctx context.Context, identity domain.Identity) ([]*domain.ArchiveEntry, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	rows, err := s.archive.ListByDeletedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	entries := make([]*domain.ArchiveEntry, 0, len(rows))
	for _, a := range rows {
		entries = append(entries, &domain.ArchiveEntry{
			ArchivedRegistrant: a,
			DeletedAtDisplay:   a.DeletedAt.In(s.location).Format(ArchiveTimeLayout),
		})
	}
	return entries, nil
}

func (s *hostService) NotifyAll(ctx context.Context, identity domain.Identity) (*domain.NotifyResult, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	recipients, err := s.registrants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no registrants to notify", domain.ErrInvalidInput)
	}

	sent, err := s.notifier.SendBulk(ctx, recipients)
	s.recorder.NotificationsSent(sent)
	if err != nil {
		return nil, &domain.NotificationError{Sent: sent, Total: len(recipients), Err: err}
	}
	return &domain.NotifyResult{Message: notifySuccessMessage, Sent: sent, Total: len(recipients)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
