package domain

import (
	"context"
	"time"
)

// RegistrantListing is a filtered view over one snapshot of active registrants.
// swagger:model RegistrantListing
type RegistrantListing struct {
	Registrants []*Registrant `json:"registrants"`
	// Total is the size of the snapshot, Shown the size after filtering.
	Total int `json:"total"`
	Shown int `json:"shown"`
}

// ArchiveEntry is an archived registrant with its deletion time rendered for display.
// swagger:model ArchiveEntry
type ArchiveEntry struct {
	*ArchivedRegistrant
	DeletedAtDisplay string `json:"deleted_at_display"`
}

// DeletionStep names a step of the archive-then-delete sequence.
type DeletionStep string

const (
	StepLookup   DeletionStep = "lookup"
	StepArchive  DeletionStep = "archive"
	StepDelete   DeletionStep = "delete"
	StepUnmirror DeletionStep = "unmirror"
)

// StepOutcome records how one deletion step ended.
type StepOutcome struct {
	Step  DeletionStep `json:"step"`
	OK    bool         `json:"ok"`
	Error string       `json:"error,omitempty"`
}

// DeletionResult captures how far a deletion got, so partial failures can be reconciled by hand.
// swagger:model DeletionResult
type DeletionResult struct {
	Email          string              `json:"email"`
	Archive        *ArchivedRegistrant `json:"archive,omitempty"`
	Steps          []StepOutcome       `json:"steps"`
	FailedStep     DeletionStep        `json:"failed_step,omitempty"`
	MirrorDiverged bool                `json:"mirror_diverged"`
	// AlreadyDeleted is set when the active row vanished between lookup and delete.
	AlreadyDeleted bool `json:"already_deleted,omitempty"`
}

// Record appends the outcome of step; a non-nil err marks it as the failed step.
func (r *DeletionResult) Record(step DeletionStep, err error) {
	out := StepOutcome{Step: step, OK: err == nil}
	if err != nil {
		out.Error = err.Error()
		r.FailedStep = step
	}
	r.Steps = append(r.Steps, out)
}

// NotifyResult is the aggregate outcome of a bulk notification.
// swagger:model NotifyResult
type NotifyResult struct {
	Message string `json:"message"`
	Sent    int    `json:"sent"`
	Total   int    `json:"total"`
}

// HostService defines the host-only administration workflow. Every method returns
// ErrForbidden, without touching the store or relay, for a non-host identity.
type HostService interface {
	ListRegistrants(ctx context.Context, identity Identity, query string) (*RegistrantListing, error)
	GetRegistrant(ctx context.Context, identity Identity, email string) (*Registrant, error)
	DeleteRegistrant(ctx context.Context, identity Identity, email string, confirmed bool) (*DeletionResult, error)
	ListArchive(ctx context.Context, identity Identity) ([]*ArchiveEntry, error)
	NotifyAll(ctx context.Context, identity Identity) (*NotifyResult, error)
}

// Clock returns the current time. Services take one so tests can pin deletion timestamps.
type Clock func() time.Time
