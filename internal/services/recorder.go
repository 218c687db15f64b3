package services

import "eventregistration/internal/domain"

// Recorder receives workflow events for metrics. internal/metrics implements it.
type Recorder interface {
	ObserveAllocation(attempts int, exhausted bool)
	RegistrationCompleted(created bool)
	DeletionFinished(failed domain.DeletionStep)
	NotificationsSent(n int)
	MirrorFailed(op string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAllocation(int, bool)          {}
func (nopRecorder) RegistrationCompleted(bool)           {}
func (nopRecorder) DeletionFinished(domain.DeletionStep) {}
func (nopRecorder) NotificationsSent(int)                {}
func (nopRecorder) MirrorFailed(string)                  {}

func orNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
