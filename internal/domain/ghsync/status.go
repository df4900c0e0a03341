package ghsync

import (
	"time"
)

type Type string

const (
	TypeFull        Type = "full"
	TypeIncremental Type = "incremental"
	TypeHistorical  Type = "historical"
	TypeScheduled   Type = "scheduled"
	TypeWebhook     Type = "webhook"
)

func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case TypeFull, TypeIncremental, TypeHistorical, TypeScheduled, TypeWebhook:
		return t, true
	}
	return "", false
}

type State string

const (
	StateNeverSynced State = "never_synced"
	StateInProgress  State = "in_progress"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Status is the row kept per (Organization, Type). LastSyncTime is the start
// of the last run that completed; it only moves on completion so a failed run
// never advances the incremental cursor.
type Status struct {
	Organization string
	Type         Type
	State        State
	StartedAt    *time.Time
	LastSyncTime *time.Time
	EventType    string
	ErrorMessage string
	DurationMs   int64
	UpdatedAt    time.Time
}

// NewStatus is the status of a pair that has never been synced.
func NewStatus(org string, typ Type) Status {
	return Status{Organization: org, Type: typ, State: StateNeverSynced}
}

// NeedsSync decides whether a new run should start.
//
//	never_synced           -> yes
//	in_progress, fresh     -> no
//	in_progress, stuck     -> yes (older than lockTimeout)
//	failed                 -> yes
//	completed              -> when LastSyncTime is older than threshold
func NeedsSync(s Status, threshold, lockTimeout time.Duration, now time.Time) bool {
	switch s.State {
	case StateInProgress:
		if s.StartedAt == nil {
			return true
		}
		return now.Sub(*s.StartedAt) > lockTimeout
	case StateFailed, StateNeverSynced, "":
		return true
	case StateCompleted:
		if s.LastSyncTime == nil {
			return true
		}
		return now.Sub(*s.LastSyncTime) > threshold
	}
	return true
}

// Running reports whether a run holds the status and is not stuck.
func (s Status) Running(lockTimeout time.Duration, now time.Time) bool {
	return s.State == StateInProgress && s.StartedAt != nil && now.Sub(*s.StartedAt) <= lockTimeout
}

func (s Status) Begin(now time.Time) Status {
	at := now
	s.State = StateInProgress
	s.StartedAt = &at
	s.ErrorMessage = ""
	s.DurationMs = 0
	s.UpdatedAt = now
	return s
}

// Complete closes a run. note is stored as the error message and is used for
// partial failures that did not abort the run.
func (s Status) Complete(now time.Time, note string) Status {
	start := now
	if s.StartedAt != nil {
		start = *s.StartedAt
	}
	s.State = StateCompleted
	s.LastSyncTime = &start
	s.ErrorMessage = note
	s.DurationMs = now.Sub(start).Milliseconds()
	s.UpdatedAt = now
	return s
}

func (s Status) Fail(now time.Time, err error) Status {
	s.State = StateFailed
	if err != nil {
		s.ErrorMessage = err.Error()
	}
	if s.StartedAt != nil {
		s.DurationMs = now.Sub(*s.StartedAt).Milliseconds()
	}
	s.UpdatedAt = now
	return s
}

// Freshest picks the status that best describes how current the cached data
// is: a running (not stuck) status wins, otherwise the one with the latest
// completion. An empty list yields a never-synced status.
func Freshest(org string, statuses []Status, lockTimeout time.Duration, now time.Time) Status {
	best := NewStatus(org, TypeIncremental)
	for _, s := range statuses {
		if s.Running(lockTimeout, now) {
			return s
		}
		if s.LastSyncTime == nil {
			continue
		}
		if best.LastSyncTime == nil || s.LastSyncTime.After(*best.LastSyncTime) {
			best = s
			best.State = StateCompleted
		}
	}
	return best
}
