package entity

// Status is the lifecycle state of a Link or Image record.
// A record starts Pending and moves exactly once to Active or Failed.
type Status uint8

const (
	StatusPending Status = iota + 1
	StatusActive
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusFailed
}

// CanTransitionTo reports whether a record in status s may be written with status next.
// Rewriting the current terminal status is allowed so content refreshes stay idempotent.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() || next == StatusPending {
		return false
	}
	return s == StatusPending || s == next
}
