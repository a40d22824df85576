package matching

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidParameters      = errors.New("invalid parameters")
	ErrAlreadySwiped          = errors.New("already swiped")
	ErrRateLimitExceeded      = errors.New("hourly swipe limit exceeded")
	ErrSuperLikeLimitExceeded = errors.New("daily super-like limit exceeded")
	ErrPersistence            = errors.New("persistence failure")
	ErrNoPreferences          = errors.New("no preferences")
	ErrNotFound               = errors.New("not found")
)

// invalid wraps ErrInvalidParameters with the offending detail.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameters, fmt.Sprintf(format, args...))
}

// LimitError is returned when an action quota is exhausted. It unwraps to
// ErrRateLimitExceeded or ErrSuperLikeLimitExceeded.
type LimitError struct {
	Kind       error
	Limit      int
	Used       int
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case ErrSuperLikeLimitExceeded:
		return fmt.Sprintf("%s: %d of %d super-likes used today, resets in %s",
			e.Kind, e.Used, e.Limit, humanDuration(e.RetryAfter))
	default:
		return fmt.Sprintf("%s: %d of %d swipes used in the last hour, try again in %s",
			e.Kind, e.Used, e.Limit, humanDuration(e.RetryAfter))
	}
}

func (e *LimitError) Unwrap() error { return e.Kind }

// PersistenceError reports a write or read rejected by the store. It matches
// both ErrPersistence and the underlying cause under errors.Is.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// persistence passes domain errors through untouched and wraps everything
// else as a PersistenceError.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		ErrInvalidParameters, ErrAlreadySwiped, ErrRateLimitExceeded,
		ErrSuperLikeLimitExceeded, ErrPersistence, ErrNoPreferences, ErrNotFound,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return &PersistenceError{Op: op, Err: err}
}

func humanDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%ds", secs)
	}
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
