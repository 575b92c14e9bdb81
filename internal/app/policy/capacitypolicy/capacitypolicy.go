// Package capacitypolicy decides whether a record may join the bounded set of
// "active" records in a collection (visible home sliders, highlighted dakwah
// posts). It is pure: callers count, decide, then persist the resolved value.
package capacitypolicy

import (
	"errors"
	"fmt"
)

// Overflow selects what happens when an activation would exceed MaxActive.
type Overflow int

const (
	// Clamp silently resolves the request to inactive.
	Clamp Overflow = iota
	// Reject fails the request with ErrCapacityExceeded.
	Reject
)

func (o Overflow) String() string {
	switch o {
	case Clamp:
		return "clamp"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("overflow(%d)", int(o))
	}
}

// Client errors. None of these are retried and none leave partial writes.
var (
	ErrIneligible       = errors.New("record is not eligible for activation")
	ErrBelowMinimum     = errors.New("at least one record must stay active")
	ErrCapacityExceeded = errors.New("active capacity reached")
)

// Policy bounds the number of active records in one collection.
type Policy struct {
	Name             string
	MinActive        int
	MaxActive        int
	BootstrapsActive bool
	Overflow         Overflow
}

// Sliders is the home slider policy: at least one visible, the first slider
// is always visible, and edits past the cap are clamped.
func Sliders(maxActive int) Policy {
	return Policy{
		Name:             "home_sliders",
		MinActive:        1,
		MaxActive:        maxActive,
		BootstrapsActive: true,
		Overflow:         Clamp,
	}
}

// DakwahHighlights is the daily dakwah highlight policy. Only published posts
// can be highlighted and highlighting past the cap is rejected.
func DakwahHighlights(maxActive int) Policy {
	return Policy{
		Name:      "daily_dakwah",
		MinActive: 0,
		MaxActive: maxActive,
		Overflow:  Reject,
	}
}

// WithOverflow returns a copy of p using the given overflow mode.
func (p Policy) WithOverflow(o Overflow) Policy {
	p.Overflow = o
	return p
}

// Validate reports configuration mistakes such as MaxActive < MinActive.
func (p Policy) Validate() error {
	if p.MaxActive < 1 {
		return fmt.Errorf("%s: max active must be at least 1, got %d", p.Name, p.MaxActive)
	}
	if p.MinActive < 0 {
		return fmt.Errorf("%s: min active must not be negative, got %d", p.Name, p.MinActive)
	}
	if p.MaxActive < p.MinActive {
		return fmt.Errorf("%s: max active %d is below min active %d", p.Name, p.MaxActive, p.MinActive)
	}
	return nil
}

// CreateRequest describes a record about to be inserted.
type CreateRequest struct {
	Requested   bool
	Eligible    bool
	ActiveCount int
}

// EvaluateCreate resolves the active flag for a new record.
//
// The first eligible record of an empty bootstrapping collection is always
// active. A request past the cap is clamped to false whatever the overflow
// mode.
func (p Policy) EvaluateCreate(req CreateRequest) (bool, error) {
	if req.Requested && !req.Eligible {
		return false, ErrIneligible
	}
	if p.BootstrapsActive && req.Eligible && req.ActiveCount == 0 {
		return true, nil
	}
	if req.Requested && req.ActiveCount >= p.MaxActive {
		return false, nil
	}
	return req.Requested, nil
}

// UpdateRequest describes a change to an existing record. OthersActive counts
// active records excluding EntityID.
type UpdateRequest struct {
	EntityID     string
	Requested    bool
	Eligible     bool
	WasActive    bool
	OthersActive int
}

// EvaluateUpdate resolves the active flag for an existing record. A record
// that stays active does not grow the active set, so the cap is only
// checked when it turns on.
func (p Policy) EvaluateUpdate(req UpdateRequest) (bool, error) {
	if req.Requested && !req.Eligible {
		return false, ErrIneligible
	}
	if !req.Requested && req.WasActive && req.OthersActive < p.MinActive {
		return false, ErrBelowMinimum
	}
	if req.Requested && !req.WasActive && req.OthersActive >= p.MaxActive {
		if p.Overflow == Reject {
			return false, ErrCapacityExceeded
		}
		return false, nil
	}
	return req.Requested, nil
}

// Error kinds reported to API clients.
const (
	KindIneligible       = "IneligibleForActivation"
	KindBelowMinimum     = "BelowMinimumActive"
	KindCapacityExceeded = "CapacityExceeded"
)

// Kind names the policy error in err, or returns "" for any other error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrIneligible):
		return KindIneligible
	case errors.Is(err, ErrBelowMinimum):
		return KindBelowMinimum
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	}
	return ""
}

// Outcome labels a decision for metrics and audit records.
func Outcome(requested, resolved bool, err error) string {
	switch {
	case errors.Is(err, ErrIneligible):
		return "ineligible"
	case errors.Is(err, ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case err != nil:
		return "error"
	case requested && !resolved:
		return "clamped"
	case !requested && resolved:
		return "bootstrapped"
	default:
		return "accepted"
	}
}
