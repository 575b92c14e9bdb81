// Package visibility applies capacity policies to the collections that carry
// a bounded active flag. Every count-decide-write runs inside a
// capacity.Guard so concurrent requests cannot overshoot the bounds.
package visibility

import (
	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	"github.com/mtt/mttdash/internal/app/system/metrics"
)

// Report summarizes one collection against its policy.
type Report struct {
	Policy string `json:"policy"`
	Active int64  `json:"active"`
	Total  int64  `json:"total"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
}

// WithinBounds reports whether the active count satisfies the policy. An
// empty collection is always within bounds.
func (r Report) WithinBounds() bool {
	if r.Total == 0 {
		return true
	}
	return r.Active >= int64(r.Min) && r.Active <= int64(r.Max)
}

// decision remembers the last evaluation inside a guarded callback so it is
// counted once even when the transaction retries.
type decision struct {
	made      bool
	requested bool
	resolved  bool
	err       error
}

func (d *decision) set(requested, resolved bool, err error) {
	*d = decision{made: true, requested: requested, resolved: resolved, err: err}
}

func (d decision) record(m *metrics.Metrics, policy string) {
	if !d.made {
		return
	}
	m.CapacityDecision(policy, capacitypolicy.Outcome(d.requested, d.resolved, d.err))
}
