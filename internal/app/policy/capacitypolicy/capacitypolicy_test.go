package capacitypolicy_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCreate(t *testing.T) {
	sliders := capacitypolicy.Sliders(5)
	dakwah := capacitypolicy.DakwahHighlights(5)

	tests := []struct {
		name    string
		policy  capacitypolicy.Policy
		req     capacitypolicy.CreateRequest
		want    bool
		wantErr error
	}{
		{"first slider bootstraps even when hidden", sliders, capacitypolicy.CreateRequest{Requested: false, Eligible: true, ActiveCount: 0}, true, nil},
		{"first slider visible", sliders, capacitypolicy.CreateRequest{Requested: true, Eligible: true, ActiveCount: 0}, true, nil},
		{"slider under cap keeps request", sliders, capacitypolicy.CreateRequest{Requested: true, Eligible: true, ActiveCount: 3}, true, nil},
		{"hidden slider stays hidden", sliders, capacitypolicy.CreateRequest{Requested: false, Eligible: true, ActiveCount: 3}, false, nil},
		{"slider at cap is clamped", sliders, capacitypolicy.CreateRequest{Requested: true, Eligible: true, ActiveCount: 5}, false, nil},
		{"dakwah does not bootstrap", dakwah, capacitypolicy.CreateRequest{Requested: false, Eligible: true, ActiveCount: 0}, false, nil},
		{"dakwah at cap is clamped on create", dakwah, capacitypolicy.CreateRequest{Requested: true, Eligible: true, ActiveCount: 5}, false, nil},
		{"unpublished dakwah cannot be highlighted", dakwah, capacitypolicy.CreateRequest{Requested: true, Eligible: false, ActiveCount: 0}, false, capacitypolicy.ErrIneligible},
		{"unpublished dakwah plain create", dakwah, capacitypolicy.CreateRequest{Requested: false, Eligible: false, ActiveCount: 0}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.EvaluateCreate(tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateUpdate(t *testing.T) {
	sliders := capacitypolicy.Sliders(5)
	toggle := sliders.WithOverflow(capacitypolicy.Reject)
	dakwah := capacitypolicy.DakwahHighlights(5)

	tests := []struct {
		name    string
		policy  capacitypolicy.Policy
		req     capacitypolicy.UpdateRequest
		want    bool
		wantErr error
	}{
		{"hide the only visible slider", sliders, capacitypolicy.UpdateRequest{Requested: false, Eligible: true, WasActive: true, OthersActive: 0}, false, capacitypolicy.ErrBelowMinimum},
		{"hide the only visible slider via toggle", toggle, capacitypolicy.UpdateRequest{Requested: false, Eligible: true, WasActive: true, OthersActive: 0}, false, capacitypolicy.ErrBelowMinimum},
		{"hide one of two visible sliders", sliders, capacitypolicy.UpdateRequest{Requested: false, Eligible: true, WasActive: true, OthersActive: 1}, false, nil},
		{"hidden slider stays hidden", sliders, capacitypolicy.UpdateRequest{Requested: false, Eligible: true, WasActive: false, OthersActive: 0}, false, nil},
		{"edit sixth slider visible clamps", sliders, capacitypolicy.UpdateRequest{Requested: true, Eligible: true, WasActive: false, OthersActive: 5}, false, nil},
		{"toggle sixth slider visible rejects", toggle, capacitypolicy.UpdateRequest{Requested: true, Eligible: true, WasActive: false, OthersActive: 5}, false, capacitypolicy.ErrCapacityExceeded},
		{"already visible slider re-saved", sliders, capacitypolicy.UpdateRequest{Requested: true, Eligible: true, WasActive: true, OthersActive: 4}, true, nil},
		{"highlight sixth published post", dakwah, capacitypolicy.UpdateRequest{Requested: true, Eligible: true, WasActive: false, OthersActive: 5}, false, capacitypolicy.ErrCapacityExceeded},
		{"highlight unpublished post", dakwah, capacitypolicy.UpdateRequest{Requested: true, Eligible: false, WasActive: false, OthersActive: 0}, false, capacitypolicy.ErrIneligible},
		{"highlight unpublished post at cap", dakwah, capacitypolicy.UpdateRequest{Requested: true, Eligible: false, WasActive: false, OthersActive: 5}, false, capacitypolicy.ErrIneligible},
		{"re-highlight is idempotent", dakwah, capacitypolicy.UpdateRequest{Requested: true, Eligible: true, WasActive: true, OthersActive: 4}, true, nil},
		{"highlighted post edited while over cap", dakwah, capacitypolicy.UpdateRequest{Requested: true, Eligible: true, WasActive: true, OthersActive: 6}, true, nil},
		{"visible slider toggled on while over cap", toggle, capacitypolicy.UpdateRequest{Requested: true, Eligible: true, WasActive: true, OthersActive: 5}, true, nil},
		{"unhighlight last post", dakwah, capacitypolicy.UpdateRequest{Requested: false, Eligible: true, WasActive: true, OthersActive: 0}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.EvaluateUpdate(tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, capacitypolicy.KindCapacityExceeded, capacitypolicy.Kind(capacitypolicy.ErrCapacityExceeded))
	assert.Equal(t, capacitypolicy.KindBelowMinimum, capacitypolicy.Kind(fmt.Errorf("hide: %w", capacitypolicy.ErrBelowMinimum)))
	assert.Equal(t, capacitypolicy.KindIneligible, capacitypolicy.Kind(capacitypolicy.ErrIneligible))
	assert.Equal(t, "", capacitypolicy.Kind(errors.New("boom")))
	assert.Equal(t, "", capacitypolicy.Kind(nil))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, capacitypolicy.Sliders(5).Validate())
	assert.NoError(t, capacitypolicy.DakwahHighlights(1).Validate())
	assert.Error(t, capacitypolicy.Sliders(0).Validate())
	assert.Error(t, capacitypolicy.Policy{Name: "x", MinActive: 3, MaxActive: 2}.Validate())
	assert.Error(t, capacitypolicy.Policy{Name: "x", MinActive: -1, MaxActive: 2}.Validate())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "accepted", capacitypolicy.Outcome(true, true, nil))
	assert.Equal(t, "clamped", capacitypolicy.Outcome(true, false, nil))
	assert.Equal(t, "bootstrapped", capacitypolicy.Outcome(false, true, nil))
	assert.Equal(t, "capacity_exceeded", capacitypolicy.Outcome(true, false, capacitypolicy.ErrCapacityExceeded))
	assert.Equal(t, "below_minimum", capacitypolicy.Outcome(false, false, capacitypolicy.ErrBelowMinimum))
	assert.Equal(t, "ineligible", capacitypolicy.Outcome(true, false, capacitypolicy.ErrIneligible))
}

// TestBoundsHoldOverRandomSequences drives a simulated collection through
// random creates and toggles and checks the bounds after every success.
func TestBoundsHoldOverRandomSequences(t *testing.T) {
	policies := []capacitypolicy.Policy{
		capacitypolicy.Sliders(5),
		capacitypolicy.Sliders(5).WithOverflow(capacitypolicy.Reject),
		capacitypolicy.DakwahHighlights(5),
	}
	rng := rand.New(rand.NewSource(42))

	for _, p := range policies {
		t.Run(p.Name+"/"+p.Overflow.String(), func(t *testing.T) {
			type rec struct{ active, eligible bool }
			var recs []rec
			count := func(skip int) int {
				n := 0
				for i, r := range recs {
					if i != skip && r.active {
						n++
					}
				}
				return n
			}

			for step := 0; step < 2000; step++ {
				if len(recs) == 0 || rng.Intn(4) == 0 {
					eligible := true
					if !p.BootstrapsActive {
						eligible = rng.Intn(3) != 0
					}
					got, err := p.EvaluateCreate(capacitypolicy.CreateRequest{
						Requested:   rng.Intn(2) == 0,
						Eligible:    eligible,
						ActiveCount: count(-1),
					})
					if err == nil {
						recs = append(recs, rec{active: got, eligible: eligible})
					}
				} else {
					i := rng.Intn(len(recs))
					got, err := p.EvaluateUpdate(capacitypolicy.UpdateRequest{
						Requested:    rng.Intn(2) == 0,
						Eligible:     recs[i].eligible,
						WasActive:    recs[i].active,
						OthersActive: count(i),
					})
					if err == nil {
						recs[i].active = got
					}
				}

				n := count(-1)
				require.LessOrEqual(t, n, p.MaxActive, "step %d", step)
				require.GreaterOrEqual(t, n, p.MinActive, "step %d", step)
			}
		})
	}
}
