package visibility

import (
	"context"
	"errors"

	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	sliderstore "github.com/mtt/mttdash/internal/app/store/sliders"
	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sliders manages the visible flag of home sliders.
type Sliders struct {
	Store   *sliderstore.Store
	Guard   *capacity.Guard
	Policy  capacitypolicy.Policy
	Metrics *metrics.Metrics
}

// NewSliders wires a slider service. m may be nil.
func NewSliders(store *sliderstore.Store, guard *capacity.Guard, policy capacitypolicy.Policy, m *metrics.Metrics) *Sliders {
	return &Sliders{Store: store, Guard: guard, Policy: policy, Metrics: m}
}

// Create inserts sl. A nil requested means visible.
func (s *Sliders) Create(ctx context.Context, sl models.HomeSlider, requested *bool) (models.HomeSlider, error) {
	want := true
	if requested != nil {
		want = *requested
	}

	var out models.HomeSlider
	var d decision
	err := s.Guard.Do(ctx, sliderstore.Collection, func(ctx context.Context) error {
		n, err := s.Store.CountVisible(ctx, nil)
		if err != nil {
			return err
		}
		visible, err := s.Policy.EvaluateCreate(capacitypolicy.CreateRequest{
			Requested:   want,
			Eligible:    true,
			ActiveCount: int(n),
		})
		d.set(want, visible, err)
		if err != nil {
			return err
		}
		sl.Visible = visible
		out, err = s.Store.Create(ctx, sl)
		return err
	})
	d.record(s.Metrics, s.Policy.Name)
	return out, err
}

// Edit replaces the editable fields of slider id. Activation past the cap is
// clamped. A nil requested keeps the current visible value.
func (s *Sliders) Edit(ctx context.Context, id primitive.ObjectID, sl models.HomeSlider, requested *bool) (models.HomeSlider, error) {
	return s.update(ctx, id, s.Policy.WithOverflow(capacitypolicy.Clamp), requested, &sl)
}

// SetVisible is the dedicated toggle. Activation past the cap is rejected.
func (s *Sliders) SetVisible(ctx context.Context, id primitive.ObjectID, visible bool) (bool, error) {
	out, err := s.update(ctx, id, s.Policy.WithOverflow(capacitypolicy.Reject), &visible, nil)
	return out.Visible, err
}

func (s *Sliders) update(ctx context.Context, id primitive.ObjectID, policy capacitypolicy.Policy, requested *bool, edit *models.HomeSlider) (models.HomeSlider, error) {
	var out models.HomeSlider
	var d decision
	err := s.Guard.Do(ctx, sliderstore.Collection, func(ctx context.Context) error {
		cur, err := s.Store.GetByID(ctx, id)
		if err != nil {
			return err
		}
		want := cur.Visible
		if requested != nil {
			want = *requested
		}
		others, err := s.Store.CountVisible(ctx, &id)
		if err != nil {
			return err
		}
		visible, err := policy.EvaluateUpdate(capacitypolicy.UpdateRequest{
			EntityID:     id.Hex(),
			Requested:    want,
			Eligible:     true,
			WasActive:    cur.Visible,
			OthersActive: int(others),
		})
		d.set(want, visible, err)
		if err != nil {
			return err
		}

		if edit == nil {
			out = cur
			out.Visible = visible
			return s.Store.SetVisible(ctx, id, visible)
		}
		next := *edit
		next.ID = id
		next.CreatedAt = cur.CreatedAt
		next.Visible = visible
		if err := s.Store.Update(ctx, id, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	d.record(s.Metrics, policy.Name)
	return out, err
}

// Delete removes slider id. When it was the last visible slider and others
// remain, the newest remaining slider is made visible and returned.
func (s *Sliders) Delete(ctx context.Context, id primitive.ObjectID) (*models.HomeSlider, error) {
	var promoted *models.HomeSlider
	err := s.Guard.Do(ctx, sliderstore.Collection, func(ctx context.Context) error {
		promoted = nil
		cur, err := s.Store.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.Store.Delete(ctx, id); err != nil {
			return err
		}
		if !cur.Visible {
			return nil
		}
		n, err := s.Store.CountVisible(ctx, nil)
		if err != nil {
			return err
		}
		if int(n) >= s.Policy.MinActive {
			return nil
		}
		next, err := s.Store.NewestHidden(ctx)
		if errors.Is(err, sliderstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Store.SetVisible(ctx, next.ID, true); err != nil {
			return err
		}
		next.Visible = true
		promoted = &next
		return nil
	})
	return promoted, err
}

// Report counts visible and total sliders.
func (s *Sliders) Report(ctx context.Context) (Report, error) {
	active, err := s.Store.CountVisible(ctx, nil)
	if err != nil {
		return Report{}, err
	}
	total, err := s.Store.Count(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Policy: s.Policy.Name,
		Active: active,
		Total:  total,
		Min:    s.Policy.MinActive,
		Max:    s.Policy.MaxActive,
	}, nil
}
