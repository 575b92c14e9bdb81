package visibility

import (
	"context"

	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	dakwahstore "github.com/mtt/mttdash/internal/app/store/dakwah"
	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Highlights manages the highlight flag of daily dakwah posts. A post must be
// published to be highlighted.
type Highlights struct {
	Store   *dakwahstore.Store
	Guard   *capacity.Guard
	Policy  capacitypolicy.Policy
	Metrics *metrics.Metrics
}

// NewHighlights wires a highlight service. m may be nil.
func NewHighlights(store *dakwahstore.Store, guard *capacity.Guard, policy capacitypolicy.Policy, m *metrics.Metrics) *Highlights {
	return &Highlights{Store: store, Guard: guard, Policy: policy, Metrics: m}
}

// Create inserts d, treating d.Highlight as the requested value.
func (h *Highlights) Create(ctx context.Context, d models.Dakwah) (models.Dakwah, error) {
	want := d.Highlight

	var out models.Dakwah
	var dec decision
	err := h.Guard.Do(ctx, dakwahstore.Collection, func(ctx context.Context) error {
		n, err := h.Store.CountHighlighted(ctx, nil)
		if err != nil {
			return err
		}
		highlight, err := h.Policy.EvaluateCreate(capacitypolicy.CreateRequest{
			Requested:   want,
			Eligible:    d.Published,
			ActiveCount: int(n),
		})
		dec.set(want, highlight, err)
		if err != nil {
			return err
		}
		rec := d
		rec.Highlight = highlight
		out, err = h.Store.Create(ctx, rec)
		return err
	})
	dec.record(h.Metrics, h.Policy.Name)
	return out, err
}

// Edit replaces the editable fields of post id. A nil requested keeps the
// current highlight, except that unpublishing a post always clears it.
func (h *Highlights) Edit(ctx context.Context, id primitive.ObjectID, d models.Dakwah, requested *bool) (models.Dakwah, error) {
	return h.update(ctx, id, requested, &d)
}

// SetHighlight is the dedicated toggle.
func (h *Highlights) SetHighlight(ctx context.Context, id primitive.ObjectID, highlight bool) (bool, error) {
	out, err := h.update(ctx, id, &highlight, nil)
	return out.Highlight, err
}

func (h *Highlights) update(ctx context.Context, id primitive.ObjectID, requested *bool, edit *models.Dakwah) (models.Dakwah, error) {
	var out models.Dakwah
	var dec decision
	err := h.Guard.Do(ctx, dakwahstore.Collection, func(ctx context.Context) error {
		cur, err := h.Store.GetByID(ctx, id)
		if err != nil {
			return err
		}

		published := cur.Published
		if edit != nil {
			published = edit.Published
		}
		want := cur.Highlight
		switch {
		case requested != nil:
			want = *requested
		case !published:
			want = false
		}

		others, err := h.Store.CountHighlighted(ctx, &id)
		if err != nil {
			return err
		}
		highlight, err := h.Policy.EvaluateUpdate(capacitypolicy.UpdateRequest{
			EntityID:     id.Hex(),
			Requested:    want,
			Eligible:     published,
			WasActive:    cur.Highlight,
			OthersActive: int(others),
		})
		dec.set(want, highlight, err)
		if err != nil {
			return err
		}

		if edit == nil {
			out = cur
			out.Highlight = highlight
			return h.Store.SetHighlight(ctx, id, highlight)
		}
		next := *edit
		next.ID = id
		next.CreatedAt = cur.CreatedAt
		next.Highlight = highlight
		if err := h.Store.Update(ctx, id, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	dec.record(h.Metrics, h.Policy.Name)
	return out, err
}

// Delete removes post id. Highlights have no lower bound, so nothing is
// promoted.
func (h *Highlights) Delete(ctx context.Context, id primitive.ObjectID) error {
	return h.Guard.Do(ctx, dakwahstore.Collection, func(ctx context.Context) error {
		n, err := h.Store.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return dakwahstore.ErrNotFound
		}
		return nil
	})
}

// Report counts highlighted and total posts.
func (h *Highlights) Report(ctx context.Context) (Report, error) {
	active, err := h.Store.CountHighlighted(ctx, nil)
	if err != nil {
		return Report{}, err
	}
	total, err := h.Store.Count(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Policy: h.Policy.Name,
		Active: active,
		Total:  total,
		Min:    h.Policy.MinActive,
		Max:    h.Policy.MaxActive,
	}, nil
}
