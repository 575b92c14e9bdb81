// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

const dateLayout = "2006-01-02"

// ServeList handles GET /api/audit-log?category&event_type&entity&start_date&end_date&page&limit.
//
// Dates are YYYY-MM-DD in UTC; end_date includes the whole day.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, pageSize)
	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		Entity:    query.Get(r, "entity"),
		Limit:     int64(pg.Limit),
		Offset:    pg.Skip(),
	}
	if filter.Category != "" && !knownCategory(filter.Category) {
		apierrors.Error(w, http.StatusBadRequest, "Unknown category")
		return
	}
	if s := query.Get(r, "start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			apierrors.Error(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		filter.StartTime = &t
	}
	if s := query.Get(r, "end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			apierrors.Error(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit log: query", err, "Failed to load audit log")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit log: count", err, "Failed to load audit log")
		return
	}

	names := h.userNames(ctx, events)
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:         e.ID.Hex(),
			Timestamp:  e.Timestamp,
			Category:   e.Category,
			EventType:  e.EventType,
			ActorName:  nameOf(names, e.ActorID),
			TargetName: nameOf(names, e.UserID),
			Entity:     e.Entity,
			IP:         e.IP,
			Success:    e.Success,
			Reason:     e.FailureReason,
			Details:    e.Details,
		}
		if e.EntityID != nil {
			item.EntityID = e.EntityID.Hex()
		}
		items = append(items, item)
	}

	apierrors.JSON(w, http.StatusOK, listResponse{
		Data:       items,
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: pg.TotalPages(total),
	})
}

// ServeEventTypes handles GET /api/audit-log/event-types.
func (h *Handler) ServeEventTypes(w http.ResponseWriter, r *http.Request) {
	if c := query.Get(r, "category"); c != "" {
		types, ok := eventTypes[c]
		if !ok {
			apierrors.Error(w, http.StatusBadRequest, "Unknown category")
			return
		}
		apierrors.JSON(w, http.StatusOK, map[string][]string{c: types})
		return
	}
	apierrors.JSON(w, http.StatusOK, eventTypes)
}

// userNames batch-loads the actors and targets of events. A lookup failure
// only costs the names, so it is logged and the ids are shown instead.
func (h *Handler) userNames(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}

	names := make(map[primitive.ObjectID]string, len(ids))
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("audit log: resolve user names", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

func nameOf(names map[primitive.ObjectID]string, id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return id.Hex()
}
