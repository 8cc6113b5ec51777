// internal/app/features/auditlog/list.go
package auditlog

import (
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/store/audit"
	"github.com/dalemusser/stratagroups/internal/app/system/paging"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBadFilter = errors.New("bad audit filter")

// parseFilter builds the store query from the request's query string.
// It returns a user-facing message when a parameter is malformed.
func parseFilter(r *http.Request) (audit.QueryFilter, paging.Page, string) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))

	page := paging.ParsePage(r)
	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     page.Limit(),
		Offset:    page.Offset(),
	}

	if category != "" && eventTypesForCategory(category) == nil {
		return filter, page, "Unknown category."
	}
	if eventType != "" && !validEventType(category, eventType) {
		return filter, page, "Unknown event type."
	}

	for _, p := range []struct {
		key string
		dst **primitive.ObjectID
	}{
		{"user_id", &filter.UserID},
		{"group_id", &filter.GroupID},
	} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, page, "Bad " + p.key + "."
		}
		*p.dst = &id
	}

	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return filter, page, "start_date must be YYYY-MM-DD."
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return filter, page, "end_date must be YYYY-MM-DD."
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	return filter, page, ""
}

// ServeList handles GET /audit - returns one page of audit events, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, page, bad := parseFilter(r)
	if bad != "" {
		h.ErrLog.LogBadRequest(w, r, "audit list filter", errBadFilter, bad)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "A database error occurred.")
		return
	}
	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "A database error occurred.")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Events:     events,
		Total:      total,
		Page:       page.Number,
		TotalPages: page.TotalPages(total),
		Range:      page.ComputeRange(len(events)),
	})
}
