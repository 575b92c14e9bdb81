// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/mtt/mttdash/internal/app/store/audit"
)

// listItem is one audit event with user ids resolved to names.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	ActorName  string            `json:"actor,omitempty"`
	TargetName string            `json:"target,omitempty"`
	Entity     string            `json:"entity,omitempty"`
	EntityID   string            `json:"entity_id,omitempty"`
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Data       []listItem `json:"data"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int64      `json:"total"`
	TotalPages int64      `json:"total_pages"`
}

// eventTypes lists the event types recorded under each category.
var eventTypes = map[string][]string{
	audit.CategoryAuth: {
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventPasswordChanged,
		audit.EventOTPSent,
		audit.EventOTPVerified,
		audit.EventOTPFailed,
	},
	audit.CategoryAdmin: {
		audit.EventProfileUpdated,
		audit.EventSliderCreated,
		audit.EventSliderUpdated,
		audit.EventSliderDeleted,
		audit.EventDakwahCreated,
		audit.EventDakwahUpdated,
		audit.EventDakwahDeleted,
		audit.EventNewsCreated,
		audit.EventNewsUpdated,
		audit.EventNewsDeleted,
		audit.EventCategoryCreated,
		audit.EventCategoryDeleted,
		audit.EventProposalRead,
		audit.EventGalleryUploaded,
		audit.EventGalleryUpdated,
		audit.EventGalleryDeleted,
		audit.EventFileUploaded,
	},
	audit.CategoryCapacity: {
		audit.EventVisibilityChanged,
		audit.EventVisibilityDenied,
		audit.EventSliderPromoted,
	},
}

func knownCategory(c string) bool {
	_, ok := eventTypes[c]
	return ok
}
