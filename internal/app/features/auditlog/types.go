// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/stratagroups/internal/app/store/audit"
	"github.com/dalemusser/stratagroups/internal/app/system/paging"
)

// listResponse is the JSON page returned by GET /audit.
type listResponse struct {
	Events     []audit.Event `json:"events"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Range      paging.Range  `json:"range"`
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDeleted,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
	}

	adminEvents := []string{
		audit.EventUserCreated,
		audit.EventUserRenamed,
		audit.EventUserDeleted,
		audit.EventGroupCreated,
		audit.EventGroupRenamed,
		audit.EventOwnershipAssigned,
		audit.EventOwnershipUnassigned,
		audit.EventMembershipAssigned,
		audit.EventMembershipUnassigned,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}

func validEventType(category, eventType string) bool {
	for _, t := range eventTypesForCategory(category) {
		if t == eventType {
			return true
		}
	}
	return false
}
