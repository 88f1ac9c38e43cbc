// Package policy is the single authorization decision point. Every
// ownership or role check in the application goes through Allow; handlers
// and services never re-implement the rules locally.
package policy

import "tutorlink/internal/models"

// Action identifies the operation requested on a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionModify  Action = "modify"
	ActionReview  Action = "review"
	ActionMessage Action = "message"
)

// Resource carries the ownership fields the policy needs. Kind selects
// the rule set; OwnerID is the studentID of a booking or the userID of a
// KYC record; TutorID is set for bookings only.
type Resource struct {
	Kind    string
	OwnerID uint
	TutorID uint
}

// Resource kinds
const (
	KindBooking = "booking"
	KindKYC     = "kyc"
	KindCourse  = "course"
)

// Allow decides whether identity may perform action on resource. It is a
// pure function: no I/O, no store access.
func Allow(identity *models.UserClaims, resource Resource, action Action) bool {
	if identity == nil {
		return false
	}
	if identity.Role == models.RoleAdmin {
		return true
	}

	switch resource.Kind {
	case KindBooking:
		return allowBooking(identity, resource, action)
	case KindKYC:
		return allowKYC(identity, resource, action)
	case KindCourse:
		return allowCourse(identity, resource, action)
	default:
		return false
	}
}

func allowBooking(identity *models.UserClaims, resource Resource, action Action) bool {
	switch action {
	case ActionCreate:
		// Students book for themselves only.
		return identity.Role == models.RoleStudent && identity.UserID == resource.OwnerID
	case ActionRead, ActionModify, ActionMessage:
		return identity.UserID == resource.OwnerID || identity.UserID == resource.TutorID
	default:
		return false
	}
}

func allowKYC(identity *models.UserClaims, resource Resource, action Action) bool {
	switch action {
	case ActionCreate, ActionRead:
		// A tutor touches only their own record.
		return identity.Role == models.RoleTutor && identity.UserID == resource.OwnerID
	case ActionReview:
		// Approve/reject is admin-only, handled by the admin short-circuit.
		return false
	default:
		return false
	}
}

func allowCourse(identity *models.UserClaims, resource Resource, action Action) bool {
	switch action {
	case ActionRead:
		return true
	case ActionCreate, ActionModify:
		return identity.Role == models.RoleTutor && identity.UserID == resource.OwnerID
	default:
		return false
	}
}
