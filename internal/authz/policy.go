// Package authz is the single policy-evaluation point for both the
// customer and admin surfaces. Handlers build a Subject from the JWT
// claims and services ask Can(subject, action, resource); no other code
// compares roles or owner ids.
package authz

import "digitizing/internal/models"

// Action names an operation a subject wants to perform.
type Action string

const (
	ActionReadOrder     Action = "order:read"
	ActionCreateOrder   Action = "order:create"
	ActionManageOrder   Action = "order:manage" // quotes, status, deliverables, messages
	ActionPayOrder      Action = "order:pay"
	ActionReadPayment   Action = "payment:read"
	ActionManageContact Action = "contact:manage"
	ActionReadStats     Action = "stats:read"
	ActionManageAdmins  Action = "admin:manage"
)

// Subject is the authenticated caller. Exactly one of UserID or AdminID
// is set; Role only applies to admins.
type Subject struct {
	UserID  string
	AdminID string
	Role    models.AdminRole
}

// IsAdmin reports whether the subject is a back-office account.
func (s Subject) IsAdmin() bool {
	return s.AdminID != ""
}

// Resource carries the ownership data a decision may need.
type Resource struct {
	OwnerID string
}

// Can decides whether subject may perform action on resource.
func Can(subject Subject, action Action, resource Resource) bool {
	if subject.IsAdmin() {
		switch action {
		case ActionManageAdmins:
			return subject.Role == models.RoleAdmin
		case ActionReadOrder, ActionManageOrder, ActionReadPayment,
			ActionManageContact, ActionReadStats:
			return true
		}
		return false
	}

	if subject.UserID == "" {
		return false
	}
	switch action {
	case ActionCreateOrder:
		return true
	case ActionReadOrder, ActionPayOrder, ActionReadPayment:
		return resource.OwnerID == subject.UserID
	}
	return false
}
