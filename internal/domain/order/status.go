package order

import (
	"github.com/example/b2b-marketplace/internal/domain/user"
)

// Status is an order lifecycle status
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusConfirmed       Status = "confirmed"
	StatusInProgress      Status = "in_progress"
	StatusDispatched      Status = "dispatched"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected, StatusConfirmed,
		StatusInProgress, StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted from s
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// roleTransitions is the allow-list of transitions per role, keyed by
// current status. Admins are handled separately: they may move a
// non-terminal order to any valid status.
var roleTransitions = map[user.Role]map[Status][]Status{
	user.RoleSubAdmin: {
		StatusPendingApproval: {StatusApproved, StatusRejected},
	},
	user.RoleSeller: {
		StatusApproved:   {StatusConfirmed},
		StatusConfirmed:  {StatusInProgress},
		StatusInProgress: {StatusDispatched},
	},
	user.RoleBuyer: {
		StatusDispatched: {StatusDelivered},
		StatusConfirmed:  {StatusCancelled},
		StatusInProgress: {StatusCancelled},
	},
}

// CanTransition reports whether role may move an order from current to
// target. Terminal statuses admit no transitions for any role, admins
// included, and no role may move an order back to pending approval.
func CanTransition(role user.Role, current, target Status) bool {
	if !target.Valid() || current.IsTerminal() || target == StatusPendingApproval {
		return false
	}
	if role == user.RoleAdmin {
		return true
	}
	allowed, ok := roleTransitions[role]
	if !ok {
		return false
	}
	for _, s := range allowed[current] {
		if s == target {
			return true
		}
	}
	return false
}
