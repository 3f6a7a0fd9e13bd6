// Package permission decides whether an acting user may perform an operation.
//
// Every check is a pure function over entities the caller has already loaded:
// nothing here touches a store. A check returns nil when the action is allowed
// and a domain error otherwise, so callers can propagate the result as is.
// Rights on existing entities are always reported as domain.ErrNoPermission;
// domain.ErrNotFound is used only for "the target is not a member of the team".
package permission

import "github.com/aidar/taskmanager/internal/domain"

// CanActOnTask allows the task owner, any elevated user, and the admins of the
// team the task belongs to. team may be nil for individually created tasks.
func CanActOnTask(actor *domain.User, task *domain.Task, team *domain.Team) error {
	switch {
	case actor == nil:
		return domain.ErrTaskAccessDenied
	case actor.Email == task.OwnerEmail:
		return nil
	case actor.IsElevated():
		return nil
	case team != nil && team.IsAdmin(actor.Email):
		return nil
	default:
		return domain.ErrTaskAccessDenied
	}
}

// CanManageTeamTask allows team admins to manage tasks of team members.
// The actor's rights are checked before the target's membership so that a
// non-admin cannot probe who is in the team.
func CanManageTeamTask(actor *domain.User, targetEmail string, team *domain.Team) error {
	if !team.IsAdmin(actor.Email) {
		return domain.ErrNotTeamAdmin
	}
	if !team.IsMember(targetEmail) {
		return domain.ErrNotTeamMember
	}
	return nil
}

// CanAddMember allows team admins to add users directly.
func CanAddMember(actor *domain.User, team *domain.Team) error {
	if !team.IsAdmin(actor.Email) {
		return domain.ErrNotTeamAdmin
	}
	return nil
}

// CanPromoteToAdmin is an owner-only right.
func CanPromoteToAdmin(actor *domain.User, team *domain.Team) error {
	if !team.IsOwner(actor.Email) {
		return domain.ErrNotTeamOwner
	}
	return nil
}

// CanChangeRole checks a MEMBER<->ADMIN transition of targetEmail.
// Promotion needs the owner; demotion needs any admin. The owner's own role
// is never a valid target.
func CanChangeRole(actor *domain.User, targetEmail string, role domain.TeamRole, team *domain.Team) error {
	if !role.Valid() {
		return domain.ErrInvalidTeamRole
	}
	if !team.IsAdmin(actor.Email) {
		return domain.ErrNotTeamAdmin
	}
	if !team.IsMember(targetEmail) {
		return domain.ErrNotTeamMember
	}
	if team.IsOwner(targetEmail) {
		return domain.ErrOwnerProtected
	}
	if role == domain.TeamRoleAdmin {
		return CanPromoteToAdmin(actor, team)
	}
	return nil
}

// CanRemoveMember forbids removing the owner, lets only the owner remove an
// admin and lets any admin remove a plain member.
func CanRemoveMember(actor *domain.User, targetEmail string, team *domain.Team) error {
	if team.IsOwner(targetEmail) {
		return domain.ErrOwnerProtected
	}
	if !team.IsAdmin(actor.Email) {
		return domain.ErrNotTeamAdmin
	}
	if !team.IsMember(targetEmail) {
		return domain.ErrNotTeamMember
	}
	if team.IsAdmin(targetEmail) && !team.IsOwner(actor.Email) {
		return domain.ErrAdminProtected
	}
	return nil
}

// CanEditTeam allows team admins to change name, description and type.
func CanEditTeam(actor *domain.User, team *domain.Team) error {
	if !team.IsAdmin(actor.Email) {
		return domain.ErrNotTeamAdmin
	}
	return nil
}

// CanViewTeam allows members and elevated users.
func CanViewTeam(actor *domain.User, team *domain.Team) error {
	if team.IsMember(actor.Email) || actor.IsElevated() {
		return nil
	}
	return domain.ErrNoPermission
}

// CanReviewJoinRequests allows team admins to list and approve requests.
func CanReviewJoinRequests(actor *domain.User, team *domain.Team) error {
	if !team.IsAdmin(actor.Email) {
		return domain.ErrNotTeamAdmin
	}
	return nil
}

// CanDeleteJoinRequest allows team admins (rejection) and the requester
// (withdrawal).
func CanDeleteJoinRequest(actor *domain.User, team *domain.Team, req *domain.JoinRequest) error {
	if actor.Email == req.UserEmail || team.IsAdmin(actor.Email) {
		return nil
	}
	return domain.ErrNotTeamAdmin
}

// CanListMemberTasks allows the member themself, team admins and elevated
// users to see a member's team tasks.
func CanListMemberTasks(actor *domain.User, targetEmail string, team *domain.Team) error {
	if actor.Email != targetEmail && !team.IsAdmin(actor.Email) && !actor.IsElevated() {
		return domain.ErrNotTeamAdmin
	}
	if !team.IsMember(targetEmail) {
		return domain.ErrNotTeamMember
	}
	return nil
}

// CanListUserTasks lets users read their own tasks; reading anyone else's
// needs an elevated role.
func CanListUserTasks(actor *domain.User, targetEmail string) error {
	if targetEmail == "" || targetEmail == actor.Email || actor.IsElevated() {
		return nil
	}
	return domain.ErrNotElevated
}

// CanRunMaintenance guards store-wide operations such as the overdue sweep.
func CanRunMaintenance(actor *domain.User) error {
	if !actor.IsElevated() {
		return domain.ErrNotElevated
	}
	return nil
}

// CanChangeUserRole needs the global ADMIN role; SUPPORT is not enough.
func CanChangeUserRole(actor *domain.User) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrNotGlobalAdmin
	}
	return nil
}
