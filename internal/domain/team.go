package domain

import (
	"fmt"
	"slices"
)

// TeamType определяет, как пользователи попадают в команду по коду
type TeamType string

// Типы команд
const (
	TeamPublic  TeamType = "PUBLIC"  // Вступление по коду сразу
	TeamPrivate TeamType = "PRIVATE" // Вступление по коду через заявку
)

// Valid проверяет, что тип команды известен
func (t TeamType) Valid() bool {
	return t == TeamPublic || t == TeamPrivate
}

// TeamRole - роль пользователя внутри команды
type TeamRole string

// Роли в команде
const (
	TeamRoleAdmin  TeamRole = "ADMIN"
	TeamRoleMember TeamRole = "MEMBER"
)

// Valid проверяет, что роль в команде известна
func (r TeamRole) Valid() bool {
	return r == TeamRoleAdmin || r == TeamRoleMember
}

// Team представляет команду.
// Инвариант: Members ⊇ Admins ⊇ {Owner}, NumberOfMembers == len(Members).
type Team struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Type            TeamType `json:"type"`
	JoinCode        string   `json:"join_code"`
	Owner           string   `json:"owner"`
	Admins          []string `json:"admins"`
	Members         []string `json:"members"`
	NumberOfMembers int      `json:"number_of_members"`
	Version         int64    `json:"version"`
}

// NewTeam создает команду, в которой владелец - единственный участник и администратор
func NewTeam(name, description string, teamType TeamType, owner, joinCode string) *Team {
	return &Team{
		Name:            name,
		Description:     description,
		Type:            teamType,
		JoinCode:        joinCode,
		Owner:           owner,
		Admins:          []string{owner},
		Members:         []string{owner},
		NumberOfMembers: 1,
	}
}

// IsOwner проверяет, является ли пользователь владельцем
func (t *Team) IsOwner(email string) bool {
	return t.Owner == email
}

// IsAdmin проверяет, является ли пользователь администратором (владелец всегда администратор)
func (t *Team) IsAdmin(email string) bool {
	return slices.Contains(t.Admins, email)
}

// IsMember проверяет, состоит ли пользователь в команде
func (t *Team) IsMember(email string) bool {
	return slices.Contains(t.Members, email)
}

// AddMember добавляет участника и обновляет счетчик
func (t *Team) AddMember(email string) error {
	if t.IsMember(email) {
		return ErrAlreadyMember
	}
	t.Members = append(t.Members, email)
	t.NumberOfMembers = len(t.Members)
	return nil
}

// RemoveMember удаляет участника (и его роль администратора). Владельца удалить нельзя.
func (t *Team) RemoveMember(email string) error {
	if t.IsOwner(email) {
		return ErrOwnerProtected
	}
	if !t.IsMember(email) {
		return ErrNotTeamMember
	}
	t.Members = slices.DeleteFunc(t.Members, func(m string) bool { return m == email })
	t.Admins = slices.DeleteFunc(t.Admins, func(a string) bool { return a == email })
	t.NumberOfMembers = len(t.Members)
	return nil
}

// SetRole назначает участнику роль в команде. Роль владельца не меняется.
func (t *Team) SetRole(email string, role TeamRole) error {
	if !role.Valid() {
		return ErrInvalidTeamRole
	}
	if t.IsOwner(email) {
		return ErrOwnerProtected
	}
	if !t.IsMember(email) {
		return ErrNotTeamMember
	}

	switch role {
	case TeamRoleAdmin:
		if !t.IsAdmin(email) {
			t.Admins = append(t.Admins, email)
		}
	case TeamRoleMember:
		t.Admins = slices.DeleteFunc(t.Admins, func(a string) bool { return a == email })
	}
	return nil
}

// RoleOf возвращает роль участника в команде
func (t *Team) RoleOf(email string) (TeamRole, bool) {
	switch {
	case t.IsAdmin(email):
		return TeamRoleAdmin, true
	case t.IsMember(email):
		return TeamRoleMember, true
	default:
		return "", false
	}
}

// CheckInvariants проверяет Members ⊇ Admins ⊇ {Owner} и счетчик участников
func (t *Team) CheckInvariants() error {
	if !t.IsAdmin(t.Owner) {
		return fmt.Errorf("team %d: owner %q is not an admin", t.ID, t.Owner)
	}
	for _, admin := range t.Admins {
		if !t.IsMember(admin) {
			return fmt.Errorf("team %d: admin %q is not a member", t.ID, admin)
		}
	}
	if t.NumberOfMembers != len(t.Members) {
		return fmt.Errorf("team %d: number of members %d != %d", t.ID, t.NumberOfMembers, len(t.Members))
	}
	seen := make(map[string]struct{}, len(t.Members))
	for _, m := range t.Members {
		if _, dup := seen[m]; dup {
			return fmt.Errorf("team %d: duplicate member %q", t.ID, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

// Clone возвращает независимую копию команды
func (t *Team) Clone() *Team {
	c := *t
	c.Admins = slices.Clone(t.Admins)
	c.Members = slices.Clone(t.Members)
	return &c
}
