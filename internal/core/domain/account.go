package domain

import "time"

type Role string

const (
	RoleAdmin     Role = "AD"
	RoleExecutive Role = "EX"
	RoleOperative Role = "OP"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleExecutive, RoleOperative:
		return true
	}
	return false
}

type ProfileStatus string

const (
	ProfileActive   ProfileStatus = "A"
	ProfileInactive ProfileStatus = "I"
)

type User struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	PasswordHash string        `json:"-"`
	IsSuperuser  bool          `json:"is_superuser"`
	IsStaff      bool          `json:"is_staff"`
	IsActive     bool          `json:"is_active"`
	Role         Role          `json:"role"`
	Status       ProfileStatus `json:"status"`
	Telephone    string        `json:"telephone"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}
