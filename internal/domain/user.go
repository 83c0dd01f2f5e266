package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	CreatedOn time.Time  `json:"created_on"`
	DeletedOn *time.Time `json:"deleted_on,omitempty"`
}

// Principal is the authenticated caller as asserted by the identity provider
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// SystemPrincipal is the identity scheduled jobs act under
func SystemPrincipal() Principal {
	return Principal{Role: RoleAdmin}
}
