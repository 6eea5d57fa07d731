package models

// Role is a wire-level authority name as returned by the backend. The role
// set is authoritative only as delivered at login or restoration time; the
// client never adds to it locally.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// User is the non-sensitive identity stored in the session snapshot.
type User struct {
	ID       int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is the client's current belief about who is logged in and with
// which roles. Exactly one Session exists per process; it is owned by the
// session manager and replaced wholesale on login, logout, and restore.
type Session struct {
	User          User
	Roles         []Role
	Authenticated bool
}

// HasRole reports whether the session carries the given role.
func (s Session) HasRole(role Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// Anonymous returns the zero session used at startup and after logout.
func Anonymous() Session {
	return Session{}
}

// Profile is the full user record returned by GET /auth/user.
type Profile struct {
	ID                  int64    `json:"id"`
	Username            string   `json:"username"`
	Email               string   `json:"email"`
	Roles               []Role   `json:"roles"`
	Enabled             bool     `json:"enabled"`
	AccountNonLocked    bool     `json:"accountNonLocked"`
	TwoFactorEnabled    bool     `json:"isTwoFactorEnabled"`
	SignUpMethod        string   `json:"signUpMethod"`
	LastLoginDate       string   `json:"lastLoginDate"`
	CreatedDate         string   `json:"createdDate"`
	FailedLoginAttempts int      `json:"failedLoginAttempts"`
}

// AdminUser is the account record returned by the admin user endpoints.
type AdminUser struct {
	ID                  int64  `json:"userId"`
	Username            string `json:"userName"`
	Email               string `json:"email"`
	Enabled             bool   `json:"enabled"`
	AccountNonLocked    bool   `json:"accountNonLocked"`
	TwoFactorEnabled    bool   `json:"isTwoFactorEnabled"`
	SignUpMethod        string `json:"signUpMethod"`
	FailedLoginAttempts int    `json:"failedLoginAttempts"`
}
