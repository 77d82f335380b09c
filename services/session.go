package services

import (
	"strings"

	"github.com/openparish/parishboard/models"
)

// Session is the identity attached to a request. It is passed to every
// operation that needs it instead of being fetched ambiently, so
// authorization is testable without simulating a request.
type Session struct {
	UserID   uint
	Email    string
	Name     string
	Nickname string
	Role     string
}

// IsAdmin reports whether the session carries the ADMIN role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// RequireAdmin gates admin-tier operations. Every such operation calls
// this before touching persistence.
func RequireAdmin(s *Session) error {
	if !s.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// DeriveRole computes the effective role for an account. Allow-list
// membership always wins over the stored role, so promoting an email in
// configuration takes effect on the next session refresh even when the
// row still says USER. Non-listed emails keep their stored role.
func DeriveRole(email, storedRole string, allowList []string) string {
	email = strings.TrimSpace(email)
	if email != "" {
		for _, allowed := range allowList {
			if strings.EqualFold(strings.TrimSpace(allowed), email) {
				return models.RoleAdmin
			}
		}
	}
	if storedRole == models.RoleAdmin {
		return models.RoleAdmin
	}
	return models.RoleUser
}
