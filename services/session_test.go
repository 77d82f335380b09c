package services

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/openparish/parishboard/models"
)

func TestDeriveRole(t *testing.T) {
	c := qt.New(t)
	allowList := []string{"pastor@parish.example", " Office@Parish.Example "}

	// Allow-list membership wins regardless of the stored role.
	c.Assert(DeriveRole("pastor@parish.example", models.RoleUser, allowList), qt.Equals, models.RoleAdmin)
	c.Assert(DeriveRole("OFFICE@parish.example", models.RoleUser, allowList), qt.Equals, models.RoleAdmin)
	c.Assert(DeriveRole("pastor@parish.example", models.RoleAdmin, allowList), qt.Equals, models.RoleAdmin)

	// Non-listed emails keep their stored role.
	c.Assert(DeriveRole("member@parish.example", models.RoleUser, allowList), qt.Equals, models.RoleUser)
	c.Assert(DeriveRole("member@parish.example", models.RoleAdmin, allowList), qt.Equals, models.RoleAdmin)

	// Unknown stored values normalize to USER.
	c.Assert(DeriveRole("member@parish.example", "moderator", allowList), qt.Equals, models.RoleUser)
	c.Assert(DeriveRole("member@parish.example", "", allowList), qt.Equals, models.RoleUser)

	// Empty list and empty email never promote.
	c.Assert(DeriveRole("member@parish.example", models.RoleUser, nil), qt.Equals, models.RoleUser)
	c.Assert(DeriveRole("", models.RoleUser, allowList), qt.Equals, models.RoleUser)
}

func TestRequireAdmin(t *testing.T) {
	c := qt.New(t)

	c.Assert(RequireAdmin(&Session{UserID: 1, Role: models.RoleAdmin}), qt.IsNil)
	c.Assert(RequireAdmin(&Session{UserID: 1, Role: models.RoleUser}), qt.Equals, ErrUnauthorized)
	c.Assert(RequireAdmin(nil), qt.Equals, ErrUnauthorized)
}

func TestSessionIsAdmin(t *testing.T) {
	c := qt.New(t)

	var none *Session
	c.Assert(none.IsAdmin(), qt.IsFalse)
	c.Assert((&Session{Role: models.RoleUser}).IsAdmin(), qt.IsFalse)
	c.Assert((&Session{Role: models.RoleAdmin}).IsAdmin(), qt.IsTrue)
}
