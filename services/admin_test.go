package services

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/openparish/parishboard/models"
)

func TestAdminOperationsRequireAdmin(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewAdminService(db)
	member := &Session{UserID: 1, Role: models.RoleUser}

	_, err := svc.DashboardStats(member)
	c.Assert(err, qt.Equals, ErrUnauthorized)
	_, err = svc.ListUsers(member)
	c.Assert(err, qt.Equals, ErrUnauthorized)
	_, err = svc.RecentUsers(member)
	c.Assert(err, qt.Equals, ErrUnauthorized)
	_, err = svc.ToggleUserRole(member, 2)
	c.Assert(err, qt.Equals, ErrUnauthorized)
	c.Assert(svc.DeleteUser(member, 2), qt.Equals, ErrUnauthorized)
	_, err = svc.PostCountsByCategory(member)
	c.Assert(err, qt.Equals, ErrUnauthorized)
	_, err = svc.PostsWithCommentCounts(member)
	c.Assert(err, qt.Equals, ErrUnauthorized)
}

func TestToggleUserRole(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewAdminService(db)
	admin := &Session{UserID: 99, Role: models.RoleAdmin}

	user := models.User{Email: "member@parish.example", Name: "Member", Role: models.RoleUser}
	c.Assert(db.Create(&user).Error, qt.IsNil)

	role, err := svc.ToggleUserRole(admin, user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(role, qt.Equals, models.RoleAdmin)

	role, err = svc.ToggleUserRole(admin, user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(role, qt.Equals, models.RoleUser)

	_, err = svc.ToggleUserRole(admin, 9999)
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestDeleteUserSelfGuard(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewAdminService(db)

	user := models.User{Email: "admin@parish.example", Name: "Admin", Role: models.RoleAdmin}
	c.Assert(db.Create(&user).Error, qt.IsNil)

	self := &Session{UserID: user.ID, Role: models.RoleAdmin}
	c.Assert(svc.DeleteUser(self, user.ID), qt.Equals, ErrSelfDelete)

	// The guard left the account untouched.
	var count int64
	c.Assert(db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error, qt.IsNil)
	c.Assert(count, qt.Equals, int64(1))
}

func TestRemoveUserKeepsPosts(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)

	user := models.User{Email: "leaving@parish.example", Name: "Leaving", Role: models.RoleUser}
	c.Assert(db.Create(&user).Error, qt.IsNil)

	post := models.Post{Title: "farewell", Author: "Leaving", Category: "free", UserID: &user.ID}
	c.Assert(db.Create(&post).Error, qt.IsNil)

	c.Assert(RemoveUser(db, user.ID), qt.IsNil)
	c.Assert(RemoveUser(db, user.ID), qt.Equals, ErrNotFound)

	// The post survives under the stored author name with the owner
	// reference nulled.
	var kept models.Post
	c.Assert(db.First(&kept, post.ID).Error, qt.IsNil)
	c.Assert(kept.Author, qt.Equals, "Leaving")
	c.Assert(kept.UserID, qt.IsNil)
}

func TestDashboardStats(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewAdminService(db)
	admin := &Session{UserID: 99, Role: models.RoleAdmin}

	old := time.Now().UTC().Add(-48 * time.Hour)
	c.Assert(db.Create(&models.User{Email: "old@parish.example", Name: "Old", CreatedAt: old}).Error, qt.IsNil)
	c.Assert(db.Create(&models.User{Email: "new@parish.example", Name: "New"}).Error, qt.IsNil)

	seedPost(t, db, "free", "old post", old)
	seedPost(t, db, "free", "new post", time.Now().UTC())

	stats, err := svc.DashboardStats(admin)
	c.Assert(err, qt.IsNil)
	c.Assert(stats.TotalUsers, qt.Equals, int64(2))
	c.Assert(stats.TodayUsers, qt.Equals, int64(1))
	c.Assert(stats.TotalPosts, qt.Equals, int64(2))
	c.Assert(stats.TodayPosts, qt.Equals, int64(1))
}

func TestPostCountsByCategory(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewAdminService(db)
	admin := &Session{UserID: 99, Role: models.RoleAdmin}

	now := time.Now().UTC()
	seedPost(t, db, "qna", "q1", now)
	seedPost(t, db, "qna", "q2", now)
	seedPost(t, db, "gallery", "g1", now)

	rows, err := svc.PostCountsByCategory(admin)
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)
	c.Assert(rows[0].Category, qt.Equals, "qna")
	c.Assert(rows[0].Count, qt.Equals, int64(2))
	c.Assert(rows[1].Category, qt.Equals, "gallery")
	c.Assert(rows[1].Count, qt.Equals, int64(1))
}
