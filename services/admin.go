package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openparish/parishboard/models"
)

// AdminService implements the member-management and statistics surface.
// Every operation takes the caller's session explicitly and checks it
// before touching persistence.
type AdminService struct {
	db *gorm.DB
}

// NewAdminService creates an AdminService.
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// DashboardStats summarizes site activity for the admin dashboard.
type DashboardStats struct {
	TotalUsers int64 `json:"total_users"`
	TodayUsers int64 `json:"today_users"`
	TotalPosts int64 `json:"total_posts"`
	TodayPosts int64 `json:"today_posts"`
}

// CategoryCount is the number of posts in one board category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DashboardStats returns totals and today's registrations and posts.
func (s *AdminService) DashboardStats(sess *Session) (*DashboardStats, error) {
	if err := RequireAdmin(sess); err != nil {
		return nil, err
	}

	t := time.Now().UTC()
	startOfToday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	var stats DashboardStats
	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.Model(&models.User{}).Where("created_at >= ?", startOfToday).Count(&stats.TodayUsers).Error; err != nil {
		return nil, fmt.Errorf("count today's users: %w", err)
	}
	if err := s.db.Model(&models.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if err := s.db.Model(&models.Post{}).Where("created_at >= ?", startOfToday).Count(&stats.TodayPosts).Error; err != nil {
		return nil, fmt.Errorf("count today's posts: %w", err)
	}
	return &stats, nil
}

// ListUsers returns all accounts, newest first.
func (s *AdminService) ListUsers(sess *Session) ([]models.User, error) {
	if err := RequireAdmin(sess); err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.db.Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// RecentUsers returns the latest five registrations.
func (s *AdminService) RecentUsers(sess *Session) ([]models.User, error) {
	if err := RequireAdmin(sess); err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.db.Order("created_at DESC, id DESC").Limit(5).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	return users, nil
}

// ToggleUserRole flips a user between USER and ADMIN and returns the
// new role.
func (s *AdminService) ToggleUserRole(sess *Session, userID uint) (string, error) {
	if err := RequireAdmin(sess); err != nil {
		return "", err
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load user %d: %w", userID, err)
	}
	newRole := models.RoleAdmin
	if user.Role == models.RoleAdmin {
		newRole = models.RoleUser
	}
	if err := s.db.Model(&user).Update("role", newRole).Error; err != nil {
		return "", fmt.Errorf("update role: %w", err)
	}
	return newRole, nil
}

// DeleteUser removes an account. Admins cannot delete themselves here;
// that fails with ErrSelfDelete and nothing is removed.
func (s *AdminService) DeleteUser(sess *Session, userID uint) error {
	if err := RequireAdmin(sess); err != nil {
		return err
	}
	if sess.UserID == userID {
		return ErrSelfDelete
	}
	return RemoveUser(s.db, userID)
}

// RemoveUser deletes an account while keeping its board history: posts
// stay behind with their stored author name and a nulled user
// reference. The nullify step is explicit in the transaction rather
// than left to foreign key actions. Shared by the admin surface and
// self-service account closure.
func RemoveUser(db *gorm.DB, userID uint) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	return nil
}

// PostCountsByCategory returns how many posts each category holds.
func (s *AdminService) PostCountsByCategory(sess *Session) ([]CategoryCount, error) {
	if err := RequireAdmin(sess); err != nil {
		return nil, err
	}
	var rows []CategoryCount
	err := s.db.Model(&models.Post{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group posts by category: %w", err)
	}
	return rows, nil
}

// PostsWithCommentCounts lists every post, newest first, with its
// comment count, for the admin post manager.
func (s *AdminService) PostsWithCommentCounts(sess *Session) ([]PostSummary, error) {
	if err := RequireAdmin(sess); err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := s.db.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	counts := make(map[uint]int64, len(posts))
	var rows []struct {
		PostID uint
		N      int64
	}
	err := s.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	for _, r := range rows {
		counts[r.PostID] = r.N
	}

	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, PostSummary{Post: p, CommentCount: counts[p.ID]})
	}
	return summaries, nil
}
