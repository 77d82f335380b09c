package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openparish/parishboard/middleware"
	"github.com/openparish/parishboard/services"
	"github.com/openparish/parishboard/utils"
)

// AdminController exposes the member-management and statistics surface.
// Authorization is decided by the services from the explicit session,
// not by this layer.
type AdminController struct {
	admin *services.AdminService
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{admin: services.NewAdminService(db)}
}

// Stats returns dashboard totals.
func (a *AdminController) Stats(ctx *gin.Context) {
	stats, err := a.admin.DashboardStats(middleware.GetSession(ctx))
	if err != nil {
		serviceError(ctx, err, 50050, "failed to load statistics")
		return
	}
	utils.Success(ctx, stats)
}

// ListUsers returns every account, newest first.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	users, err := a.admin.ListUsers(middleware.GetSession(ctx))
	if err != nil {
		serviceError(ctx, err, 50051, "failed to list users")
		return
	}
	utils.Success(ctx, gin.H{"users": users})
}

// RecentUsers returns the five latest registrations.
func (a *AdminController) RecentUsers(ctx *gin.Context) {
	users, err := a.admin.RecentUsers(middleware.GetSession(ctx))
	if err != nil {
		serviceError(ctx, err, 50052, "failed to list recent users")
		return
	}
	utils.Success(ctx, gin.H{"users": users})
}

// ToggleUserRole flips a member between USER and ADMIN.
func (a *AdminController) ToggleUserRole(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	role, err := a.admin.ToggleUserRole(middleware.GetSession(ctx), id)
	if err != nil {
		serviceError(ctx, err, 50053, "failed to update role")
		return
	}
	utils.Success(ctx, gin.H{"role": role})
}

// DeleteUser removes an account; self-deletion is refused.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	if err := a.admin.DeleteUser(middleware.GetSession(ctx), id); err != nil {
		serviceError(ctx, err, 50054, "failed to delete user")
		return
	}
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// PostCategories returns post counts grouped by board category.
func (a *AdminController) PostCategories(ctx *gin.Context) {
	rows, err := a.admin.PostCountsByCategory(middleware.GetSession(ctx))
	if err != nil {
		serviceError(ctx, err, 50055, "failed to load category statistics")
		return
	}
	utils.Success(ctx, gin.H{"categories": rows})
}

// Posts returns all posts with their comment counts.
func (a *AdminController) Posts(ctx *gin.Context) {
	posts, err := a.admin.PostsWithCommentCounts(middleware.GetSession(ctx))
	if err != nil {
		serviceError(ctx, err, 50056, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{"posts": posts})
}
