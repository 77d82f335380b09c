package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openparish/parishboard/services"
	"github.com/openparish/parishboard/utils"
)

// VisitorController exposes the daily visitor counter. Clients are
// expected to call Increment at most once per calendar day using their
// own persisted state; the server does not deduplicate.
type VisitorController struct {
	visitors *services.VisitorService
}

// NewVisitorController creates a VisitorController.
func NewVisitorController(db *gorm.DB) *VisitorController {
	return &VisitorController{visitors: services.NewVisitorService(db)}
}

// Increment records one visit for today.
func (v *VisitorController) Increment(ctx *gin.Context) {
	if err := v.visitors.IncrementVisitorLog(); err != nil {
		serviceError(ctx, err, 50040, "failed to record visit")
		return
	}
	utils.Success(ctx, gin.H{"count": v.visitors.TodayVisitorCount()})
}

// Today returns today's visit count, 0 when none recorded.
func (v *VisitorController) Today(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"count": v.visitors.TodayVisitorCount()})
}
