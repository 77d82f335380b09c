package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openparish/parishboard/models"
)

// VisitorService maintains the per-day visit counter. One row per UTC
// calendar day; increments are a single atomic upsert so concurrent
// same-day visits cannot lose updates. The server cannot tell visitors
// apart, so the count is a session proxy, not unique visitors; per-day
// dedup is left to clients.
type VisitorService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewVisitorService creates a VisitorService using the wall clock.
func NewVisitorService(db *gorm.DB) *VisitorService {
	return &VisitorService{db: db, now: time.Now}
}

// today returns the current day truncated to midnight UTC, the unique
// key of the counter row.
func (s *VisitorService) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IncrementVisitorLog records one visit for today: insert with count 1,
// or bump the existing row. Never a read-then-write.
func (s *VisitorService) IncrementVisitorLog() error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"updated_at": s.now(),
		}),
	}).Create(&models.VisitorLog{Date: s.today(), Count: 1}).Error
	if err != nil {
		return fmt.Errorf("increment visitor log: %w", err)
	}
	return nil
}

// TodayVisitorCount returns today's count, or 0 when no visit has been
// recorded yet.
func (s *VisitorService) TodayVisitorCount() int64 {
	var row models.VisitorLog
	err := s.db.Where("date = ?", s.today()).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logWarnf("read visitor log failed err=%v", err)
		}
		return 0
	}
	return row.Count
}
