package services

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/openparish/parishboard/models"
)

func TestIncrementVisitorLog(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewVisitorService(db)

	c.Assert(svc.TodayVisitorCount(), qt.Equals, int64(0))

	for i := 0; i < 4; i++ {
		c.Assert(svc.IncrementVisitorLog(), qt.IsNil)
	}
	c.Assert(svc.TodayVisitorCount(), qt.Equals, int64(4))

	// Still a single row for the day.
	var rows int64
	c.Assert(db.Model(&models.VisitorLog{}).Count(&rows).Error, qt.IsNil)
	c.Assert(rows, qt.Equals, int64(1))
}

func TestVisitorLogDayBoundary(t *testing.T) {
	c := qt.New(t)
	db := newTestDB(t)
	svc := NewVisitorService(db)

	day1 := time.Date(2026, 4, 1, 23, 50, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }

	c.Assert(svc.IncrementVisitorLog(), qt.IsNil)
	c.Assert(svc.IncrementVisitorLog(), qt.IsNil)
	c.Assert(svc.TodayVisitorCount(), qt.Equals, int64(2))

	// Midnight rolls over to a fresh counter.
	day2 := day1.Add(20 * time.Minute)
	svc.now = func() time.Time { return day2 }

	c.Assert(svc.TodayVisitorCount(), qt.Equals, int64(0))
	c.Assert(svc.IncrementVisitorLog(), qt.IsNil)
	c.Assert(svc.TodayVisitorCount(), qt.Equals, int64(1))

	// The previous day's row is untouched.
	var row models.VisitorLog
	key := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	c.Assert(db.Where("date = ?", key).First(&row).Error, qt.IsNil)
	c.Assert(row.Count, qt.Equals, int64(2))
}
