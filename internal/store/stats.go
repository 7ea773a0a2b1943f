package store

import (
	"context"
	"time"

	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/prometheus"
	"gorm.io/gorm"
)

// DashboardStats summarizes a principal's workspace.
type DashboardStats struct {
	Applications        map[string]int64 `json:"applications"`
	TotalApplications   int64            `json:"totalApplications"`
	AwardedAmount       float64          `json:"awardedAmount"`
	UpcomingDeadlines   int64            `json:"upcomingDeadlines"`
	OverdueCompliance   int64            `json:"overdueCompliance"`
	Donors              int64            `json:"donors"`
	TotalRaised         float64          `json:"totalRaised"`
	UnreadNotifications int64            `json:"unreadNotifications"`
	Bookmarks           int64            `json:"bookmarks"`
	RecentActivity      []model.Activity `json:"recentActivity"`
}

type statusCount struct {
	Status string
	Count  int64
}

// Stats computes the dashboard summary as of now. Deadlines within the
// principal's reminder window count as upcoming.
func (s *Store) Stats(ctx context.Context, userID string, now time.Time) (*DashboardStats, error) {
	defer prometheus.TrackDBOperation("stats")(time.Now())

	pref, err := s.Preference(ctx, userID)
	if err != nil {
		return nil, err
	}
	horizon := now.AddDate(0, 0, pref.DeadlineReminderDays)

	db := s.DB(ctx)
	owned := func(m interface{}) *gorm.DB {
		return db.Model(m).Where("user_id = ?", userID)
	}

	stats := &DashboardStats{Applications: make(map[string]int64), RecentActivity: []model.Activity{}}

	var byStatus []statusCount
	err = owned(&model.GrantApplication{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, sc := range byStatus {
		stats.Applications[sc.Status] = sc.Count
		stats.TotalApplications += sc.Count
	}

	queries := []func() error{
		func() error {
			return owned(&model.GrantApplication{}).
				Where("status = ?", model.ApplicationAwarded).
				Select("COALESCE(SUM(amount), 0)").Scan(&stats.AwardedAmount).Error
		},
		func() error {
			return owned(&model.ComplianceItem{}).
				Where("status <> ? AND due_date >= ? AND due_date <= ?", model.ComplianceCompleted, now, horizon).
				Count(&stats.UpcomingDeadlines).Error
		},
		func() error {
			return owned(&model.ComplianceItem{}).
				Where("status <> ? AND (status = ? OR due_date < ?)", model.ComplianceCompleted, model.ComplianceOverdue, now).
				Count(&stats.OverdueCompliance).Error
		},
		func() error {
			return owned(&model.Donor{}).Count(&stats.Donors).Error
		},
		func() error {
			return owned(&model.Donor{}).Select("COALESCE(SUM(total_given), 0)").Scan(&stats.TotalRaised).Error
		},
		func() error {
			return owned(&model.Notification{}).Where("read = ?", false).Count(&stats.UnreadNotifications).Error
		},
		func() error {
			return owned(&model.Bookmark{}).Count(&stats.Bookmarks).Error
		},
		func() error {
			return db.Where("user_id = ?", userID).Order("created_at DESC").Limit(10).Find(&stats.RecentActivity).Error
		},
	}
	for _, q := range queries {
		if err := q(); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
