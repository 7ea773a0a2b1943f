package store

import (
	"context"
	"errors"
	"time"

	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/validate"
	"github.com/suteetoe/grantdesk/prometheus"
	"gorm.io/gorm"
)

// OpportunityFilter narrows the public catalog.
type OpportunityFilter struct {
	Search   string
	Category string
	Status   string
}

// ListOpportunities returns one page of the public catalog, soonest
// deadline first. When viewerID is set each row carries its bookmark flag.
func (s *Store) ListOpportunities(ctx context.Context, f OpportunityFilter, page validate.Page, viewerID string) ([]model.GrantOpportunity, int64, error) {
	rows, total, err := list[model.GrantOpportunity](ctx, s, page, "deadline IS NULL, deadline ASC, created_at DESC",
		Search(f.Search, "title", "funder", "description"),
		Equal("category", f.Category),
		Equal("status", f.Status),
	)
	if err != nil {
		return nil, 0, err
	}
	if err := s.markBookmarked(ctx, rows, viewerID); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Opportunity loads one catalog entry.
func (s *Store) Opportunity(ctx context.Context, id, viewerID string) (*model.GrantOpportunity, error) {
	defer prometheus.TrackDBOperation("get")(time.Now())

	var opp model.GrantOpportunity
	err := s.DB(ctx).Where("id = ?", id).First(&opp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows := []model.GrantOpportunity{opp}
	if err := s.markBookmarked(ctx, rows, viewerID); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (s *Store) markBookmarked(ctx context.Context, rows []model.GrantOpportunity, viewerID string) error {
	if viewerID == "" || len(rows) == 0 {
		return nil
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var marked []string
	err := s.DB(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND opportunity_id IN ?", viewerID, ids).
		Pluck("opportunity_id", &marked).Error
	if err != nil {
		return err
	}

	set := make(map[string]bool, len(marked))
	for _, id := range marked {
		set[id] = true
	}
	for i := range rows {
		flag := set[rows[i].ID]
		rows[i].Bookmarked = &flag
	}
	return nil
}

// CreateBookmark pins an opportunity for the principal. Pinning the same
// opportunity twice is ErrConflict; pinning an unknown one is ErrNotFound.
func CreateBookmark(tx *gorm.DB, b *model.Bookmark) error {
	var opportunities int64
	if err := tx.Model(&model.GrantOpportunity{}).Where("id = ?", b.OpportunityID).Count(&opportunities).Error; err != nil {
		return err
	}
	if opportunities == 0 {
		return ErrNotFound
	}

	var existing int64
	err := tx.Model(&model.Bookmark{}).
		Where("user_id = ? AND opportunity_id = ?", b.UserID, b.OpportunityID).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return ErrConflict
	}

	if err := tx.Create(b).Error; err != nil {
		return translate(err)
	}
	return nil
}

// ListBookmarks returns one page of the principal's bookmarks with their
// opportunities attached.
func (s *Store) ListBookmarks(ctx context.Context, userID string, page validate.Page) ([]model.Bookmark, int64, error) {
	rows, total, err := ListOwned[model.Bookmark](ctx, s, userID, page, "")
	if err != nil || len(rows) == 0 {
		return rows, total, err
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].OpportunityID
	}
	var opportunities []model.GrantOpportunity
	if err := s.DB(ctx).Where("id IN ?", ids).Find(&opportunities).Error; err != nil {
		return nil, 0, err
	}

	byID := make(map[string]*model.GrantOpportunity, len(opportunities))
	for i := range opportunities {
		byID[opportunities[i].ID] = &opportunities[i]
	}
	for i := range rows {
		rows[i].Opportunity = byID[rows[i].OpportunityID]
	}
	return rows, total, nil
}
