package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/suteetoe/grantdesk/internal/validate"
	"github.com/suteetoe/grantdesk/prometheus"
	"gorm.io/gorm"
)

// Scope narrows a query, e.g. with request filters.
type Scope = func(*gorm.DB) *gorm.DB

// FindOwned loads the record with id owned by ownerID. A record that is
// missing and one owned by someone else are indistinguishable: both are
// ErrNotFound.
func FindOwned[T any](tx *gorm.DB, id, ownerID string) (*T, error) {
	var rec T
	err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateOwned applies updates to the record with id owned by ownerID and
// returns it as stored.
func UpdateOwned[T any](tx *gorm.DB, id, ownerID string, updates map[string]interface{}) (*T, error) {
	rec, err := FindOwned[T](tx, id, ownerID)
	if err != nil {
		return nil, err
	}

	result := tx.Model(rec).Where("user_id = ?", ownerID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return FindOwned[T](tx, id, ownerID)
}

// DeleteOwned removes the record with id owned by ownerID and returns what
// was removed.
func DeleteOwned[T any](tx *gorm.DB, id, ownerID string) (*T, error) {
	rec, err := FindOwned[T](tx, id, ownerID)
	if err != nil {
		return nil, err
	}

	result := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(new(T))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Get loads one owned record outside a transaction.
func Get[T any](ctx context.Context, s *Store, id, ownerID string) (*T, error) {
	defer prometheus.TrackDBOperation("get")(time.Now())
	return FindOwned[T](s.DB(ctx), id, ownerID)
}

// ListOwned returns one page of ownerID's records matching scopes, and the
// total number of matches. order defaults to newest first.
func ListOwned[T any](ctx context.Context, s *Store, ownerID string, page validate.Page, order string, scopes ...Scope) ([]T, int64, error) {
	owned := func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", ownerID)
	}
	return list[T](ctx, s, page, order, append([]Scope{owned}, scopes...)...)
}

func list[T any](ctx context.Context, s *Store, page validate.Page, order string, scopes ...Scope) ([]T, int64, error) {
	defer prometheus.TrackDBOperation("list")(time.Now())

	query := func() *gorm.DB {
		return s.DB(ctx).Model(new(T)).Scopes(scopes...)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page.PastEnd(total) {
		return make([]T, 0), total, nil
	}

	if order == "" {
		order = "created_at DESC"
	}
	rows := make([]T, 0, page.Limit)
	err := query().
		Order(order).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches term case-insensitively as a substring of any of columns.
func Search(term string, columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + likeEscaper.Replace(term) + "%"
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, col := range columns {
			clause := "LOWER(" + col + ") LIKE LOWER(?) ESCAPE '\\'"
			if i == 0 {
				cond = cond.Where(clause, pattern)
			} else {
				cond = cond.Or(clause, pattern)
			}
		}
		return db.Where(cond)
	}
}

// Equal filters column = value when value is set.
func Equal(column, value string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}
