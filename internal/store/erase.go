package store

import (
	"context"
	"fmt"
	"time"

	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"github.com/suteetoe/grantdesk/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EraseAccount deletes every row owned by userID, children before parents,
// in a single transaction. It returns the number of rows removed per table.
func (s *Store) EraseAccount(ctx context.Context, userID string) (map[string]int64, error) {
	defer prometheus.TrackDBOperation("erase")(time.Now())

	removed := make(map[string]int64)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range model.ErasureOrder() {
			table, err := tableName(tx, m)
			if err != nil {
				return err
			}
			result := tx.Where("user_id = ?", userID).Delete(m)
			if result.Error != nil {
				return fmt.Errorf("erase %s: %w", table, result.Error)
			}
			removed[table] = result.RowsAffected
			logger.FromContext(ctx).Debug("Erased account rows",
				zap.String("table", table),
				zap.Int64("rows", result.RowsAffected))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func tableName(db *gorm.DB, m interface{}) (string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(m); err != nil {
		return "", fmt.Errorf("parse model %T: %w", m, err)
	}
	return stmt.Schema.Table, nil
}
