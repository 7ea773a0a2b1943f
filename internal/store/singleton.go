package store

import (
	"context"
	"errors"
	"time"

	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/prometheus"
	"gorm.io/gorm"
)

// Preference returns the principal's preferences, or the defaults when none
// have been saved yet. Nothing is written.
func (s *Store) Preference(ctx context.Context, userID string) (*model.Preference, error) {
	defer prometheus.TrackDBOperation("get")(time.Now())
	return findSingleton(s.DB(ctx), userID, model.NewPreference)
}

// OrganizationProfile returns the principal's organization profile, or an
// empty one when none has been saved yet. Nothing is written.
func (s *Store) OrganizationProfile(ctx context.Context, userID string) (*model.OrganizationProfile, error) {
	defer prometheus.TrackDBOperation("get")(time.Now())
	return findSingleton(s.DB(ctx), userID, model.NewOrganizationProfile)
}

func findSingleton[T any](tx *gorm.DB, userID string, fresh func(string) *T) (*T, error) {
	var rec T
	err := tx.Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fresh(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertSingleton applies updates to the principal's singleton row, creating
// it from fresh first when it does not exist. Runs inside a Mutate.
func UpsertSingleton[T any](tx *gorm.DB, userID string, fresh func(string) *T, updates map[string]interface{}) (*T, error) {
	var rec T
	err := tx.Where("user_id = ?", userID).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := fresh(userID)
		if err := tx.Create(created).Error; err != nil {
			return nil, err
		}
		rec = *created
	case err != nil:
		return nil, err
	}

	if err := tx.Model(&rec).Where("user_id = ?", userID).Updates(updates).Error; err != nil {
		return nil, err
	}

	var stored T
	if err := tx.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
