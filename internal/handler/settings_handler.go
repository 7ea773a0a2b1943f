package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PreferenceRequest replaces every preference.
type PreferenceRequest struct {
	EmailNotifications   *bool                  `json:"emailNotifications" validate:"required"`
	DeadlineReminderDays int                    `json:"deadlineReminderDays" validate:"required,min=1,max=90"`
	Theme                string                 `json:"theme" validate:"required,oneof=light dark system"`
	Settings             map[string]interface{} `json:"settings"`
}

// PreferencePatch changes some preferences.
type PreferencePatch struct {
	EmailNotifications   *bool                  `json:"emailNotifications" patch:"required"`
	DeadlineReminderDays *int                   `json:"deadlineReminderDays" validate:"omitnil,min=1,max=90" patch:"required"`
	Theme                *string                `json:"theme" validate:"omitnil,oneof=light dark system" patch:"required"`
	Settings             map[string]interface{} `json:"settings"`
}

// OrganizationRequest replaces the organization profile.
type OrganizationRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Mission      string   `json:"mission" validate:"max=5000"`
	EIN          string   `json:"ein" validate:"omitempty,max=20"`
	Website      string   `json:"website" validate:"omitempty,url,max=500"`
	Address      string   `json:"address" validate:"max=1000"`
	AnnualBudget *float64 `json:"annualBudget" validate:"omitnil,gte=0"`
	FoundedYear  *int     `json:"foundedYear" validate:"omitnil,min=1800,max=2100"`
	FocusAreas   []string `json:"focusAreas" validate:"max=20,dive,min=1,max=100"`
}

// OrganizationPatch changes some profile fields.
type OrganizationPatch struct {
	Name         *string  `json:"name" validate:"omitnil,min=1,max=255" patch:"required"`
	Mission      *string  `json:"mission" validate:"omitnil,max=5000"`
	EIN          *string  `json:"ein" validate:"omitnil,max=20"`
	Website      *string  `json:"website" validate:"omitnil,omitempty,url,max=500"`
	Address      *string  `json:"address" validate:"omitnil,max=1000"`
	AnnualBudget *float64 `json:"annualBudget" validate:"omitnil,gte=0"`
	FoundedYear  *int     `json:"foundedYear" validate:"omitnil,min=1800,max=2100"`
	FocusAreas   []string `json:"focusAreas" validate:"omitempty,max=20,dive,min=1,max=100"`
}

// GetPreferences returns the principal's preferences, defaults included.
func (h *Handler) GetPreferences(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	pref, err := h.store.Preference(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return response.OK(c, pref)
}

// ReplacePreferences overwrites every preference.
func (h *Handler) ReplacePreferences(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req PreferenceRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	return h.savePreferences(c, p.ID, map[string]interface{}{
		"EmailNotifications":   *req.EmailNotifications,
		"DeadlineReminderDays": req.DeadlineReminderDays,
		"Theme":                req.Theme,
		"Settings":             jsonMap(req.Settings),
	})
}

// UpdatePreferences changes some preferences.
func (h *Handler) UpdatePreferences(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch PreferencePatch
	updates, err := validate.BindPatch(c, &patch)
	if err != nil {
		return err
	}
	if _, ok := updates["Settings"]; ok {
		updates["Settings"] = jsonMap(patch.Settings)
	}
	return h.savePreferences(c, p.ID, updates)
}

func (h *Handler) savePreferences(c echo.Context, userID string, updates map[string]interface{}) error {
	var pref *model.Preference
	err := h.store.Mutate(c.Request().Context(), userID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		pref, err = store.UpsertSingleton(tx, userID, model.NewPreference, updates)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Updated preferences", EntityType: "preference", EntityID: userID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, pref)
}

// GetOrganization returns the principal's organization profile.
func (h *Handler) GetOrganization(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	org, err := h.store.OrganizationProfile(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return response.OK(c, org)
}

// ReplaceOrganization overwrites the organization profile.
func (h *Handler) ReplaceOrganization(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req OrganizationRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	return h.saveOrganization(c, p.ID, map[string]interface{}{
		"Name":         req.Name,
		"Mission":      req.Mission,
		"EIN":          req.EIN,
		"Website":      req.Website,
		"Address":      req.Address,
		"AnnualBudget": req.AnnualBudget,
		"FoundedYear":  req.FoundedYear,
		"FocusAreas":   stringsJSON(req.FocusAreas),
	})
}

// UpdateOrganization changes some profile fields.
func (h *Handler) UpdateOrganization(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch OrganizationPatch
	updates, err := validate.BindPatch(c, &patch)
	if err != nil {
		return err
	}
	if _, ok := updates["FocusAreas"]; ok {
		updates["FocusAreas"] = stringsJSON(patch.FocusAreas)
	}
	return h.saveOrganization(c, p.ID, updates)
}

func (h *Handler) saveOrganization(c echo.Context, userID string, updates map[string]interface{}) error {
	var org *model.OrganizationProfile
	err := h.store.Mutate(c.Request().Context(), userID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		org, err = store.UpsertSingleton(tx, userID, model.NewOrganizationProfile, updates)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Updated organization profile", EntityType: "organization", EntityID: org.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, org)
}

func jsonMap(m map[string]interface{}) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}
