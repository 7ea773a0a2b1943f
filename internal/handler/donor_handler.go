package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"gorm.io/gorm"
)

// DonorRequest is the body of a donor create.
type DonorRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	Email         string  `json:"email" validate:"omitempty,email,max=255"`
	Organization  string  `json:"organization" validate:"max=255"`
	Phone         string  `json:"phone" validate:"max=50"`
	Notes         string  `json:"notes" validate:"max=5000"`
	TotalGiven    float64 `json:"totalGiven" validate:"gte=0"`
	LastContactAt *string `json:"lastContactAt" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
}

// DonorPatch is the body of a partial update.
type DonorPatch struct {
	Name          *string  `json:"name" validate:"omitnil,min=1,max=255" patch:"required"`
	Email         *string  `json:"email" validate:"omitnil,omitempty,email,max=255"`
	Organization  *string  `json:"organization" validate:"omitnil,max=255"`
	Phone         *string  `json:"phone" validate:"omitnil,max=50"`
	Notes         *string  `json:"notes" validate:"omitnil,max=5000"`
	TotalGiven    *float64 `json:"totalGiven" validate:"omitnil,gte=0" patch:"required"`
	LastContactAt *string  `json:"lastContactAt" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
}

// ListDonors returns the principal's donors, searchable by name, email and
// organization.
func (h *Handler) ListDonors(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	rows, total, err := store.ListOwned[model.Donor](c.Request().Context(), h.store, p.ID, pg, "",
		store.Search(c.QueryParam("search"), "name", "email", "organization"),
	)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// GetDonor returns one donor.
func (h *Handler) GetDonor(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	donor, err := store.Get[model.Donor](c.Request().Context(), h.store, c.Param("id"), p.ID)
	if err != nil {
		return err
	}
	return response.OK(c, donor)
}

// CreateDonor stores a donor.
func (h *Handler) CreateDonor(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req DonorRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	donor := &model.Donor{
		Name:          req.Name,
		Email:         req.Email,
		Organization:  req.Organization,
		Phone:         req.Phone,
		Notes:         req.Notes,
		TotalGiven:    req.TotalGiven,
		LastContactAt: parseTimePtr(req.LastContactAt),
	}
	donor.UserID = p.ID

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if err := tx.Create(donor).Error; err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Added donor: " + donor.Name, EntityType: "donor", EntityID: donor.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Created(c, donor)
}

// UpdateDonor applies a partial update.
func (h *Handler) UpdateDonor(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch DonorPatch
	updates, err := validate.BindPatch(c, &patch)
	if err != nil {
		return err
	}
	parseTimes(updates, "LastContactAt")

	var donor *model.Donor
	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		donor, err = store.UpdateOwned[model.Donor](tx, c.Param("id"), p.ID, updates)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Updated donor: " + donor.Name, EntityType: "donor", EntityID: donor.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, donor)
}

// DeleteDonor removes a donor.
func (h *Handler) DeleteDonor(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		donor, err := store.DeleteOwned[model.Donor](tx, id, p.ID)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Removed donor: " + donor.Name, EntityType: "donor", EntityID: donor.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"id": id})
}
