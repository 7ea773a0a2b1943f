package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/genie"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/internal/response"
	"github.com/suteetoe/grantdesk/internal/store"
	"github.com/suteetoe/grantdesk/internal/validate"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PracticeSessionRequest is the body of a practice session create.
type PracticeSessionRequest struct {
	DonorPersona string `json:"donorPersona" validate:"required,max=255"`
	Scenario     string `json:"scenario" validate:"max=5000"`
}

// PracticeSessionPatch is the body of a partial update.
type PracticeSessionPatch struct {
	DonorPersona *string `json:"donorPersona" validate:"omitnil,min=1,max=255" patch:"required"`
	Scenario     *string `json:"scenario" validate:"omitnil,max=5000"`
	Status       *string `json:"status" validate:"omitnil,oneof=active completed" patch:"required"`
	Score        *int    `json:"score" validate:"omitnil,min=0,max=100"`
	Feedback     *string `json:"feedback" validate:"omitnil,max=10000"`
}

// PracticeMessageRequest is one fundraiser turn in a practice session.
type PracticeMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// ListPracticeSessions returns the principal's practice sessions.
func (h *Handler) ListPracticeSessions(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg, err := page(c)
	if err != nil {
		return err
	}

	rows, total, err := store.ListOwned[model.PracticeSession](c.Request().Context(), h.store, p.ID, pg, "",
		store.Equal("status", c.QueryParam("status")),
	)
	if err != nil {
		return err
	}
	return response.Paginated(c, rows, response.NewMeta(pg, total))
}

// GetPracticeSession returns one session with its transcript.
func (h *Handler) GetPracticeSession(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	session, err := store.Get[model.PracticeSession](c.Request().Context(), h.store, c.Param("id"), p.ID)
	if err != nil {
		return err
	}
	return response.OK(c, session)
}

// CreatePracticeSession starts a session; status defaults to active.
func (h *Handler) CreatePracticeSession(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req PracticeSessionRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	session := &model.PracticeSession{
		DonorPersona: req.DonorPersona,
		Scenario:     req.Scenario,
		Status:       model.Defaults.PracticeStatus,
		Transcript:   datatypes.JSONSlice[model.Turn]{},
	}
	session.UserID = p.ID

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		if err := tx.Create(session).Error; err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Started practice session with " + session.DonorPersona, EntityType: "practice_session", EntityID: session.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Created(c, session)
}

// UpdatePracticeSession applies a partial update, e.g. completing a
// session with a score and feedback.
func (h *Handler) UpdatePracticeSession(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var patch PracticeSessionPatch
	updates, err := validate.BindPatch(c, &patch)
	if err != nil {
		return err
	}

	var session *model.PracticeSession
	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		session, err = store.UpdateOwned[model.PracticeSession](tx, c.Param("id"), p.ID, updates)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Updated practice session with " + session.DonorPersona, EntityType: "practice_session", EntityID: session.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, session)
}

// DeletePracticeSession removes a session.
func (h *Handler) DeletePracticeSession(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	err = h.store.Mutate(c.Request().Context(), p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		session, err := store.DeleteOwned[model.PracticeSession](tx, id, p.ID)
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Deleted practice session with " + session.DonorPersona, EntityType: "practice_session", EntityID: session.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"id": id})
}

// SendPracticeMessage appends the fundraiser's turn, asks the donor-practice
// assistant for the donor's reply, and stores both.
func (h *Handler) SendPracticeMessage(c echo.Context) error {
	log := logger.FromEcho(c)
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req PracticeMessageRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	session, err := store.Get[model.PracticeSession](ctx, h.store, c.Param("id"), p.ID)
	if err != nil {
		return err
	}
	if session.Status != model.PracticeActive {
		return echo.NewHTTPError(http.StatusBadRequest, "Practice session is not active")
	}

	assistant, _ := genie.Lookup("donor-practice")
	assistant.SystemPrompt = fmt.Sprintf("%s\n\nYou are: %s\nScenario: %s", assistant.SystemPrompt, session.DonorPersona, session.Scenario)

	history := make([]genie.Message, 0, len(session.Transcript)+1)
	for _, turn := range session.Transcript {
		history = append(history, genie.Message{Role: turn.Role, Content: turn.Content})
	}
	history = append(history, genie.Message{Role: "user", Content: req.Content})

	reply, err := h.genie.Complete(ctx, assistant, history)
	if err != nil {
		log.Error("Donor practice reply failed", zap.String("session_id", session.ID), zap.Error(err))
		return err
	}

	now := h.now().UTC()
	transcript := append(session.Transcript,
		model.Turn{Role: "user", Content: req.Content, At: now},
		model.Turn{Role: "assistant", Content: reply, At: now},
	)

	err = h.store.Mutate(ctx, p.ID, func(tx *gorm.DB) (*store.Entry, error) {
		var err error
		session, err = store.UpdateOwned[model.PracticeSession](tx, session.ID, p.ID, map[string]interface{}{"Transcript": transcript})
		if err != nil {
			return nil, err
		}
		return &store.Entry{Action: "Practiced with " + session.DonorPersona, EntityType: "practice_session", EntityID: session.ID}, nil
	})
	if err != nil {
		return err
	}
	return response.OK(c, echo.Map{"reply": reply, "session": session})
}
