package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/finance"
	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/notifications"
	"example.com/finance-dashboard/backend/internal/repository"
)

type GoalHandler struct {
	Goals    GoalStore
	Notifier *notifications.Hub
	now      func() time.Time
}

// NewGoalHandler создает обработчик целей накопления.
func NewGoalHandler(goals GoalStore, notifier *notifications.Hub) *GoalHandler {
	return &GoalHandler{Goals: goals, Notifier: notifier, now: time.Now}
}

type GoalRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	TargetAmount float64 `json:"target_amount" validate:"gt=0,lte=999999999999.99"`
	SavedAmount  float64 `json:"saved_amount" validate:"gte=0,lte=999999999999.99"`
	TargetDate   string  `json:"target_date" validate:"required"`
	Color        *string `json:"color"`
}

type AddFundsRequest struct {
	Amount float64 `json:"amount"`
}

type GoalResponse struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	TargetAmount float64              `json:"target_amount"`
	SavedAmount  float64              `json:"saved_amount"`
	TargetDate   string               `json:"target_date"`
	Color        string               `json:"color"`
	Progress     finance.GoalProgress `json:"progress"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// List возвращает цели пользователя с прогрессом.
func (h *GoalHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	goals, err := h.Goals.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, buildGoalResponses(goals, h.now()))
}

// Create создает цель.
func (h *GoalHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	goal, ok, err := bindGoal(c)
	if !ok {
		return err
	}
	goal.UserID = userID

	created, err := h.Goals.Create(c.Request().Context(), goal)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid goal")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toGoalResponse(created, h.now()))
}

// Update обновляет цель.
func (h *GoalHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	goalID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid goal id")
	}

	goal, ok, err := bindGoal(c)
	if !ok {
		return err
	}
	goal.ID = goalID
	goal.UserID = userID

	updated, err := h.Goals.Update(c.Request().Context(), goal)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "goal not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid goal")
		}
		return serverError(c)
	}

	response := toGoalResponse(updated, h.now())
	h.publishGoalUpdate(userID, response)
	return c.JSON(http.StatusOK, response)
}

// AddFunds добавляет взнос к накопленной сумме цели.
func (h *GoalHandler) AddFunds(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	goalID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid goal id")
	}

	var req AddFundsRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx := c.Request().Context()
	goal, err := h.Goals.GetByID(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "goal not found")
		}
		return serverError(c)
	}

	saved, err := finance.AddFunds(goal.SavedAmount, req.Amount)
	if err != nil {
		return validationFailed(c, err)
	}

	updated, err := h.Goals.SetSaved(ctx, userID, goalID, saved)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "goal not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid goal")
		}
		return serverError(c)
	}

	response := toGoalResponse(updated, h.now())
	h.publishGoalUpdate(userID, response)
	return c.JSON(http.StatusOK, response)
}

// Delete удаляет цель.
func (h *GoalHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	goalID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid goal id")
	}

	if err := h.Goals.Delete(c.Request().Context(), userID, goalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "goal not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *GoalHandler) publishGoalUpdate(userID uuid.UUID, response GoalResponse) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.NotifyGoalUpdated(userID, notifications.GoalUpdate{
		GoalID:             response.ID,
		SavedAmount:        response.SavedAmount,
		ProgressPercentage: response.Progress.ProgressPercentage,
		IsComplete:         response.Progress.IsComplete,
	})
}

func bindGoal(c echo.Context) (models.Goal, bool, error) {
	var req GoalRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return models.Goal{}, false, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Goal{}, false, badRequest(c, "name is required")
	}

	targetDate, err := time.Parse(dateLayout, strings.TrimSpace(req.TargetDate))
	if err != nil {
		return models.Goal{}, false, badRequest(c, "target_date must be in YYYY-MM-DD format")
	}

	var color string
	if req.Color != nil {
		value, err := validateHexColor(*req.Color)
		if err != nil {
			return models.Goal{}, false, badRequest(c, err.Error())
		}
		color = value
	}

	return models.Goal{
		Name:         name,
		TargetAmount: req.TargetAmount,
		SavedAmount:  req.SavedAmount,
		TargetDate:   targetDate,
		Color:        color,
	}, true, nil
}

func buildGoalResponses(goals []models.Goal, now time.Time) []GoalResponse {
	response := make([]GoalResponse, 0, len(goals))
	for _, goal := range goals {
		response = append(response, toGoalResponse(goal, now))
	}
	return response
}

func toGoalResponse(goal models.Goal, now time.Time) GoalResponse {
	return GoalResponse{
		ID:           goal.ID,
		Name:         goal.Name,
		TargetAmount: goal.TargetAmount,
		SavedAmount:  goal.SavedAmount,
		TargetDate:   goal.TargetDate.Format(dateLayout),
		Color:        goal.Color,
		Progress:     finance.EvaluateGoal(goal.TargetAmount, goal.SavedAmount, goal.TargetDate, now),
		CreatedAt:    goal.CreatedAt,
		UpdatedAt:    goal.UpdatedAt,
	}
}
