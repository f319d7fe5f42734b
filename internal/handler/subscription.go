package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rankwise/rankwise-api/internal/apperr"
	"github.com/rankwise/rankwise-api/internal/middleware"
	"github.com/rankwise/rankwise-api/internal/repository"
)

// SubscriptionHandler exposes the caller's current subscription.
type SubscriptionHandler struct {
	Subs SubscriptionStore
}

func NewSubscriptionHandler(subs SubscriptionStore) *SubscriptionHandler {
	return &SubscriptionHandler{Subs: subs}
}

type subscriptionResp struct {
	ID        string     `json:"id"`
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Get returns the active subscription of the authenticated user.
func (h *SubscriptionHandler) Get(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apperr.Unauthorized()
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	sub, err := h.Subs.GetActiveByUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("No active subscription")
		}
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subscription": subscriptionResp{
		ID:        sub.ID,
		Plan:      sub.Plan,
		Status:    sub.Status,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
	}})
}
