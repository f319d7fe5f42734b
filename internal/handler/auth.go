package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rankwise/rankwise-api/internal/apperr"
	"github.com/rankwise/rankwise-api/internal/middleware"
	"github.com/rankwise/rankwise-api/internal/queue"
	"github.com/rankwise/rankwise-api/internal/repository"
	"github.com/rankwise/rankwise-api/internal/token"
	"github.com/rankwise/rankwise-api/internal/utils"
	"github.com/rankwise/rankwise-api/internal/validation"
)

// defaultPlan is assigned at registration and assumed when a token omits
// the plan claim.
const defaultPlan = "free"

// AuthHandler bundles the auth flow dependencies.
type AuthHandler struct {
	Users      UserStore
	Subs       SubscriptionStore
	Tokens     *token.Service
	Events     SignupEvents // may be nil when no broker is configured
	BcryptCost int
}

func NewAuthHandler(users UserStore, subs SubscriptionStore, tokens *token.Service, events SignupEvents, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, Subs: subs, Tokens: tokens, Events: events, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
}
type authResp struct {
	Token   string   `json:"token"`
	Refresh string   `json:"refresh"`
	User    userPart `json:"user"`
}

// normalizeEmail trims and lowercases before any comparison or storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user, opens a free subscription and returns a fresh
// token pair. The duplicate check is the store's unique index, nothing
// else: two racing registrations yield exactly one success and one 409.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation([]apperr.FieldError{{Field: "body", Message: "must be valid JSON"}})
	}
	if err := validation.Check(req); err != nil {
		return err
	}
	email := normalizeEmail(req.Email)

	// Hash before touching the store so plaintext never reaches it.
	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.Users.Create(ctx, email, hash, defaultPlan)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.Duplicate("Email already in use")
		}
		return apperr.Internal(err)
	}

	// Best-effort side effects: neither may fail the registration.
	if _, err := h.Subs.Create(ctx, user.ID, user.Plan); err != nil {
		log.Printf("register: open subscription failed for %s: %v", user.ID, err)
	}
	h.publishSignup(user)

	resp, err := h.tokenPair(user)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a fresh token pair. Unknown email
// and wrong password are indistinguishable to the client.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation([]apperr.FieldError{{Field: "body", Message: "must be valid JSON"}})
	}
	if err := validation.Check(req); err != nil {
		return err
	}
	email := normalizeEmail(req.Email)

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.InvalidCredentials()
		}
		return apperr.Internal(err)
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return apperr.InvalidCredentials()
	}

	resp, err := h.tokenPair(user)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token carries only the subject; email and plan are re-read from
// the store rather than trusted from any token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation([]apperr.FieldError{{Field: "body", Message: "must be valid JSON"}})
	}
	if err := validation.Check(req); err != nil {
		return err
	}

	subject, err := h.Tokens.VerifyRefresh(req.Refresh)
	if err != nil {
		return apperr.Unauthorized()
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthorized()
		}
		return apperr.Internal(err)
	}

	access, _, err := h.Tokens.IssueAccess(user.ID, user.Email, user.Plan)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": access})
}

// Me re-asserts the identity embedded in the verified access token without
// re-reading the store.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apperr.Unauthorized()
	}
	plan := claims.Plan
	if plan == "" {
		plan = defaultPlan
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{ID: claims.Subject, Email: claims.Email, Plan: plan},
	})
}

func (h *AuthHandler) tokenPair(user repository.User) (authResp, error) {
	access, _, err := h.Tokens.IssueAccess(user.ID, user.Email, user.Plan)
	if err != nil {
		return authResp{}, err
	}
	refresh, _, err := h.Tokens.IssueRefresh(user.ID)
	if err != nil {
		return authResp{}, err
	}
	return authResp{
		Token:   access,
		Refresh: refresh,
		User:    userPart{ID: user.ID, Email: user.Email, Plan: user.Plan},
	}, nil
}

func (h *AuthHandler) publishSignup(user repository.User) {
	if h.Events == nil {
		return
	}
	evt := queue.UserRegistered{
		UserID: user.ID,
		Email:  user.Email,
		Plan:   user.Plan,
		At:     time.Now().UTC(),
	}
	// Detached context: the event outlives the request and must not be
	// cancelled with it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Events.UserRegistered(ctx, evt)
	}()
}
