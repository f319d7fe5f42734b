package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankwise/rankwise-api/internal/middleware"
	"github.com/rankwise/rankwise-api/internal/token"
)

type authEnv struct {
	e      *echo.Echo
	users  *fakeUserStore
	subs   *fakeSubscriptionStore
	events *recordingEvents
	tokens *token.Service
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	tokens := token.NewService(token.Config{
		AccessSecret:  "access-secret-for-tests-0123456789",
		RefreshSecret: "refresh-secret-for-tests-9876543210",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	users := newFakeUserStore()
	subs := newFakeSubscriptionStore()
	events := &recordingEvents{}
	// Minimum bcrypt cost keeps the suite fast.
	h := NewAuthHandler(users, subs, tokens, events, 4)

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(e)
	e.POST("/v1/auth/register", h.Register)
	e.POST("/v1/auth/login", h.Login)
	e.POST("/v1/auth/refresh", h.Refresh)
	e.GET("/v1/me", h.Me, middleware.RequireAuth(tokens))
	return &authEnv{e: e, users: users, subs: subs, events: events, tokens: tokens}
}

func (env *authEnv) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegisterSuccess(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["refresh"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "free", user["plan"])
	assert.NotEmpty(t, user["id"])

	// Registration opens a free subscription.
	sub, err := env.subs.GetActiveByUser(context.Background(), user["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, "free", sub.Plan)
	assert.Equal(t, "active", sub.Status)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", `{"email":"  Foo@Bar.com ","password":"longenough1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "foo@bar.com", user["email"])

	// Login with a differently-cased spelling succeeds.
	rec = env.do(http.MethodPost, "/v1/auth/login", `{"email":"foo@bar.COM","password":"longenough1"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already in use", decode(t, rec)["error"])
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	env := newAuthEnv(t)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := env.do(http.MethodPost, "/v1/auth/register", `{"email":"race@b.com","password":"longenough1"}`, "")
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created, "exactly one registration wins the race")
	assert.Equal(t, n-1, conflicts)
}

func TestRegisterValidationReportsAllFields(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", `{"email":"nope","password":"short"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	fields := body["fields"].([]any)
	assert.Len(t, fields, 2)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	env := newAuthEnv(t)

	payload := fmt.Sprintf(`{"email":"a@b.com","password":"%s"}`, strings.Repeat("x", 73))
	rec := env.do(http.MethodPost, "/v1/auth/register", payload, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterPublishesSignupEvent(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// The event is published on a detached goroutine.
	assert.Eventually(t, func() bool {
		env.events.mu.Lock()
		defer env.events.mu.Unlock()
		return len(env.events.events) == 1 && env.events.events[0].Email == "a@b.com"
	}, time.Second, 10*time.Millisecond)
}

func TestLoginSuccess(t *testing.T) {
	env := newAuthEnv(t)
	env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")

	rec := env.do(http.MethodPost, "/v1/auth/login", `{"email":"a@b.com","password":"longenough1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["refresh"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newAuthEnv(t)
	env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")

	wrongPassword := env.do(http.MethodPost, "/v1/auth/login", `{"email":"a@b.com","password":"wrongpassword"}`, "")
	unknownEmail := env.do(http.MethodPost, "/v1/auth/login", `{"email":"ghost@b.com","password":"longenough1"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Same status AND same body: account existence must not leak.
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid credentials", decode(t, wrongPassword)["error"])
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	env := newAuthEnv(t)
	reg := env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	refresh := decode(t, reg)["refresh"].(string)

	rec := env.do(http.MethodPost, "/v1/auth/refresh", fmt.Sprintf(`{"refresh":%q}`, refresh), "")
	require.Equal(t, http.StatusOK, rec.Code)

	access := decode(t, rec)["token"].(string)
	claims, err := env.tokens.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "free", claims.Plan)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newAuthEnv(t)
	reg := env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	access := decode(t, reg)["token"].(string)

	rec := env.do(http.MethodPost, "/v1/auth/refresh", fmt.Sprintf(`{"refresh":%q}`, access), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decode(t, rec)["error"])
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	env := newAuthEnv(t)
	expiredSvc := token.NewService(token.Config{
		AccessSecret:  "access-secret-for-tests-0123456789",
		RefreshSecret: "refresh-secret-for-tests-9876543210",
		AccessTTL:     time.Hour,
		RefreshTTL:    -time.Minute,
	})
	expired, _, err := expiredSvc.IssueRefresh("u-1")
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/v1/auth/refresh", fmt.Sprintf(`{"refresh":%q}`, expired), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshUnknownSubjectRejected(t *testing.T) {
	env := newAuthEnv(t)
	refresh, _, err := env.tokens.IssueRefresh("no-such-user")
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/v1/auth/refresh", fmt.Sprintf(`{"refresh":%q}`, refresh), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEchoesTokenClaims(t *testing.T) {
	env := newAuthEnv(t)
	reg := env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	access := decode(t, reg)["token"].(string)

	rec := env.do(http.MethodGet, "/v1/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "free", user["plan"])
}

func TestMeDefaultsMissingPlanToFree(t *testing.T) {
	env := newAuthEnv(t)
	access, _, err := env.tokens.IssueAccess("u-1", "a@b.com", "")
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/v1/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "free", user["plan"])
}

func TestMeWithoutTokenUnauthorized(t *testing.T) {
	env := newAuthEnv(t)
	rec := env.do(http.MethodGet, "/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decode(t, rec)["error"])
}

func TestStoreFailureIsGeneric500(t *testing.T) {
	env := newAuthEnv(t)
	env.users.failAll = true

	rec := env.do(http.MethodPost, "/v1/auth/register", `{"email":"a@b.com","password":"longenough1"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal detail must never reach the client.
	assert.Equal(t, "Internal server error", decode(t, rec)["error"])
}
