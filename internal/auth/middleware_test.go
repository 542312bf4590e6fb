package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inventory-service/internal/domain"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

func TestAuthenticate(t *testing.T) {
	tm := NewTokenManager("test-secret")
	m := NewAuthMiddleware(tm)
	token, _, err := tm.Issue("user-1", "Alice", domain.RoleUser)
	require.NoError(t, err)

	identity, err := m.Authenticate("Bearer " + token)
	require.NoError(t, err)
	require.Equal(t, "user-1", identity.SubjectID)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic " + token, token, "Bearer garbage"} {
		_, err := m.Authenticate(header)
		require.Error(t, err, header)
		de := apperrors.ToDomainError(err)
		require.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
		require.Equal(t, MsgAuthInvalid, de.Message)
	}
}

func newGateApp(t *testing.T, tm *TokenManager, guards ...fiber.Handler) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Message)
		},
	})
	handlers := append([]fiber.Handler{NewAuthMiddleware(tm).Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(identity.SubjectID + ":" + string(identity.Role))
	})
	app.Get("/protected", handlers...)
	return app
}

func doGet(t *testing.T, app *fiber.App, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHandle(t *testing.T) {
	tm := NewTokenManager("test-secret")
	app := newGateApp(t, tm)

	status, body := doGet(t, app, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, MsgAuthInvalid, body)

	status, body = doGet(t, app, "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, MsgAuthInvalid, body)

	token, _, err := tm.Issue("user-1", "Alice", domain.RoleUser)
	require.NoError(t, err)
	status, body = doGet(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "user-1:USER", body)
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("test-secret")
	app := newGateApp(t, tm, RequireRole(domain.RoleAdmin))

	userToken, _, err := tm.Issue("user-1", "Alice", domain.RoleUser)
	require.NoError(t, err)
	status, _ := doGet(t, app, "Bearer "+userToken)
	require.Equal(t, http.StatusForbidden, status)

	adminToken, _, err := tm.Issue("admin-1", "Root", domain.RoleAdmin)
	require.NoError(t, err)
	status, body := doGet(t, app, "Bearer "+adminToken)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "admin-1:ADMIN", body)
}
