package http_test

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	sessionmocks "github.com/promptgate/promptgate/pkg/app/session/mocks"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	handlers "github.com/promptgate/promptgate/pkg/handlers/http"
)

func issueApp(issuer *sessionmocks.MockIssuer) *fiber.App {
	app := fiber.New()
	handler := handlers.NewIssueTokenHandler(logrus.New(), issuer)
	app.Post("/api/v1/tokens", handler.Handle)
	return app
}

func revokeApp(revoker *sessionmocks.MockRevoker) *fiber.App {
	app := fiber.New()
	handler := handlers.NewRevokeTokenHandler(logrus.New(), revoker)
	app.Delete("/api/v1/tokens", handler.Handle)
	return app
}

func TestIssueTokenHandler_MissingAPIKey(t *testing.T) {
	issuer := new(sessionmocks.MockIssuer)
	app := issueApp(issuer)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/tokens", nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	issuer.AssertNotCalled(t, "Issue")
}

func TestIssueTokenHandler_UnknownAPIKey(t *testing.T) {
	issuer := new(sessionmocks.MockIssuer)
	issuer.On("Issue", mock.Anything, "bad-key").Return(nil, "", domain.ErrUnauthorized)
	app := issueApp(issuer)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/tokens", nil)
	req.Header.Set("X-API-Key", "bad-key")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestIssueTokenHandler_StoreUnavailable(t *testing.T) {
	issuer := new(sessionmocks.MockIssuer)
	issuer.On("Issue", mock.Anything, "good-key").Return(nil, "", assert.AnError)
	app := issueApp(issuer)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/tokens", nil)
	req.Header.Set("X-API-Key", "good-key")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestIssueTokenHandler_Success(t *testing.T) {
	entity := domain.NewSession("client-a", time.Hour)
	issuer := new(sessionmocks.MockIssuer)
	issuer.On("Issue", mock.Anything, "good-key").Return(entity, "signed-token", nil)
	app := issueApp(issuer)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/tokens", nil)
	req.Header.Set("X-API-Key", "good-key")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "signed-token", body["token"])
	assert.NotEmpty(t, body["expires_at"])
}

func TestRevokeTokenHandler_NoBearer(t *testing.T) {
	revoker := new(sessionmocks.MockRevoker)
	app := revokeApp(revoker)

	req := httptest.NewRequest(nethttp.MethodDelete, "/api/v1/tokens", nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	revoker.AssertNotCalled(t, "Revoke")
}

func TestRevokeTokenHandler_InvalidToken(t *testing.T) {
	revoker := new(sessionmocks.MockRevoker)
	revoker.On("Revoke", mock.Anything, "garbage").Return(domain.ErrUnauthorized)
	app := revokeApp(revoker)

	req := httptest.NewRequest(nethttp.MethodDelete, "/api/v1/tokens", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRevokeTokenHandler_Success(t *testing.T) {
	revoker := new(sessionmocks.MockRevoker)
	revoker.On("Revoke", mock.Anything, "some-token").Return(nil)
	app := revokeApp(revoker)

	req := httptest.NewRequest(nethttp.MethodDelete, "/api/v1/tokens", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer some-token")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	revoker.AssertExpectations(t)
}
