package controller

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSyncService struct {
	pullCalls int
}

func (s *stubSyncService) Pull(_ context.Context, _ uuid.UUID, _ *time.Time, _ *service.DeviceInfo) (*dto.PullResponse, error) {
	s.pullCalls++
	return &dto.PullResponse{ServerTime: time.Now().UTC()}, nil
}

func (s *stubSyncService) Push(_ context.Context, _ uuid.UUID, _ *dto.PushRequest, _ *service.DeviceInfo) (*dto.PushResponse, error) {
	return &dto.PushResponse{}, nil
}

func (s *stubSyncService) Devices(_ context.Context, _ uuid.UUID) ([]*dto.SyncDeviceResponse, error) {
	return nil, nil
}

func newSyncTestApp(t *testing.T, svc service.ISyncService) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "sync-controller-test-secret")

	app := fiber.New()
	api := app.Group("/api")
	NewSyncController(svc).RegisterRoutes(api)
	return app
}

func signTestToken(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	require.NoError(t, err)
	return signed
}

func TestPullRejectsMalformedSince(t *testing.T) {
	svc := &stubSyncService{}
	app := newSyncTestApp(t, svc)

	req := httptest.NewRequest(fiber.MethodGet, "/api/sync/v1/pull?since=yesterday", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signTestToken(t, uuid.New()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, svc.pullCalls, "a bad checkpoint never reaches the service")
}

func TestPullAcceptsRFC3339Since(t *testing.T) {
	svc := &stubSyncService{}
	app := newSyncTestApp(t, svc)

	since := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	req := httptest.NewRequest(fiber.MethodGet, "/api/sync/v1/pull?since="+since, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signTestToken(t, uuid.New()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, svc.pullCalls)
}

func TestPullRequiresToken(t *testing.T) {
	svc := &stubSyncService{}
	app := newSyncTestApp(t, svc)

	req := httptest.NewRequest(fiber.MethodGet, "/api/sync/v1/pull", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, svc.pullCalls)
}
