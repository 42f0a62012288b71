package controller

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	loginErr error
}

func (s *stubAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return &dto.RegisterResponse{}, nil
}

func (s *stubAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.LoginResponse{Token: "token"}, nil
}

func newAuthTestApp(svc *stubAuthService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewAuthController(svc).RegisterRoutes(api)
	return app
}

func TestLoginFailureReturnsUnauthorized(t *testing.T) {
	app := newAuthTestApp(&stubAuthService{loginErr: errors.New("invalid credentials")})

	body := `{"email":"someone@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/v1/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginSuccess(t *testing.T) {
	app := newAuthTestApp(&stubAuthService{})

	body := `{"email":"someone@example.com","password":"right-password"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/v1/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
