package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jaegodata/unsold-server/internal/api"
	"github.com/jaegodata/unsold-server/internal/models"
	"github.com/jaegodata/unsold-server/internal/repository"
	"github.com/jaegodata/unsold-server/internal/service"
	"github.com/jaegodata/unsold-server/internal/session"
)

// JWTSecret signs tokens in tests
const JWTSecret = "test-secret-key"

// Seeded accounts
const (
	StaffUser     = "staff1"
	StaffPassword = "staffpassword"
	AdminUser     = "admin1"
	AdminPassword = "adminpassword"
)

// StubPricer fakes the price provider for API tests
type StubPricer struct {
	Prices map[string]int64
	Fail   map[string]bool
}

func (p *StubPricer) Price(ctx context.Context, productNumber string) (int64, error) {
	if p.Fail[productNumber] {
		return 0, errors.New("provider down")
	}
	price, ok := p.Prices[productNumber]
	if !ok {
		return 0, errors.New("unknown product")
	}
	return price, nil
}

// TestContext holds all dependencies for tests
type TestContext struct {
	Router   *gin.Engine
	Repo     *repository.MemoryRepository
	Service  service.Service
	Sessions *session.Manager
	Pricer   *StubPricer
}

// SetupTestContext builds a router over the in-memory repository with one
// staff and one admin account seeded, the way the credential table is
// provisioned out of band in production.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	repo := repository.NewMemoryRepository()
	repo.SeedUser(models.User{Username: StaffUser, Password: StaffPassword, Role: models.RoleStaff})
	repo.SeedUser(models.User{Username: AdminUser, Password: AdminPassword, Role: models.RoleAdmin})

	pricer := &StubPricer{
		Prices: map[string]int64{"ABC123": 129000, "CD456": 55000},
		Fail:   map[string]bool{},
	}

	sessions := session.NewManager()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewDefaultService(repo, pricer, sessions, JWTSecret, logger)

	handler := api.NewHandler(svc, sessions)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(JWTSecret))
		c.Next()
	})

	handler.SetupRoutes(router)

	return &TestContext{
		Router:   router,
		Repo:     repo,
		Service:  svc,
		Sessions: sessions,
		Pricer:   pricer,
	}
}

// Login performs a login request and returns the bearer token
func (tc *TestContext) Login(t *testing.T, username, password string) string {
	t.Helper()

	w := PerformRequest(tc.Router, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: username, Password: password}, nil)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// PerformUpload executes a multipart file upload against the router
func PerformUpload(r http.Handler, path, field, filename string, content []byte, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile(field, filename)
	fw.Write(content)
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
