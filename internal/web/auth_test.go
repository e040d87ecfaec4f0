package web

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iam-console/iam-console/internal/db/models"
	"github.com/iam-console/iam-console/internal/web/session"
)

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[key], nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.data[key] = val

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func newAuthTestApp() *fiber.App {
	session.Init(&testStorage{data: make(map[string][]byte)})

	app := fiber.New()
	app.Use(AuthMiddleware)
	app.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	return app
}

func writeSession(t *testing.T, account models.Account) string {
	t.Helper()

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := session.Data{Account: account}
	require.NoError(t, data.Write(sessionID, time.Minute))

	return sessionID
}

func TestAuthMiddleware(t *testing.T) {
	app := newAuthTestApp()

	validID := writeSession(t, models.Account{ID: 1, Active: true, Username: "admin"})
	inactiveID := writeSession(t, models.Account{ID: 2, Active: false, Username: "old"})

	testCases := []struct {
		name           string
		target         string
		cookie         string
		expectedStatus int
	}{
		{
			name:           "api without session",
			target:         "/api/ping",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "api with bogus session",
			target:         "/api/ping",
			cookie:         "not-a-session",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "api with inactive account",
			target:         "/api/ping",
			cookie:         inactiveID,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "api with valid session",
			target:         "/api/ping",
			cookie:         validID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "liveness stays open",
			target:         CheckAlivePath,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tc.cookie})
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err, "app.Test failed")
			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}
