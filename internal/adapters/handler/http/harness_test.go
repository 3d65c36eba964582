package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adapterHTTP "github.com/aethernova/habits-api/internal/adapters/handler/http"
	"github.com/aethernova/habits-api/internal/adapters/metrics"
	"github.com/aethernova/habits-api/internal/adapters/repository"
	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/services"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	router      *gin.Engine
	users       *repository.InMemoryUserRepository
	habits      *repository.InMemoryHabitRepository
	completions *repository.InMemoryCompletionRepository
	tokens      *services.TokenService
	metrics     *metrics.Collector
}

func newTestServer(t *testing.T, opts ...func(*adapterHTTP.RouterDependencies)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		users:       repository.NewInMemoryUserRepository(),
		habits:      repository.NewInMemoryHabitRepository(),
		completions: repository.NewInMemoryCompletionRepository(),
		metrics:     metrics.NewCollector(),
	}
	clock := domain.FixedClock{At: testNow}
	logger := zap.NewNop()

	s.tokens = services.NewTokenService("test-secret-key-0123456789", "habits-test", time.Hour, s.users)
	authSvc := services.NewAuthService(s.users, s.tokens)
	habitSvc := services.NewHabitService(s.habits, s.completions, clock, logger)
	completionSvc := services.NewCompletionService(s.completions, s.habits, nil, s.metrics, clock, logger)
	statsSvc := services.NewStatsService(s.habits, s.completions, clock, logger)
	quoteSvc := services.NewQuoteService(nil, clock, logger)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authSvc, time.Hour, false),
		HabitHandler:      adapterHTTP.NewHabitHandler(habitSvc, clock),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionSvc),
		StatsHandler:      adapterHTTP.NewStatsHandler(statsSvc),
		QuoteHandler:      adapterHTTP.NewQuoteHandler(quoteSvc),
		Tokens:            s.tokens,
		Metrics:           s.metrics,
		DB:                fakePinger{},
		Logger:            logger,
		StartTime:         testNow,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	s.router = adapterHTTP.NewRouter(deps)
	return s
}

// newUser stores a user directly and returns a bearer token for it.
func (s *testServer) newUser(t *testing.T, id string) string {
	t.Helper()
	u, err := domain.NewUser(id, "Test User", id+"@example.com")
	require.NoError(t, err)
	require.NoError(t, s.users.Create(context.Background(), u))

	token, err := s.tokens.GenerateToken(id)
	require.NoError(t, err)
	return token
}

func (s *testServer) newHabit(t *testing.T, userID, title string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, title, "", domain.CategoryHealth)
	require.NoError(t, err)
	require.NoError(t, s.habits.Create(context.Background(), h))
	return h
}

func (s *testServer) complete(t *testing.T, h *domain.Habit, daysAgo ...int) {
	t.Helper()
	today := domain.DateOf(testNow)
	for _, n := range daysAgo {
		c, err := domain.NewCompletion(h.ID, h.UserID, today.AddDays(-n), "")
		require.NoError(t, err)
		require.NoError(t, s.completions.Create(context.Background(), c))
	}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp response
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 && w.Code != http.StatusNoContent {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
