package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/handler"
	"github.com/stemsi/cyberassess-backend/internal/mailer"
	"github.com/stemsi/cyberassess-backend/internal/metrics"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/notification"
	"github.com/stemsi/cyberassess-backend/internal/repository"
	"github.com/stemsi/cyberassess-backend/internal/service"
	"github.com/stemsi/cyberassess-backend/internal/validator"
)

const feedChannel = "assessments:feed"

type stack struct {
	engine  *gin.Engine
	store   *repository.MemorySubmissionRepository
	auth    *service.AuthService
	queue   *notification.MemoryQueue
	redis   *miniredis.Miniredis
	rdb     *redis.Client
	metrics *prometheus.Registry
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	cfg := &config.Config{
		GinMode:            gin.TestMode,
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		BcryptCost:         4,
		NotifyTimeout:      time.Second,
		RateLimitPerMinute: 600,
		RateLimitBurst:     100,
	}
	log := zerolog.Nop()

	reg := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(reg)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repository.NewMemorySubmissionRepository()
	admins := repository.NewMemoryAdminRepository()
	queue := notification.NewMemoryQueue(16)
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		Queue:       queue,
		Channels:    []string{notification.ChannelInternal, notification.ChannelUser},
		MailEnabled: true,
		Publisher:   notification.NewRedisPublisher(rdb, feedChannel),
		Metrics:     m,
	}, log)
	t.Cleanup(dispatcher.Wait)

	auth := service.NewAuthService(cfg, admins)
	submissions := service.NewSubmissionService(store, dispatcher, service.DefaultRetryPolicy(), log, service.WithMetrics(m))
	assessments := service.NewAssessmentService(store, log)
	mail := mailer.NewSMTPMailer(cfg.SMTP, cfg.NotifyTimeout, log)

	handlers := &Handlers{
		Submission:   handler.NewSubmissionHandler(submissions, log),
		Assessment:   handler.NewAssessmentHandler(assessments, log),
		Report:       handler.NewReportHandler(submissions, assessments, log),
		Auth:         handler.NewAuthHandler(auth, log),
		Notification: handler.NewNotificationHandler(mail, cfg.NotifyTimeout, log),
		Health:       handler.NewHealthHandler(config.StorageMemory, queue.Name(), mail.Enabled()),
		Feed:         handler.NewFeedHandler(rdb, feedChannel, log, nil),
	}

	return &stack{
		engine:  SetupRouter(auth, handlers, cfg, reg, log),
		store:   store,
		auth:    auth,
		queue:   queue,
		redis:   mr,
		rdb:     rdb,
		metrics: reg,
	}
}

func (s *stack) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *stack) login(t *testing.T, role string) string {
	t.Helper()
	email := role + "@example.com"
	_, err := s.auth.CreateAdmin(context.Background(), email, "Test "+role, role, "password123")
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/v1/auth/admin/login", map[string]string{
		"email": email, "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Data model.AdminLoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Data.Token)
	return res.Data.Token
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
	Pagination *struct {
		Total   int64 `json:"total"`
		Limit   int   `json:"limit"`
		Skip    int   `json:"skip"`
		HasMore bool  `json:"has_more"`
	} `json:"pagination"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

func payload(email, env string, answers map[string]string) map[string]any {
	details := make([]map[string]string, 0, len(answers))
	for id := range answers {
		details = append(details, map[string]string{"id": id, "text": "Question " + id, "area": "Access"})
	}
	return map[string]any{
		"respondent":          map[string]string{"name": "Ana Lopez", "email": email, "role": "CISO"},
		"environment":         map[string]string{"unique_name": env, "type": "Production"},
		"answers":             answers,
		"selected_categories": []string{"Identity"},
		"selected_areas":      []string{"Access"},
		"question_details":    details,
		"score":               0,
		"total_questions":     len(answers),
		"completed_questions": len(answers),
		"metadata":            map[string]string{"language": "en"},
	}
}

func TestSubmitAndAdminFlow(t *testing.T) {
	s := newStack(t)
	token := s.login(t, model.RoleAdmin)

	body := payload("Ana@Example.com ", "Payments", map[string]string{"q1": "5", "q2": "3", "q3": "6"})

	w := s.do(t, http.MethodPost, "/api/v1/assessments", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.SubmitResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, model.SubmitCreated, created.Status)
	assert.Equal(t, 80, created.Score)
	assert.Equal(t, 1, created.Attempts)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	// Same outcome again is acknowledged with the stored id.
	w = s.do(t, http.MethodPost, "/api/v1/assessments", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var again model.SubmitResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &again))
	assert.Equal(t, model.SubmitAlreadyExists, again.Status)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 1, s.store.Len())

	w = s.do(t, http.MethodGet, "/api/v1/admin/assessments?email=ana@example.com", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	e := decode(t, w)
	require.NotNil(t, e.Pagination)
	assert.Equal(t, int64(1), e.Pagination.Total)
	assert.Equal(t, 10, e.Pagination.Limit)
	assert.False(t, e.Pagination.HasMore)
	var list struct {
		Items      []model.Submission         `json:"items"`
		Statistics model.AssessmentStatistics `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "ana@example.com", list.Items[0].Respondent.Email)
	assert.Equal(t, 80.0, list.Statistics.AverageScore)

	w = s.do(t, http.MethodGet, "/api/v1/admin/assessments/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/admin/assessments/"+created.ID+"/report", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = s.do(t, http.MethodDelete, "/api/v1/admin/assessments/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodDelete, "/api/v1/admin/assessments/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, s.store.Len())
}

func TestSubmitValidation(t *testing.T) {
	s := newStack(t)

	body := payload("not-an-email", "Payments", map[string]string{"q1": "12"})
	w := s.do(t, http.MethodPost, "/api/v1/assessments", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	e := decode(t, w)
	require.NotNil(t, e.Error)
	assert.Equal(t, "VALIDATION_ERROR", e.Error.Code)
	assert.NotEmpty(t, e.Error.Fields)
	assert.Equal(t, 0, s.store.Len())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PAYLOAD", decode(t, rec).Error.Code)
}

func TestSubmitQueuesNotifications(t *testing.T) {
	s := newStack(t)

	w := s.do(t, http.MethodPost, "/api/v1/assessments", payload("bo@example.com", "Portal", map[string]string{"q1": "4"}), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Eventually(t, func() bool { return s.queue.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	// Resubmitting the same outcome queues the mails again.
	w = s.do(t, http.MethodPost, "/api/v1/assessments", payload("bo@example.com", "Portal", map[string]string{"q1": "4"}), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Eventually(t, func() bool { return s.queue.Len() == 4 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.store.Len())
}

func TestPreviewReportIsNotStored(t *testing.T) {
	s := newStack(t)

	w := s.do(t, http.MethodPost, "/api/v1/reports/pdf", payload("cy@example.com", "Lab", map[string]string{"q1": "2"}), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, 0, s.store.Len())
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newStack(t)

	w := s.do(t, http.MethodGet, "/api/v1/admin/assessments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/admin/assessments", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestViewerCannotDelete(t *testing.T) {
	s := newStack(t)
	token := s.login(t, model.RoleViewer)

	w := s.do(t, http.MethodGet, "/api/v1/admin/assessments", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/admin/assessments/anything", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListRejectsBadQuery(t *testing.T) {
	s := newStack(t)
	token := s.login(t, model.RoleAdmin)

	w := s.do(t, http.MethodGet, "/api/v1/admin/assessments?skip=-1&date_from=yesterday", nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decode(t, w)
	assert.Equal(t, "INVALID_QUERY", e.Error.Code)
	assert.Contains(t, e.Error.Fields, "skip")
	assert.Contains(t, e.Error.Fields, "date_from")
}

func TestTestNotificationDisabled(t *testing.T) {
	s := newStack(t)
	token := s.login(t, model.RoleAdmin)

	w := s.do(t, http.MethodPost, "/api/v1/admin/notifications/test", map[string]string{"email": "ops@example.com"}, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "NOTIFICATIONS_DISABLED", decode(t, w).Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newStack(t)

	w := s.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	s.do(t, http.MethodPost, "/api/v1/assessments", payload("dee@example.com", "Lab", map[string]string{"q1": "1"}), "")

	w = s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "submission_results_total")

	w = s.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedForwardsEvents(t *testing.T) {
	s := newStack(t)
	token := s.login(t, model.RoleViewer)

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/feed?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ready map[string]string
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, "ready", ready["event"])

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["event"])

	w := s.do(t, http.MethodPost, "/api/v1/assessments", payload("feed@example.com", "Lab", map[string]string{"q1": "5"}), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ev model.SubmissionEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, notification.EventSubmissionCreated, ev.Type)
	assert.Equal(t, "feed@example.com", ev.Email)
	assert.Equal(t, 100, ev.Score)
}
