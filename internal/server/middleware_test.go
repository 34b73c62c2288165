package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	alertdomain "github.com/copperline/crm/internal/alert/domain"
	"github.com/copperline/crm/internal/config"
	obsmetrics "github.com/copperline/crm/internal/observability/metrics"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// countingAlertService records how many times each run was triggered so
// tests can prove rejected requests never reach the engine.
type countingAlertService struct {
	quotaRuns     int
	activityRuns  int
	taskRuns      int
	marketingRuns int
}

func (s *countingAlertService) RunQuota(context.Context) (alertdomain.RunReport, error) {
	s.quotaRuns++
	return alertdomain.RunReport{RunID: "01J0TESTRUN", Job: "quota", Processed: 2, Sent: 1}, nil
}

func (s *countingAlertService) RunActivity(context.Context) (alertdomain.RunReport, error) {
	s.activityRuns++
	return alertdomain.RunReport{Job: "activity"}, nil
}

func (s *countingAlertService) RunTasks(context.Context) (alertdomain.RunReport, error) {
	s.taskRuns++
	return alertdomain.RunReport{Job: "tasks"}, nil
}

func (s *countingAlertService) RunMarketing(_ context.Context, cadence alertdomain.Cadence) (alertdomain.RunReport, error) {
	if cadence != alertdomain.CadenceWeekly && cadence != alertdomain.CadenceMonthly {
		return alertdomain.RunReport{}, alertdomain.ErrInvalidCadence
	}
	s.marketingRuns++
	return alertdomain.RunReport{Job: "marketing-" + string(cadence)}, nil
}

func (s *countingAlertService) CreateExclusion(context.Context, alertdomain.CreateExclusionRequest) (alertdomain.AlertExclusion, error) {
	return alertdomain.AlertExclusion{}, nil
}

func (s *countingAlertService) ListExclusions(context.Context, string) ([]alertdomain.AlertExclusion, error) {
	return nil, nil
}

func (s *countingAlertService) DeleteExclusion(context.Context, string) error { return nil }

func newTestServer(alertSvc alertdomain.Service) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		engine: NewEngine(obsmetrics.New()),
		cfg: config.Config{
			CronSecret:    "cron-secret",
			AuthJWTSecret: "jwt-secret",
		},
		alertSvc: alertSvc,
	}
	s.registerCronRoutes()
	return s
}

func request(s *Server, method, target, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestCronAuthRequired(t *testing.T) {
	alertSvc := &countingAlertService{}
	s := newTestServer(alertSvc)

	t.Run("missing token", func(t *testing.T) {
		w := request(s, http.MethodPost, "/cron/quota", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, alertSvc.quotaRuns)
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := request(s, http.MethodPost, "/cron/quota", "wrong-secret")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, alertSvc.quotaRuns)
	})

	t.Run("valid secret triggers the run", func(t *testing.T) {
		w := request(s, http.MethodPost, "/cron/quota", "cron-secret")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, alertSvc.quotaRuns)

		var body struct {
			Data alertdomain.RunReport `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "01J0TESTRUN", body.Data.RunID)
		assert.Equal(t, 2, body.Data.Processed)
		assert.Equal(t, 1, body.Data.Sent)
	})

	t.Run("marketing defaults to weekly", func(t *testing.T) {
		w := request(s, http.MethodPost, "/cron/marketing", "cron-secret")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, alertSvc.marketingRuns)
	})

	t.Run("marketing rejects a bad cadence", func(t *testing.T) {
		w := request(s, http.MethodPost, "/cron/marketing?cadence=hourly", "cron-secret")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1, alertSvc.marketingRuns)
	})

	t.Run("empty configured secret rejects everything", func(t *testing.T) {
		bare := newTestServer(&countingAlertService{})
		bare.cfg.CronSecret = ""
		w := request(bare, http.MethodPost, "/cron/tasks", "anything")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func signToken(t *testing.T, secret, userID, role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &Server{
		engine: NewEngine(obsmetrics.New()),
		cfg: config.Config{
			AuthJWTSecret: "jwt-secret",
		},
	}
	s.engine.GET("/protected", s.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(contextUserIDKey)})
	})
	s.engine.GET("/admin-only", s.AuthRequired(), s.RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("missing token", func(t *testing.T) {
		w := request(s, http.MethodGet, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with the wrong key", func(t *testing.T) {
		w := request(s, http.MethodGet, "/protected", signToken(t, "other-secret", "42", "sdr"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token passes identity through", func(t *testing.T) {
		w := request(s, http.MethodGet, "/protected", signToken(t, "jwt-secret", "42", "sdr"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":"42"`)
	})

	t.Run("role gate", func(t *testing.T) {
		w := request(s, http.MethodGet, "/admin-only", signToken(t, "jwt-secret", "42", "sdr"))
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = request(s, http.MethodGet, "/admin-only", signToken(t, "jwt-secret", "1", "admin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
