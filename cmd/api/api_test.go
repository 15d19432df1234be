package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"fingertrack/internal/attendance"
	"fingertrack/internal/auth"
	"fingertrack/internal/config"
	"fingertrack/internal/device"
	"fingertrack/internal/fingerprint"
	"fingertrack/internal/identity"
	"fingertrack/internal/metrics"
	"fingertrack/internal/queue"
)

// APISuite drives the endpoint contracts against in-memory stores. Prometheus
// collectors register globally, so they are created once for the suite.
type APISuite struct {
	suite.Suite
	mets   *metrics.Metrics
	cfg    config.App
	router *gin.Engine
	ids    *identity.InMemory
	events *attendance.InMemoryEvents
	token  string
}

func (s *APISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.mets = metrics.New()
	s.cfg = config.App{
		JWTIssuer:     "fingertrack-test",
		JWTSigningKey: "test-signing-key",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
	tokens, err := auth.Issue("gate-1", auth.RoleDevice, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	s.Require().NoError(err)
	s.token = tokens.AccessToken
}

func (s *APISuite) SetupTest() {
	s.ids = identity.NewInMemory()
	s.events = attendance.NewInMemoryEvents()

	a := &api{
		cfg:        s.cfg,
		queue:      queue.NewInMemory(16),
		attendance: attendance.NewService(s.events, s.ids, attendance.Limits{}),
		registry:   identity.NewRegistry(s.ids),
		resolver:   identity.NewResolver(s.ids),
		devices:    device.NewInMemory(),
		prints:     fingerprint.NewInMemory(),
		metrics:    s.mets,
	}

	s.router = gin.New()
	a.registerRoutes(s.router)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) do(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) body(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *APISuite) registerStudent(uid string, fpID int64) {
	rec := s.do(http.MethodPost, "/v1/users/register", gin.H{
		"uid": uid, "name": "Student " + uid, "fingerprint_id": fpID,
	}, true)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestCheckinContract() {
	s.registerStudent("s1", 42)

	s.Run("requires a device token", func() {
		rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 42}, false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("records a recognized fingerprint", func() {
		rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 42, "device_id": "gate-1"}, true)
		s.Require().Equal(http.StatusOK, rec.Code)
		body := s.body(rec)
		s.Equal("success", body["status"])
		s.Equal("s1", body["student_id"])
		s.Equal("Student s1", body["user_name"])
	})

	s.Run("unknown fingerprint is a 404", func() {
		rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 999}, true)
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Equal("error", s.body(rec)["status"])
	})

	s.Run("missing fingerprint is a 400", func() {
		rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"device_id": "gate-1"}, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("non-integer fingerprint is a 400", func() {
		rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": "forty-two"}, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("foreign device id is forbidden", func() {
		rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 42, "device_id": "gate-2"}, true)
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

func (s *APISuite) TestTodayAndStatsFlow() {
	s.registerStudent("s1", 42)

	// Two check-ins, one student.
	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 42, "device_id": "gate-1"}, true)
		s.Require().Equal(http.StatusOK, rec.Code)
	}

	rec := s.do(http.MethodGet, "/v1/attendance/today", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.body(rec)
	s.Equal(float64(2), body["count"])
	s.Equal(float64(1), body["unique_students"])

	rec = s.do(http.MethodGet, "/v1/attendance/stats", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	stats := s.body(rec)["stats"].(map[string]any)
	s.Equal(float64(1), stats["total_students"])
	s.Equal(float64(1), stats["present_today"])
	s.Equal(float64(100), stats["attendance_percentage"])
	s.Equal(float64(2), stats["total_records"])
}

func (s *APISuite) TestUnrecognizedCheckinLeavesTodayUnchanged() {
	s.registerStudent("s1", 42)

	rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 999}, true)
	s.Require().Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/v1/attendance/today", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(float64(0), s.body(rec)["count"])
}

func (s *APISuite) TestDashboardStats() {
	for i := 1; i <= 2; i++ {
		s.registerStudent(fmt.Sprintf("s%d", i), int64(i))
	}
	rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 1}, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/dashboard/stats", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	stats := s.body(rec)["stats"].(map[string]any)
	s.Equal(float64(1), stats["absent_today"])
	s.Equal(float64(2), stats["new_students_this_week"])
	trend := stats["trend"].(map[string]any)
	s.Equal(float64(100), trend["value"], "no yesterday baseline yields the sentinel")
	s.Equal("up", trend["direction"])
}

func (s *APISuite) TestHistoryAndRecentActivity() {
	s.registerStudent("s1", 42)
	rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 42}, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/attendance/history?student_id=s1", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.body(rec)
	s.Equal(float64(1), body["count"])
	logs := body["logs"].([]any)
	s.Equal("Student s1", logs[0].(map[string]any)["student_name"])

	rec = s.do(http.MethodGet, "/v1/dashboard/recent-activity?limit=5", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(float64(1), s.body(rec)["count"])
}

func (s *APISuite) TestUserRegistry() {
	s.registerStudent("s1", 42)

	s.Run("fingerprint collision is a conflict", func() {
		rec := s.do(http.MethodPost, "/v1/users/register", gin.H{
			"uid": "s2", "name": "Bob", "fingerprint_id": 42,
		}, true)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("get and delete", func() {
		rec := s.do(http.MethodGet, "/v1/users/students/s1", nil, false)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodDelete, "/v1/users/students/s1", nil, true)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodGet, "/v1/users/students/s1", nil, false)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *APISuite) TestHistoryShowsUnknownAfterDeletion() {
	s.registerStudent("s1", 42)
	rec := s.do(http.MethodPost, "/v1/attendance/check-in", gin.H{"fingerprint_id": 42}, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/v1/users/students/s1", nil, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/attendance/history", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	logs := s.body(rec)["logs"].([]any)
	s.Require().Len(logs, 1)
	s.Equal("Unknown", logs[0].(map[string]any)["student_name"])
}

func (s *APISuite) TestFingerprintEndpoints() {
	s.registerStudent("s1", 42)

	rec := s.do(http.MethodPost, "/v1/fingerprint/enroll", gin.H{
		"fingerprint_id": 42, "template": "b64template", "device_id": "gate-1",
	}, true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(float64(42), s.body(rec)["fingerprint_id"])

	rec = s.do(http.MethodGet, "/v1/fingerprint/verify/42", nil, false)
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.body(rec)
	s.Equal("s1", body["user_uid"])
	s.Equal("Student s1", body["user_name"])

	rec = s.do(http.MethodGet, "/v1/fingerprint/verify/999", nil, false)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/v1/fingerprint/verify/not-a-number", nil, false)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestDeviceRegisterIssuesTokens() {
	rec := s.do(http.MethodPost, "/v1/devices/register", gin.H{"device_id": "gate-9"}, false)
	s.Require().Equal(http.StatusCreated, rec.Code)
	body := s.body(rec)
	s.NotEmpty(body["access_token"])
	s.NotEmpty(body["refresh_token"])

	rec = s.do(http.MethodPost, "/v1/devices/register", gin.H{}, false)
	s.Equal(http.StatusBadRequest, rec.Code)
}
