package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fingertrack/internal/attendance"
	"fingertrack/internal/auth"
	"fingertrack/internal/config"
	"fingertrack/internal/device"
	"fingertrack/internal/fingerprint"
	"fingertrack/internal/identity"
	"fingertrack/internal/metrics"
	"fingertrack/internal/queue"
	"fingertrack/internal/store"
)

type api struct {
	cfg        config.App
	db         *store.DB
	redis      *store.Redis
	queue      queue.Queue
	attendance *attendance.Service
	registry   *identity.Registry
	resolver   *identity.Resolver
	devices    device.Store
	prints     fingerprint.Store
	metrics    *metrics.Metrics
}

// registerRoutes mounts the HTTP surface. Read paths are open; anything that
// writes requires a device token.
func (a *api) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", a.handleHealthz)
	r.POST("/v1/devices/register", a.handleDeviceRegister)

	v1 := r.Group("/v1")
	v1.GET("/attendance/history", a.handleHistory)
	v1.GET("/attendance/today", a.handleToday)
	v1.GET("/attendance/stats", a.handleStats)
	v1.GET("/dashboard/stats", a.handleDashboardStats)
	v1.GET("/dashboard/recent-activity", a.handleRecentActivity)
	v1.GET("/users/students", a.handleListStudents)
	v1.GET("/users/students/:uid", a.handleGetStudent)
	v1.GET("/fingerprint/verify/:fingerprint_id", a.handleVerifyFingerprint)

	protected := r.Group("/v1", auth.DeviceAuth(a.cfg.JWTSigningKey, a.cfg.JWTIssuer))
	protected.POST("/attendance/check-in", a.handleCheckin)
	protected.POST("/fingerprint/enroll", a.handleEnrollFingerprint)
	protected.POST("/users/register", a.handleRegisterUser)
	protected.DELETE("/users/students/:uid", a.handleDeleteStudent)
}

func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// storeError logs the failure and answers with a generic 500. The raw error
// stays out of the response body.
func (a *api) storeError(c *gin.Context, err error) {
	log.Printf("%s %s: store error: %v", c.Request.Method, c.Request.URL.Path, err)
	jsonError(c, http.StatusInternalServerError, "storage error")
}

func (a *api) handleHealthz(c *gin.Context) {
	redisHealthy := a.redis.Healthy(c.Request.Context())
	dbHealthy := a.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

func (a *api) handleDeviceRegister(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "device_id is required")
		return
	}

	if err := a.devices.Upsert(c.Request.Context(), req.DeviceID); err != nil {
		a.storeError(c, err)
		return
	}

	tokens, err := auth.Issue(req.DeviceID, auth.RoleDevice, a.cfg.JWTIssuer, a.cfg.JWTSigningKey, a.cfg.AccessTTL, a.cfg.RefreshTTL)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "token issue failed")
		return
	}

	if err := a.devices.SaveRefreshToken(c.Request.Context(), req.DeviceID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		log.Printf("save refresh token failed: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (a *api) handleCheckin(c *gin.Context) {
	start := time.Now()
	var req struct {
		FingerprintID *int64 `json:"fingerprint_id" binding:"required"`
		DeviceID      string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.metrics.CheckinsRejected.Inc()
		jsonError(c, http.StatusBadRequest, "fingerprint_id is required and must be an integer")
		return
	}

	// A device may only check people in under its own identity.
	claimsAny, _ := c.Get(auth.ClaimsKey)
	if claims, ok := claimsAny.(auth.Claims); ok && claims.Subject != "" && req.DeviceID != "" && claims.Subject != req.DeviceID {
		jsonError(c, http.StatusForbidden, "device mismatch")
		return
	}

	result, err := a.attendance.RecordCheckin(c.Request.Context(), *req.FingerprintID, req.DeviceID)
	switch {
	case errors.Is(err, attendance.ErrInvalidInput):
		a.metrics.CheckinsRejected.Inc()
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, attendance.ErrUnrecognizedFingerprint):
		a.metrics.CheckinsUnrecognized.Inc()
		jsonError(c, http.StatusNotFound, "Fingerprint not recognized")
		return
	case err != nil:
		a.storeError(c, err)
		return
	}

	if err := a.queue.Publish(c.Request.Context(), queue.Message{Type: "checkin", Body: []byte(result.EventID)}); err != nil {
		log.Printf("queue publish failed: %v", err)
	}

	a.metrics.CheckinsRecorded.Inc()
	a.metrics.ObserveCheckin(start)

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Attendance recorded",
		"user_name":  result.UserName,
		"student_id": result.StudentID,
	})
}

func (a *api) handleHistory(c *gin.Context) {
	logs, err := a.attendance.History(c.Request.Context(), c.Query("student_id"), intQuery(c, "limit"))
	if err != nil {
		a.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "logs": logs, "count": len(logs)})
}

func (a *api) handleToday(c *gin.Context) {
	summary, err := a.attendance.Today(c.Request.Context())
	if err != nil {
		a.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"logs":            summary.Logs,
		"count":           summary.Count,
		"unique_students": summary.UniqueStudents,
		"date":            summary.Date,
	})
}

func (a *api) handleStats(c *gin.Context) {
	start := time.Now()
	stats, err := a.attendance.Stats(c.Request.Context())
	if err != nil {
		a.storeError(c, err)
		return
	}
	a.metrics.ObserveStats(start)
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": stats})
}

func (a *api) handleDashboardStats(c *gin.Context) {
	start := time.Now()
	stats, err := a.attendance.DashboardStats(c.Request.Context())
	if err != nil {
		a.storeError(c, err)
		return
	}
	a.metrics.ObserveStats(start)
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": stats})
}

func (a *api) handleRecentActivity(c *gin.Context) {
	activities, err := a.attendance.RecentActivity(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		a.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "activities": activities, "count": len(activities)})
}

func (a *api) handleRegisterUser(c *gin.Context) {
	var req struct {
		UID           string `json:"uid" binding:"required"`
		Name          string `json:"name" binding:"required"`
		FingerprintID *int64 `json:"fingerprint_id" binding:"required"`
		Role          string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "uid, name and fingerprint_id are required")
		return
	}

	user, err := a.registry.Register(c.Request.Context(), req.UID, req.Name, *req.FingerprintID, req.Role)
	if errors.Is(err, identity.ErrFingerprintTaken) {
		jsonError(c, http.StatusConflict, "fingerprint_id already assigned to another user")
		return
	}
	if err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User registered", "user": user})
}

func (a *api) handleListStudents(c *gin.Context) {
	students, err := a.registry.Students(c.Request.Context())
	if err != nil {
		a.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "students": students, "count": len(students)})
}

func (a *api) handleGetStudent(c *gin.Context) {
	student, err := a.registry.Student(c.Request.Context(), c.Param("uid"))
	if err != nil {
		a.storeError(c, err)
		return
	}
	if student == nil {
		jsonError(c, http.StatusNotFound, "Student not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "student": student})
}

func (a *api) handleDeleteStudent(c *gin.Context) {
	if err := a.registry.Remove(c.Request.Context(), c.Param("uid")); err != nil {
		a.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Student deleted"})
}

func (a *api) handleEnrollFingerprint(c *gin.Context) {
	var req struct {
		FingerprintID *int64 `json:"fingerprint_id" binding:"required"`
		Template      string `json:"template"`
		DeviceID      string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "fingerprint_id is required and must be an integer")
		return
	}
	if *req.FingerprintID < 0 {
		jsonError(c, http.StatusBadRequest, "fingerprint_id must be non-negative")
		return
	}

	err := a.prints.Set(c.Request.Context(), fingerprint.Template{
		FingerprintID: *req.FingerprintID,
		Template:      req.Template,
		DeviceID:      req.DeviceID,
	})
	if err != nil {
		a.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"message":        "Fingerprint enrolled",
		"fingerprint_id": *req.FingerprintID,
	})
}

func (a *api) handleVerifyFingerprint(c *gin.Context) {
	fpID, err := strconv.ParseInt(c.Param("fingerprint_id"), 10, 64)
	if err != nil || fpID < 0 {
		jsonError(c, http.StatusBadRequest, "fingerprint_id must be a non-negative integer")
		return
	}

	id, err := a.resolver.ResolveByFingerprint(c.Request.Context(), fpID)
	if err != nil {
		a.storeError(c, err)
		return
	}
	if id == nil {
		jsonError(c, http.StatusNotFound, "Fingerprint not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Fingerprint verified",
		"user_name": id.Name,
		"user_uid":  id.UID,
	})
}

func intQuery(c *gin.Context, key string) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return 0
}
