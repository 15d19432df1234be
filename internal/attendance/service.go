package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fingertrack/internal/identity"
	"fingertrack/internal/timewindow"
)

// Errors surfaced to the transport layer. ErrInvalidInput maps to a 400-class
// response; ErrUnrecognizedFingerprint is a legitimate business outcome (the
// sensor read someone we don't know) and maps to 404.
var (
	ErrInvalidInput            = errors.New("invalid check-in input")
	ErrUnrecognizedFingerprint = errors.New("fingerprint not recognized")
)

// Limits bounds read-path queries. Zero values fall back to defaults.
type Limits struct {
	HistoryDefault int // history page size when the caller gives none
	HistoryMax     int // hard clamp on caller-supplied limits
	ScanCap        int // max rows scanned for counting and window fetches
}

const (
	defaultHistoryLimit = 100
	defaultHistoryMax   = 500
	defaultScanCap      = 5000
)

// CheckinResult reports a successful check-in.
type CheckinResult struct {
	StudentID string `json:"student_id"`
	UserName  string `json:"user_name"`
	EventID   string `json:"event_id"`
}

// Activity is an event enriched with the student's current display name.
type Activity struct {
	Event
	StudentName string `json:"student_name"`
}

// TodaySummary describes the current UTC day's attendance.
type TodaySummary struct {
	Logs           []Activity `json:"logs"`
	Count          int        `json:"count"`
	UniqueStudents int        `json:"unique_students"`
	Date           string     `json:"date"`
}

// Service coordinates check-in recording and read-path queries. It holds no
// state between requests; all consistency comes from the stores.
type Service struct {
	events   EventStore
	ids      identity.Store
	resolver *identity.Resolver
	limits   Limits
	now      func() time.Time
}

// NewService creates a service over the event log and identity store.
func NewService(events EventStore, ids identity.Store, limits Limits) *Service {
	if limits.HistoryDefault <= 0 {
		limits.HistoryDefault = defaultHistoryLimit
	}
	if limits.HistoryMax <= 0 {
		limits.HistoryMax = defaultHistoryMax
	}
	if limits.ScanCap <= 0 {
		limits.ScanCap = defaultScanCap
	}
	return &Service{
		events:   events,
		ids:      ids,
		resolver: identity.NewResolver(ids),
		limits:   limits,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordCheckin resolves the fingerprint and appends one event. The append is
// deliberately not idempotent: a sensor firing twice yields two events, and
// read-time aggregation dedups by student instead.
func (s *Service) RecordCheckin(ctx context.Context, fingerprintID int64, deviceID string) (CheckinResult, error) {
	if fingerprintID < 0 {
		return CheckinResult{}, fmt.Errorf("%w: fingerprint_id must be non-negative", ErrInvalidInput)
	}
	id, err := s.resolver.ResolveByFingerprint(ctx, fingerprintID)
	if err != nil {
		return CheckinResult{}, err
	}
	if id == nil {
		return CheckinResult{}, ErrUnrecognizedFingerprint
	}
	if deviceID == "" {
		deviceID = "unknown"
	}
	evt, err := s.events.Append(ctx, Event{
		StudentID:     id.UID,
		Timestamp:     s.now().UTC(),
		Status:        StatusPresent,
		DeviceID:      deviceID,
		FingerprintID: fingerprintID,
	})
	if err != nil {
		return CheckinResult{}, err
	}
	return CheckinResult{StudentID: id.UID, UserName: id.Name, EventID: evt.ID}, nil
}

// History returns past events, newest first, optionally filtered by student.
// The limit is clamped to [1, HistoryMax]; zero or negative means the default.
func (s *Service) History(ctx context.Context, studentID string, limit int) ([]Activity, error) {
	limit = s.clampLimit(limit, s.limits.HistoryDefault)
	events, err := s.events.Query(ctx, EventFilter{StudentID: studentID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, events), nil
}

// RecentActivity returns the latest check-ins with resolved names.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	limit = s.clampLimit(limit, 10)
	events, err := s.events.Query(ctx, EventFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, events), nil
}

// Today summarizes the current UTC day: all raw events plus the distinct
// student count.
func (s *Service) Today(ctx context.Context) (TodaySummary, error) {
	window := timewindow.Today(s.now())
	events, err := s.events.Query(ctx, EventFilter{Window: &window, Limit: s.limits.ScanCap})
	if err != nil {
		return TodaySummary{}, err
	}
	return TodaySummary{
		Logs:           s.enrich(ctx, events),
		Count:          len(events),
		UniqueStudents: DistinctStudents(events),
		Date:           window.Start.Format("2006-01-02"),
	}, nil
}

func (s *Service) clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > s.limits.HistoryMax {
		return s.limits.HistoryMax
	}
	return limit
}

// enrich attaches display names. A deleted identity degrades to "Unknown"
// rather than failing the listing.
func (s *Service) enrich(ctx context.Context, events []Event) []Activity {
	res := make([]Activity, 0, len(events))
	for _, evt := range events {
		res = append(res, Activity{
			Event:       evt,
			StudentName: s.resolver.DisplayName(ctx, evt.StudentID),
		})
	}
	return res
}
