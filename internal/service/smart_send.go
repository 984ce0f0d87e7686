package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wealthpath/notifications/internal/apperror"
	"github.com/wealthpath/notifications/internal/logger"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/internal/repository"
)

// Smart-send outcome messages.
const (
	SendMessageThrottled  = "throttled"
	SendMessageQuietHours = "quiet_hours"
)

// DefaultThrottleInterval applies to types without a configured interval.
const DefaultThrottleInterval = time.Hour

// DefaultThrottleIntervals is the minimum spacing between two sends of the
// same type to the same user.
var DefaultThrottleIntervals = map[model.NotificationType]time.Duration{
	model.NotificationTypeLargeTransaction: 15 * time.Minute,
	model.NotificationTypeBudgetWarning:    6 * time.Hour,
	model.NotificationTypeDailyAnomaly:     12 * time.Hour,
	model.NotificationTypeDailyReminder:    12 * time.Hour,
	model.NotificationTypeGoalMilestone:    24 * time.Hour,
}

// Deliverer hands a notification to a transport and returns its id.
type Deliverer interface {
	Deliver(ctx context.Context, n *model.QueuedNotification) (string, error)
}

type ThrottleStore interface {
	GetLastSent(ctx context.Context, userID uuid.UUID, notifType model.NotificationType) (*model.ThrottleRecord, error)
	Touch(ctx context.Context, userID uuid.UUID, notifType model.NotificationType, sentAt time.Time) error
	LogAnalytics(ctx context.Context, entry *model.NotificationAnalytics) error
}

type PreferenceGetter interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error)
}

type SmartSendConfig struct {
	DefaultInterval time.Duration
	Intervals       map[model.NotificationType]time.Duration
	StoreTimeout    time.Duration
}

type SendRequest struct {
	UserID uuid.UUID
	Type   model.NotificationType
	Title  string
	Body   string
	Data   model.NotificationData
}

type SendResult struct {
	Success        bool   `json:"success"`
	NotificationID string `json:"notificationId,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Err maps a suppressed send onto an AppError so callers can surface the
// reason with a matching status. A successful result returns nil.
func (r SendResult) Err() error {
	if r.Success {
		return nil
	}
	switch r.Message {
	case SendMessageThrottled:
		return apperror.Throttled(SendMessageThrottled)
	case SendMessageQuietHours:
		return apperror.Conflict(SendMessageQuietHours)
	default:
		return apperror.Unavailable(r.Message)
	}
}

// SmartSendService delivers ad-hoc notifications while keeping a minimum
// spacing per user and type. The throttle check and the throttle write are
// not atomic; two concurrent sends may both pass.
type SmartSendService struct {
	throttle  ThrottleStore
	deliverer Deliverer
	prefs     PreferenceGetter
	intervals map[model.NotificationType]time.Duration
	cfg       SmartSendConfig
	now       func() time.Time
	logger    *slog.Logger
}

// NewSmartSendService builds the gate. prefs may be nil, in which case quiet
// hours are not consulted.
func NewSmartSendService(throttle ThrottleStore, deliverer Deliverer, prefs PreferenceGetter, cfg SmartSendConfig, logger *slog.Logger) *SmartSendService {
	if cfg.DefaultInterval <= 0 {
		cfg.DefaultInterval = DefaultThrottleInterval
	}
	intervals := make(map[model.NotificationType]time.Duration, len(DefaultThrottleIntervals)+len(cfg.Intervals))
	for t, d := range DefaultThrottleIntervals {
		intervals[t] = d
	}
	for t, d := range cfg.Intervals {
		intervals[t] = d
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SmartSendService{
		throttle:  throttle,
		deliverer: deliverer,
		prefs:     prefs,
		intervals: intervals,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source.
func (s *SmartSendService) WithClock(now func() time.Time) *SmartSendService {
	s.now = now
	return s
}

// Interval returns the minimum spacing for notifType.
func (s *SmartSendService) Interval(notifType model.NotificationType) time.Duration {
	if d, ok := s.intervals[notifType]; ok {
		return d
	}
	return s.cfg.DefaultInterval
}

// Send delivers req unless the same type reached the user within its
// interval or the user is in quiet hours. Every attempt appends an analytics
// row; only a delivered notification updates the throttle record.
func (s *SmartSendService) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := validateSendRequest(req); err != nil {
		return SendResult{}, err
	}

	log := logger.Enrich(ctx, s.logger).With(
		slog.String("user_id", req.UserID.String()),
		slog.String("notification_type", string(req.Type)),
	)
	now := s.now()

	last, err := callStore(ctx, s.cfg.StoreTimeout, log, "get throttle", func(ctx context.Context) (*model.ThrottleRecord, error) {
		return s.throttle.GetLastSent(ctx, req.UserID, req.Type)
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("check throttle: %w", err)
	}
	if last != nil && now.Sub(last.LastSentAt) < s.Interval(req.Type) {
		log.Info("notification throttled", slog.Time("last_sent_at", last.LastSentAt))
		s.recordAnalytics(ctx, log, req, model.AnalyticsStatusThrottled, nil, nil, now)
		return SendResult{Success: false, Message: SendMessageThrottled}, nil
	}

	quiet, err := s.inQuietHours(ctx, log, req.UserID, now)
	if err != nil {
		return SendResult{}, err
	}
	if quiet {
		log.Info("notification suppressed by quiet hours")
		s.recordAnalytics(ctx, log, req, model.AnalyticsStatusQuietHours, nil, nil, now)
		return SendResult{Success: false, Message: SendMessageQuietHours}, nil
	}

	n := &model.QueuedNotification{
		UserID:           req.UserID,
		NotificationType: req.Type,
		Title:            req.Title,
		Body:             req.Body,
		Data:             req.Data,
	}
	id, err := s.deliverer.Deliver(ctx, n)
	if err != nil {
		msg := err.Error()
		log.Error("notification delivery failed", slog.String("error", msg))
		s.recordAnalytics(ctx, log, req, model.AnalyticsStatusFailed, nil, &msg, now)
		return SendResult{Success: false, Message: "delivery failed"}, apperror.Unavailable("notification delivery failed")
	}

	err = callStoreErr(ctx, s.cfg.StoreTimeout, log, "touch throttle", func(ctx context.Context) error {
		return s.throttle.Touch(ctx, req.UserID, req.Type, now)
	})
	if err != nil {
		log.Error("failed to update throttle", slog.String("error", err.Error()))
	}

	s.recordAnalytics(ctx, log, req, model.AnalyticsStatusSent, &id, nil, now)
	log.Info("notification sent", slog.String("notification_id", id))

	return SendResult{Success: true, NotificationID: id}, nil
}

func (s *SmartSendService) inQuietHours(ctx context.Context, log *slog.Logger, userID uuid.UUID, now time.Time) (bool, error) {
	if s.prefs == nil {
		return false, nil
	}
	prefs, err := callStore(ctx, s.cfg.StoreTimeout, log, "get preferences", func(ctx context.Context) (*model.NotificationPreferences, error) {
		return s.prefs.GetByUserID(ctx, userID)
	})
	if errors.Is(err, repository.ErrPreferencesNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load preferences: %w", err)
	}
	return IsWithinDoNotDisturb(prefs, now), nil
}

// recordAnalytics never fails the send.
func (s *SmartSendService) recordAnalytics(ctx context.Context, log *slog.Logger, req SendRequest, status model.AnalyticsStatus, notificationID, errMsg *string, at time.Time) {
	entry := &model.NotificationAnalytics{
		UserID:           req.UserID,
		NotificationType: req.Type,
		Status:           status,
		NotificationID:   notificationID,
		ErrorMessage:     errMsg,
		SentAt:           at,
	}
	err := callStoreErr(ctx, s.cfg.StoreTimeout, log, "log analytics", func(ctx context.Context) error {
		return s.throttle.LogAnalytics(ctx, entry)
	})
	if err != nil {
		log.Warn("failed to record analytics", slog.String("error", err.Error()))
	}
}

func validateSendRequest(req SendRequest) error {
	if req.UserID == uuid.Nil {
		return apperror.ValidationError("userId", "is required")
	}
	if !req.Type.IsValid() {
		return apperror.ValidationError("type", "unknown notification type")
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperror.ValidationError("title", "is required")
	}
	if len(req.Data) > 0 {
		if err := req.Data.Validate(req.Type); err != nil {
			return apperror.ValidationError("data", err.Error())
		}
	}
	return nil
}

// QueueDeliverer hands smart-send notifications to the notification queue.
type QueueDeliverer struct {
	queue        NotificationQueue
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewQueueDeliverer(queue NotificationQueue, storeTimeout time.Duration, logger *slog.Logger) *QueueDeliverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueDeliverer{queue: queue, storeTimeout: storeTimeout, logger: logger}
}

func (d *QueueDeliverer) Deliver(ctx context.Context, n *model.QueuedNotification) (string, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.IdempotencyKey == "" {
		n.IdempotencyKey = smartSendKey(n.NotificationType, n.UserID)
	}

	_, err := callStore(ctx, d.storeTimeout, d.logger, "enqueue notification", func(ctx context.Context) (bool, error) {
		return d.queue.Enqueue(ctx, n)
	})
	if err != nil {
		return "", err
	}
	return n.ID.String(), nil
}
