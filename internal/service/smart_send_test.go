package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wealthpath/notifications/internal/apperror"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/internal/repository"
)

func sendRequest(userID uuid.UUID) SendRequest {
	return SendRequest{
		UserID: userID,
		Type:   model.NotificationTypeLargeTransaction,
		Title:  "Large transaction",
		Body:   "A $950.00 expense was recorded",
	}
}

func analyticsWithStatus(status model.AnalyticsStatus) interface{} {
	return mock.MatchedBy(func(a *model.NotificationAnalytics) bool { return a.Status == status })
}

func TestSmartSend_Send(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastSent   *time.Time
		wantResult SendResult
		wantStatus model.AnalyticsStatus
		wantTouch  bool
	}{
		{
			name:       "first send",
			wantResult: SendResult{Success: true, NotificationID: "notif-1"},
			wantStatus: model.AnalyticsStatusSent,
			wantTouch:  true,
		},
		{
			name:       "interval elapsed",
			lastSent:   func() *time.Time { ts := now.Add(-16 * time.Minute); return &ts }(),
			wantResult: SendResult{Success: true, NotificationID: "notif-1"},
			wantStatus: model.AnalyticsStatusSent,
			wantTouch:  true,
		},
		{
			name:       "inside interval",
			lastSent:   func() *time.Time { ts := now.Add(-5 * time.Minute); return &ts }(),
			wantResult: SendResult{Success: false, Message: SendMessageThrottled},
			wantStatus: model.AnalyticsStatusThrottled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userID := uuid.New()
			throttle := new(MockThrottleRepo)
			deliverer := new(MockDeliverer)

			if tt.lastSent != nil {
				throttle.On("GetLastSent", mock.Anything, userID, model.NotificationTypeLargeTransaction).
					Return(&model.ThrottleRecord{UserID: userID, LastSentAt: *tt.lastSent}, nil)
			} else {
				throttle.On("GetLastSent", mock.Anything, userID, model.NotificationTypeLargeTransaction).Return(nil, nil)
			}
			throttle.On("LogAnalytics", mock.Anything, analyticsWithStatus(tt.wantStatus)).Return(nil).Once()
			if tt.wantTouch {
				deliverer.On("Deliver", mock.Anything, mock.Anything).Return("notif-1", nil).Once()
				throttle.On("Touch", mock.Anything, userID, model.NotificationTypeLargeTransaction, now).Return(nil).Once()
			}

			svc := NewSmartSendService(throttle, deliverer, nil, SmartSendConfig{}, nil).WithClock(fixedClock(now))
			result, err := svc.Send(context.Background(), sendRequest(userID))

			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, result)
			throttle.AssertExpectations(t)
			deliverer.AssertExpectations(t)
			if !tt.wantTouch {
				throttle.AssertNotCalled(t, "Touch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSmartSend_QuietHours(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC)

	throttle := new(MockThrottleRepo)
	throttle.On("GetLastSent", mock.Anything, userID, mock.Anything).Return(nil, nil)
	throttle.On("LogAnalytics", mock.Anything, analyticsWithStatus(model.AnalyticsStatusQuietHours)).Return(nil).Once()

	prefs := new(MockPreferenceRepo)
	prefs.On("GetByUserID", mock.Anything, userID).Return(&model.NotificationPreferences{
		UserID:       userID,
		DNDEnabled:   true,
		DNDStartTime: strPtr("22:00"),
		DNDEndTime:   strPtr("07:00"),
	}, nil)

	deliverer := new(MockDeliverer)
	svc := NewSmartSendService(throttle, deliverer, prefs, SmartSendConfig{}, nil).WithClock(fixedClock(now))

	result, err := svc.Send(context.Background(), sendRequest(userID))

	require.NoError(t, err)
	assert.Equal(t, SendResult{Success: false, Message: SendMessageQuietHours}, result)
	deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	throttle.AssertExpectations(t)
}

func TestSmartSend_MissingPreferencesAllowSend(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	throttle := new(MockThrottleRepo)
	throttle.On("GetLastSent", mock.Anything, userID, mock.Anything).Return(nil, nil)
	throttle.On("Touch", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)
	throttle.On("LogAnalytics", mock.Anything, analyticsWithStatus(model.AnalyticsStatusSent)).Return(nil)

	prefs := new(MockPreferenceRepo)
	prefs.On("GetByUserID", mock.Anything, userID).Return(nil, repository.ErrPreferencesNotFound).Once()

	deliverer := new(MockDeliverer)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return("id-7", nil)

	svc := NewSmartSendService(throttle, deliverer, prefs, SmartSendConfig{}, nil)
	result, err := svc.Send(context.Background(), sendRequest(userID))

	require.NoError(t, err)
	assert.True(t, result.Success)
	prefs.AssertNumberOfCalls(t, "GetByUserID", 1)
}

func TestSmartSend_DeliveryFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	throttle := new(MockThrottleRepo)
	throttle.On("GetLastSent", mock.Anything, userID, mock.Anything).Return(nil, nil)
	throttle.On("LogAnalytics", mock.Anything, mock.MatchedBy(func(a *model.NotificationAnalytics) bool {
		return a.Status == model.AnalyticsStatusFailed && a.ErrorMessage != nil
	})).Return(nil).Once()

	deliverer := new(MockDeliverer)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return("", errors.New("broker closed"))

	svc := NewSmartSendService(throttle, deliverer, nil, SmartSendConfig{}, nil)
	result, err := svc.Send(context.Background(), sendRequest(userID))

	assert.False(t, result.Success)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	throttle.AssertNotCalled(t, "Touch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSmartSend_ThrottleReadFailure(t *testing.T) {
	t.Parallel()

	throttle := new(MockThrottleRepo)
	throttle.On("GetLastSent", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	svc := NewSmartSendService(throttle, new(MockDeliverer), nil, SmartSendConfig{}, nil)
	_, err := svc.Send(context.Background(), sendRequest(uuid.New()))

	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestSmartSend_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  SendRequest
	}{
		{"missing user", SendRequest{Type: model.NotificationTypeLargeTransaction, Title: "x"}},
		{"unknown type", SendRequest{UserID: uuid.New(), Type: "sms_blast", Title: "x"}},
		{"blank title", SendRequest{UserID: uuid.New(), Type: model.NotificationTypeLargeTransaction, Title: "  "}},
		{"incomplete data", SendRequest{
			UserID: uuid.New(),
			Type:   model.NotificationTypeLargeTransaction,
			Title:  "x",
			Data:   model.NotificationData{"screen": "RecordDetail"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewSmartSendService(new(MockThrottleRepo), new(MockDeliverer), nil, SmartSendConfig{}, nil)
			_, err := svc.Send(context.Background(), tt.req)

			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestSmartSend_Interval(t *testing.T) {
	t.Parallel()

	svc := NewSmartSendService(nil, nil, nil, SmartSendConfig{
		DefaultInterval: 2 * time.Hour,
		Intervals:       map[model.NotificationType]time.Duration{model.NotificationTypeBudgetWarning: time.Minute},
	}, nil)

	assert.Equal(t, 15*time.Minute, svc.Interval(model.NotificationTypeLargeTransaction))
	assert.Equal(t, time.Minute, svc.Interval(model.NotificationTypeBudgetWarning))
	assert.Equal(t, 2*time.Hour, svc.Interval(model.NotificationType("custom")))
}

func TestQueueDeliverer_Deliver(t *testing.T) {
	t.Parallel()

	queue := newFakeQueue()
	d := NewQueueDeliverer(queue, time.Second, nil)
	userID := uuid.New()

	first, err := d.Deliver(context.Background(), &model.QueuedNotification{UserID: userID, NotificationType: model.NotificationTypeGoalMilestone})
	require.NoError(t, err)
	second, err := d.Deliver(context.Background(), &model.QueuedNotification{UserID: userID, NotificationType: model.NotificationTypeGoalMilestone})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, queue.count(), "every smart send gets its own key")
	_, err = uuid.Parse(first)
	assert.NoError(t, err)
}

func TestSendResult_Err(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		result     SendResult
		wantStatus int
		wantErr    error
		wantMsg    string
	}{
		{
			name:   "sent",
			result: SendResult{Success: true, NotificationID: "n-1"},
		},
		{
			name:       "throttled",
			result:     SendResult{Message: SendMessageThrottled},
			wantStatus: 429,
			wantErr:    apperror.ErrThrottled,
			wantMsg:    SendMessageThrottled,
		},
		{
			name:       "quiet hours",
			result:     SendResult{Message: SendMessageQuietHours},
			wantStatus: 409,
			wantErr:    apperror.ErrConflict,
			wantMsg:    SendMessageQuietHours,
		},
		{
			name:       "delivery failed",
			result:     SendResult{Message: "delivery failed"},
			wantStatus: 503,
			wantErr:    apperror.ErrUnavailable,
			wantMsg:    "delivery failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.result.Err()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantStatus, apperror.GetStatusCode(err))
			assert.Equal(t, tt.wantMsg, apperror.GetMessage(err))
		})
	}
}
