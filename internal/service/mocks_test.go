package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/wealthpath/notifications/internal/model"
)

// MockPreferenceRepo for testing
type MockPreferenceRepo struct {
	mock.Mock
}

func (m *MockPreferenceRepo) ListByFeature(ctx context.Context, feature model.Feature) ([]model.NotificationPreferences, error) {
	args := m.Called(ctx, feature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NotificationPreferences), args.Error(1)
}

func (m *MockPreferenceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NotificationPreferences), args.Error(1)
}

type MockBudgetRepo struct {
	mock.Mock
}

func (m *MockBudgetRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Budget), args.Error(1)
}

type MockExpenseRepo struct {
	mock.Mock
}

func (m *MockExpenseRepo) SumExpenses(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, categoryID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRepo) ListExpenses(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from, to time.Time) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, categoryID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockJobLogRepo struct {
	mock.Mock
}

func (m *MockJobLogRepo) InsertJobLog(ctx context.Context, log *model.JobExecutionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type MockThrottleRepo struct {
	mock.Mock
}

func (m *MockThrottleRepo) GetLastSent(ctx context.Context, userID uuid.UUID, notifType model.NotificationType) (*model.ThrottleRecord, error) {
	args := m.Called(ctx, userID, notifType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ThrottleRecord), args.Error(1)
}

func (m *MockThrottleRepo) Touch(ctx context.Context, userID uuid.UUID, notifType model.NotificationType, sentAt time.Time) error {
	args := m.Called(ctx, userID, notifType, sentAt)
	return args.Error(0)
}

func (m *MockThrottleRepo) LogAnalytics(ctx context.Context, entry *model.NotificationAnalytics) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, n *model.QueuedNotification) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

// fakeQueue is an in-memory insert-or-ignore queue.
type fakeQueue struct {
	mu       sync.Mutex
	rows     map[string]*model.QueuedNotification
	calls    int
	failFor  map[uuid.UUID]bool
	failWith error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{rows: make(map[string]*model.QueuedNotification), failFor: make(map[uuid.UUID]bool)}
}

func (q *fakeQueue) Enqueue(_ context.Context, n *model.QueuedNotification) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.calls++
	if q.failFor[n.UserID] {
		return false, q.failWith
	}
	if _, ok := q.rows[n.IdempotencyKey]; ok {
		return false, nil
	}
	q.rows[n.IdempotencyKey] = n
	return true, nil
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rows)
}

func (q *fakeQueue) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

func (q *fakeQueue) has(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.rows[key]
	return ok
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }
