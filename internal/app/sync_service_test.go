package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func TestNotifySyncService_HandleEvent(t *testing.T) {
	notifier := new(MockNotifier)
	item := &domain.Item{ID: 1}
	notifier.On("Notify", mock.Anything, item).Return(nil).Once()

	svc := NewNotifySyncService(nil, notifier)
	assert.NoError(t, svc.handleEvent(context.Background(), item))
	notifier.AssertExpectations(t)
}

func TestNotifySyncService_HandleEventError(t *testing.T) {
	notifier := new(MockNotifier)
	item := &domain.Item{ID: 2}
	notifyErr := errors.New("webhook timeout")
	notifier.On("Notify", mock.Anything, item).Return(notifyErr)

	svc := NewNotifySyncService(nil, notifier)
	assert.ErrorIs(t, svc.handleEvent(context.Background(), item), notifyErr)
}
