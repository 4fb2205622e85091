package eventpublisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/eventpublisher/mocks"
	"github.com/mosolopay/mosolo/internal/usecase"
)

type stubOutboxRepo struct {
	mu        sync.Mutex
	events    []*domain.OutboxEvent
	published map[string]time.Time
	getErr    error
}

func newStubOutboxRepo(events ...*domain.OutboxEvent) *stubOutboxRepo {
	return &stubOutboxRepo{
		events:    events,
		published: make(map[string]time.Time),
	}
}

func (s *stubOutboxRepo) Create(_ context.Context, _ usecase.Transaction, event *domain.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	var out []*domain.OutboxEvent
	for _, e := range s.events {
		if _, ok := s.published[e.ID]; ok {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubOutboxRepo) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[id] = publishedAt
	return nil
}

func (s *stubOutboxRepo) DeletePublished(_ context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, at := range s.published {
		if at.Before(before) {
			delete(s.published, id)
		}
	}
	return nil
}

func (s *stubOutboxRepo) publishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func testEvent(id, eventType string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            id,
		AggregateID:   "wd-1",
		AggregateType: "withdrawal_request",
		EventType:     eventType,
		Payload:       map[string]any{"withdrawal_id": "wd-1"},
		CreatedAt:     time.Now(),
	}
}

func TestEventPublisher_ProcessEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newStubOutboxRepo(
		testEvent("ev-1", "withdrawal.settled"),
		testEvent("ev-2", "withdrawal.rejected"),
	)
	publisher := mocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  publisher,
		Logger:     zerolog.Nop(),
	})

	err := ep.processEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.publishedCount())
}

func TestEventPublisher_ContinuesOnPublishError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newStubOutboxRepo(
		testEvent("ev-1", "withdrawal.settled"),
		testEvent("ev-2", "quota.reached"),
	)
	publisher := mocks.NewMockPublisher(ctrl)
	gomock.InOrder(
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable")),
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil),
	)

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  publisher,
		Logger:     zerolog.Nop(),
	})

	err := ep.processEvents(context.Background())
	require.NoError(t, err)

	// Failed event stays unpublished and will be retried next tick.
	assert.Equal(t, 1, repo.publishedCount())
	remaining, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "ev-1", remaining[0].ID)
}

func TestEventPublisher_ReturnsRepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newStubOutboxRepo()
	repo.getErr = errors.New("connection reset")
	publisher := mocks.NewMockPublisher(ctrl)

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  publisher,
		Logger:     zerolog.Nop(),
	})

	err := ep.processEvents(context.Background())
	assert.Error(t, err)
}

func TestEventPublisher_StartStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newStubOutboxRepo()
	publisher := mocks.NewMockPublisher(ctrl)

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  publisher,
		Logger:     zerolog.Nop(),
		Interval:   10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after context cancellation")
	}
}

func TestLogPublisher_Publish(t *testing.T) {
	p := NewLogPublisher(zerolog.Nop())
	err := p.Publish(context.Background(), testEvent("ev-1", "withdrawal.settled"))
	assert.NoError(t, err)
}
