package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/assistant-api/internal/model"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/logger"
)

type fakeNotificationRepo struct {
	notifs map[uuid.UUID]*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifs: make(map[uuid.UUID]*model.Notification)}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	n.CreatedAt = time.Now()
	f.notifs[n.ID] = n
	return nil
}

func (f *fakeNotificationRepo) ListForUser(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range f.notifs {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	n, ok := f.notifs[id]
	if !ok || n.UserID != userID {
		return apperrors.NewNotFound("notification", nil)
	}
	n.IsRead = true
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range f.notifs {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	n, ok := f.notifs[id]
	if !ok || n.UserID != userID {
		return apperrors.NewNotFound("notification", nil)
	}
	delete(f.notifs, id)
	return nil
}

func (f *fakeNotificationRepo) Clear(_ context.Context, userID uuid.UUID) error {
	for id, n := range f.notifs {
		if n.UserID == userID {
			delete(f.notifs, id)
		}
	}
	return nil
}

func (f *fakeNotificationRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, n := range f.notifs {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			delete(f.notifs, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestService(repo *fakeNotificationRepo) *Service {
	return NewService(repo, nil, nil, logger.NewLogger(nil))
}

func TestCreateTrimsAndRejectsEmptyMessage(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	n, err := svc.Create(context.Background(), userID, "  Time to take Paracetamol (500mg)  ")
	require.NoError(t, err)
	assert.Equal(t, "Time to take Paracetamol (500mg)", n.Message)

	_, err = svc.Create(context.Background(), userID, "   ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestUnreadFilterAndMarkRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	first, err := svc.Create(context.Background(), userID, "first")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), userID, "second")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), userID, first.ID))

	unread, err := svc.List(context.Background(), userID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Message)

	all, err := svc.List(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)
	owner := uuid.New()

	n, err := svc.Create(context.Background(), owner, "private")
	require.NoError(t, err)

	err = svc.MarkRead(context.Background(), uuid.New(), n.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMarkAllReadAndClear(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	for _, msg := range []string{"a", "b", "c"} {
		_, err := svc.Create(context.Background(), userID, msg)
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllRead(context.Background(), userID))
	unread, err := svc.List(context.Background(), userID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, svc.ClearAll(context.Background(), userID))
	all, err := svc.List(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Empty(t, all)
}
