package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inventory-service/internal/domain"
)

func TestDispatcher_PublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	boom := errors.New("sink down")

	d.Subscribe(EventAccountRegistered, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.SubjectID)
		return boom
	})
	d.Subscribe(EventAccountRegistered, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventAccountDeleted, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	err := d.Publish(context.Background(), New(EventAccountRegistered, "u-1", Actor{}, nil))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"first:u-1", "second:u-1"}, seen)
}

func TestDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), New(EventAccountLoggedIn, "u-1", Actor{}, nil)))
}

func TestNewEvent(t *testing.T) {
	actor := ActorFrom(domain.Identity{SubjectID: "a-1", Role: domain.RoleAdmin})
	e1 := New(EventAccountDeleted, "u-1", actor, nil)
	e2 := New(EventAccountDeleted, "u-1", actor, nil)

	require.NotEmpty(t, e1.ID)
	require.NotEqual(t, e1.ID, e2.ID)
	require.Equal(t, "a-1", e1.Actor.SubjectID)
	require.False(t, e1.Timestamp.IsZero())
}
