package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/inventory-service/internal/config"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
)

func TestAuditService_LogsAccountEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	audit := NewAuditService(dispatcher, zap.New(core), config.NotificationConfig{WebhookURL: "https://hooks.example.com/audit"})
	audit.RegisterHandlers()

	actor := events.ActorFrom(domain.Identity{SubjectID: "admin-1", Role: domain.RoleAdmin})
	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventAccountDeleted, "u-1", actor, nil)))
	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventAccountLoginFailed, "", events.Actor{},
		events.LoginFailedPayload{Email: "a@x.com"})))

	infos := logs.FilterMessage("account event").FilterLevelExact(zapcore.InfoLevel).All()
	require.Len(t, infos, 1)
	require.Equal(t, "account_deleted", infos[0].ContextMap()["event_type"])
	require.Equal(t, "admin-1", infos[0].ContextMap()["actor_id"])

	warns := logs.FilterMessage("account event").FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	require.Equal(t, 2, logs.FilterMessage("sendWebhookNotificationStub").Len())
}
