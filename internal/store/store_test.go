package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := New(db, &config.Config{DatabaseDriver: "sqlite"})
	require.NoError(t, s.Migrate())
	return s
}

func seedOperator(t *testing.T, s *Store, id, email string) *models.Operator {
	t.Helper()
	op := &models.Operator{ID: id, Email: email, Name: "Test", Role: models.RoleAdmin, Active: true}
	require.NoError(t, s.CreateOperator(context.Background(), op))
	return op
}

func TestOperatorCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedOperator(t, s, "OPR00AAAAA", "a@example.com")
	seedOperator(t, s, "OPR00BBBBB", "b@example.com")

	op, err := s.GetOperatorByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "OPR00BBBBB", op.ID)

	require.NoError(t, s.UpdateOperatorFields(ctx, op.ID, map[string]interface{}{"role": models.RoleViewer}))
	op, err = s.GetOperatorByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, op.Role)

	err = s.UpdateOperatorFields(ctx, "OPR00ZZZZZ", map[string]interface{}{"name": "x"})
	assert.True(t, IsNotFound(err))

	all, err := s.ListOperators(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	dup := &models.Operator{ID: "OPR00CCCCC", Email: "a@example.com", Role: models.RoleAdmin}
	assert.Error(t, s.CreateOperator(ctx, dup), "email is unique")
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedOperator(t, s, "OPR00AAAAA", "a@example.com")

	require.NoError(t, s.SaveRefreshToken(ctx, "OPR00AAAAA", "first", time.Now().Add(time.Hour)))
	rt, err := s.FindRefreshToken(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "OPR00AAAAA", rt.OperatorID)
	assert.NotEqual(t, "first", rt.TokenHash)

	opID, err := s.RotateRefreshToken(ctx, "first", "second", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "OPR00AAAAA", opID)

	_, err = s.FindRefreshToken(ctx, "first")
	assert.True(t, IsNotFound(err), "old token revoked")
	_, err = s.RotateRefreshToken(ctx, "first", "third", time.Now().Add(time.Hour))
	assert.Error(t, err, "revoked token cannot rotate")

	_, err = s.FindRefreshToken(ctx, "second")
	require.NoError(t, err)

	require.NoError(t, s.SaveRefreshToken(ctx, "OPR00AAAAA", "stale", time.Now().Add(-time.Hour)))
	n, err := s.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "the revoked and the expired token")
}

func TestOperatorUIStateUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := s.UIState("OPR00AAAAA")
	b := s.UIState("OPR00BBBBB")

	_, ok, err := a.Get(ctx, "app_sidebar_open")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Set(ctx, "app_sidebar_open", "true"))
	require.NoError(t, a.Set(ctx, "app_sidebar_open", "false"))
	v, ok, err := a.Get(ctx, "app_sidebar_open")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", v)

	_, ok, _ = b.Get(ctx, "app_sidebar_open")
	assert.False(t, ok, "state is per operator")
}

func TestExportRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := &models.ExportRecord{OperatorID: "OPR00AAAAA", Resource: "employers", Filename: "e.csv", ObjectKey: "k", Backend: "local"}
	require.NoError(t, s.CreateExport(ctx, rec))
	assert.NotEmpty(t, rec.ID)

	got, err := s.GetExport(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "e.csv", got.Filename)

	list, err := s.ListExports(ctx, "OPR00AAAAA", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = s.ListExports(ctx, "OPR00BBBBB", 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	old, err := s.ExportsBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, old, 1)
	require.NoError(t, s.DeleteExport(ctx, old[0].ID))
	_, err = s.GetExport(ctx, rec.ID)
	assert.True(t, IsNotFound(err))
}

func TestOutboxRetryParksEvent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	evt := &models.OutboxEvent{Type: "record.deleted", Resource: "states", RecordID: 3, OperatorID: "OPR00AAAAA"}
	require.NoError(t, s.EnqueueEvent(ctx, evt))
	assert.NotEmpty(t, evt.EventID)

	for i := 0; i < MaxOutboxRetries-1; i++ {
		require.NoError(t, s.BumpEventRetry(ctx, evt.ID))
	}
	pending, err := s.PendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, MaxOutboxRetries-1, pending[0].Retry)

	require.NoError(t, s.BumpEventRetry(ctx, evt.ID))
	pending, err = s.PendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxMarkProcessed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	evt := &models.OutboxEvent{Type: "record.created", Resource: "cities"}
	require.NoError(t, s.EnqueueEvent(ctx, evt))
	require.NoError(t, s.MarkEventProcessed(ctx, evt.ID))

	pending, err := s.PendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err := s.PurgeProcessedEvents(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
