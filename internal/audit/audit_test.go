package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

type memOutbox struct {
	events []*models.OutboxEvent
	err    error
}

func (m *memOutbox) EnqueueEvent(ctx context.Context, evt *models.OutboxEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, evt)
	return nil
}

func TestRecordWritesOutboxRow(t *testing.T) {
	box := &memOutbox{}
	a := NewAuditor(box, nil)
	a.Record(context.Background(), Event{
		Action:     ActionReordered,
		Resource:   "states",
		OperatorID: "OPR00AAAAA",
		Details:    map[string]int{"from": 0, "to": 2},
	})

	require.Len(t, box.events, 1)
	evt := box.events[0]
	assert.Equal(t, ActionReordered, evt.Type)
	assert.Equal(t, "states", evt.Resource)
	assert.JSONEq(t, `{"from":0,"to":2}`, string(evt.Payload))
}

func TestRecordSwallowsOutboxFailure(t *testing.T) {
	a := NewAuditor(&memOutbox{err: errors.New("db down")}, nil)
	assert.NotPanics(t, func() {
		a.Record(context.Background(), Event{Action: ActionDeleted, Resource: "cities", RecordID: 9})
	})
}

func TestMessageFromEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMessage(models.OutboxEvent{
		EventID:   "e-1",
		Type:      ActionDeleted,
		Resource:  "cities",
		RecordID:  9,
		Payload:   []byte(`{"name":"Pune"}`),
		CreatedAt: at,
	})
	assert.Equal(t, "record.deleted.cities", m.RoutingKey())

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_id":"e-1","action":"record.deleted","resource":"cities","record_id":9,"details":{"name":"Pune"},"occurred_at":"2024-05-01T12:00:00Z"}`, string(b))

	assert.Equal(t, ActionExported, Message{Action: ActionExported}.RoutingKey())
}
