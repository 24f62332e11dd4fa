// Package audit records console mutations in the outbox and publishes them
// to the message broker.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

const (
	ActionCreated     = "record.created"
	ActionUpdated     = "record.updated"
	ActionDeleted     = "record.deleted"
	ActionActivated   = "record.activated"
	ActionDeactivated = "record.deactivated"
	ActionReordered   = "records.reordered"
	ActionExported    = "records.exported"
	ActionOperator    = "operator.changed"
)

type Event struct {
	Action     string
	Resource   string
	RecordID   int64
	OperatorID string
	Details    interface{}
}

// Outbox is where recorded events wait for the publisher.
type Outbox interface {
	EnqueueEvent(ctx context.Context, evt *models.OutboxEvent) error
}

type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Auditor writes events to the outbox. A failed write is logged and never
// fails the mutation that caused it.
type Auditor struct {
	outbox Outbox
	log    *logger.Logger
}

func NewAuditor(outbox Outbox, log *logger.Logger) *Auditor {
	if log == nil {
		log = logger.Nop()
	}
	return &Auditor{outbox: outbox, log: log.Named("audit")}
}

func (a *Auditor) Record(ctx context.Context, e Event) {
	var payload []byte
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			a.log.Warnf("audit %s %s: encode details: %v", e.Action, e.Resource, err)
		} else {
			payload = b
		}
	}
	evt := &models.OutboxEvent{
		Type:       e.Action,
		Resource:   e.Resource,
		RecordID:   e.RecordID,
		OperatorID: e.OperatorID,
		Payload:    payload,
	}
	if err := a.outbox.EnqueueEvent(ctx, evt); err != nil {
		a.log.Error(err, fmt.Sprintf("audit %s %s/%d not recorded", e.Action, e.Resource, e.RecordID))
	}
}

// Message is the published body of one outbox event.
type Message struct {
	EventID    string          `json:"event_id"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	RecordID   int64           `json:"record_id,omitempty"`
	OperatorID string          `json:"operator_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewMessage(evt models.OutboxEvent) Message {
	m := Message{
		EventID:    evt.EventID,
		Action:     evt.Type,
		Resource:   evt.Resource,
		RecordID:   evt.RecordID,
		OperatorID: evt.OperatorID,
		OccurredAt: evt.CreatedAt,
	}
	if len(evt.Payload) > 0 {
		m.Details = json.RawMessage(evt.Payload)
	}
	return m
}

// RoutingKey is "<action>.<resource>", e.g. "record.deleted.states".
func (m Message) RoutingKey() string {
	if m.Resource == "" {
		return m.Action
	}
	return m.Action + "." + m.Resource
}
