package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Operator is a console account. Operators are not marketplace admins; they
// are the people who sign in to this console.
type Operator struct {
	ID           string         `gorm:"primaryKey;size:10" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `json:"name"`
	Role         Role           `gorm:"type:text;not null" json:"role"`
	Permissions  datatypes.JSON `json:"permissions"` // extra grants on top of the role preset
	Active       bool           `gorm:"default:true" json:"active"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type RefreshToken struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	OperatorID string    `gorm:"index;size:10" json:"operator_id"`
	TokenHash  string    `gorm:"not null;index" json:"-"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Revoked    bool      `gorm:"default:false" json:"revoked"`
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	return nil
}

// UIStateEntry is one persisted console UI key for one operator.
type UIStateEntry struct {
	OperatorID string    `gorm:"primaryKey;size:10" json:"operator_id"`
	Key        string    `gorm:"primaryKey;size:64" json:"key"`
	Value      string    `json:"value"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (UIStateEntry) TableName() string { return "ui_state" }

type ExportRecord struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	OperatorID string            `gorm:"index;size:10" json:"operator_id"`
	Resource   string            `gorm:"size:32" json:"resource"`
	Filename   string            `json:"filename"`
	ObjectKey  string            `json:"-"`
	Backend    string            `gorm:"size:16" json:"backend"`
	RowCount   int               `json:"row_count"`
	Filters    datatypes.JSONMap `json:"filters"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

func (e *ExportRecord) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// OutboxEvent is an audit event waiting to be published to the broker.
type OutboxEvent struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string         `gorm:"uniqueIndex;size:36" json:"event_id"`
	Type        string         `gorm:"size:32;index" json:"type"`
	Resource    string         `gorm:"size:32" json:"resource"`
	RecordID    int64          `json:"record_id,omitempty"`
	OperatorID  string         `gorm:"size:10" json:"operator_id"`
	Payload     datatypes.JSON `json:"payload"`
	Retry       int            `json:"retry"`
	Failed      bool           `gorm:"default:false;index" json:"failed"`
	ProcessedAt *time.Time     `gorm:"index" json:"processed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
