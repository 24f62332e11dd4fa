package models

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries pagination details for list responses.
type Meta struct {
	Total      int `json:"total"`
	Limit      int `json:"limit"`
	Page       int `json:"page,omitempty"`
	TotalPages int `json:"totalPages"`
}

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleViewer     Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// Message is the {type, text} notice handed back to the console after a
// form submit or list action.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	MessageSuccess = "success"
	MessageError   = "error"
)

func SuccessMessage(text string) Message { return Message{Type: MessageSuccess, Text: text} }

func ErrorMessage(text string) Message { return Message{Type: MessageError, Text: text} }
