package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Payload is one recorded request/response pair, optionally linked to a session.
type Payload struct {
	ID            int64     `json:"id"`
	PayloadID     string    `json:"payloadId"`
	MessageID     string    `json:"messageId,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	FlowID        string    `json:"flowId,omitempty"`
	Action        Action    `json:"action,omitempty"`
	ResponderID   string    `json:"responderId,omitempty"`
	RequesterID   string    `json:"requesterId,omitempty"`
	RequestHeader string    `json:"requestHeader,omitempty"`
	JSONRequest   Document  `json:"jsonRequest,omitempty"`
	JSONResponse  Document  `json:"jsonResponse,omitempty"`
	HTTPStatus    *int      `json:"httpStatus,omitempty"`
	SessionID     string    `json:"sessionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PayloadPatch holds the payload fields overwritten by an update.
type PayloadPatch struct {
	MessageID     string   `json:"messageId,omitempty"`
	TransactionID string   `json:"transactionId,omitempty"`
	Action        Action   `json:"action,omitempty"`
	PayloadID     string   `json:"payloadId"`
	ResponderID   string   `json:"responderId,omitempty"`
	RequesterID   string   `json:"requesterId,omitempty"`
	JSONRequest   Document `json:"jsonRequest,omitempty"`
	JSONResponse  Document `json:"jsonResponse,omitempty"`
	HTTPStatus    *int     `json:"httpStatus,omitempty"`
}

// Document is an opaque structured JSON object. It is stored as serialized text.
type Document map[string]any

// Value implements driver.Valuer. A nil document is stored as NULL.
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *Document) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported document column type %T", src)
	}
	if len(raw) == 0 {
		*d = nil
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	*d = m
	return nil
}
