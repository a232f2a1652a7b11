package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a domain event; it doubles as the routing key
type Type string

const (
	ProposalGenerated     Type = "proposal.generated"
	ProposalStatusChanged Type = "proposal.status_changed"
	QuotationGenerated    Type = "quotation.generated"
	QuotationAccepted     Type = "quotation.accepted"
	QuotationExpired      Type = "quotation.expired"
	ChatMessageSent       Type = "chat.message_sent"
)

const producer = "proposal-ai-be"

type Meta struct {
	// Unique event ID
	ID string `json:"id"`
	// Request correlation ID, usually the fiber request id
	CorrelationID *string   `json:"correlation_id,omitempty"`
	Producer      string    `json:"producer"`
	Time          time.Time `json:"time"`
	Type          Type      `json:"type"`
}

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// NewEnvelope stamps data with a fresh id and the current time
func NewEnvelope(t Type, data any, correlationID string) Envelope {
	meta := Meta{
		ID:       uuid.NewString(),
		Producer: producer,
		Time:     time.Now().UTC(),
		Type:     t,
	}
	if correlationID != "" {
		meta.CorrelationID = &correlationID
	}
	return Envelope{Meta: meta, Data: data}
}

// Payloads

type ProposalGeneratedData struct {
	ProposalID string `json:"proposal_id"`
	UserID     string `json:"user_id"`
	Reference  string `json:"reference"`
	Saved      bool   `json:"saved"`
}

type ProposalStatusChangedData struct {
	ProposalID string `json:"proposal_id"`
	UserID     string `json:"user_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type QuotationGeneratedData struct {
	QuotationID string `json:"quotation_id"`
	UserID      string `json:"user_id"`
	Reference   string `json:"reference"`
	TotalCost   int64  `json:"total_cost"`
	LineItems   int    `json:"line_items"`
	Saved       bool   `json:"saved"`
}

type QuotationAcceptedData struct {
	QuotationID string    `json:"quotation_id"`
	UserID      string    `json:"user_id"`
	Reference   string    `json:"reference"`
	CompanyName string    `json:"company_name"`
	TotalCost   int64     `json:"total_cost"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

type QuotationExpiredData struct {
	Count  int64     `json:"count"`
	Before time.Time `json:"before"`
}

type ChatMessageSentData struct {
	ConversationKey string `json:"conversation_key"`
	MessageID       string `json:"message_id"`
	SenderID        string `json:"sender_id"`
	Timestamp       int64  `json:"timestamp"`
}
