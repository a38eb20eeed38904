package db

import (
	"strings"

	"github.com/google/uuid"
)

type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "open"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

// IsActive reports whether the complaint is still being worked on.
func (s ComplaintStatus) IsActive() bool {
	return s == StatusOpen || s == StatusInProgress
}

type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
	PriorityUrgent ComplaintPriority = "urgent"
)

// ParsePriority maps free-form model output to a priority, defaulting to medium.
func ParsePriority(raw string) ComplaintPriority {
	switch p := ComplaintPriority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p
	default:
		return PriorityMedium
	}
}

const (
	MaxComplaintDescriptionLength = 2000
	maxSummaryLength              = 200
)

type CustomerContact struct {
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

func (c CustomerContact) HasAny() bool {
	return c.Email != "" || c.Phone != ""
}

type StatusChange struct {
	From ComplaintStatus `json:"from" bson:"from"`
	To   ComplaintStatus `json:"to" bson:"to"`
	At   int64           `json:"at" bson:"at"`
}

type ComplaintModel struct {
	ComplaintID     string            `json:"complaintId" bson:"_id"`
	SessionID       string            `json:"sessionId" bson:"sessionId"`
	ConversationID  string            `json:"conversationId" bson:"conversationId"`
	Summary         string            `json:"summary" bson:"summary"`
	Description     string            `json:"description" bson:"description"`
	CustomerContact CustomerContact   `json:"customerContact" bson:"customerContact"`
	Status          ComplaintStatus   `json:"status" bson:"status"`
	Priority        ComplaintPriority `json:"priority" bson:"priority"`
	Tags            []string          `json:"tags" bson:"tags"`
	AssignedTo      string            `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	ResolutionNotes string            `json:"resolutionNotes,omitempty" bson:"resolutionNotes,omitempty"`
	ResolvedAt      int64             `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	StatusHistory   []StatusChange    `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`
	CreatedOn       int64             `json:"createdOn" bson:"createdOn"`
	UpdatedOn       int64             `json:"updatedOn" bson:"updatedOn"`
}

func NewComplaintModel(sessionID string, now int64) *ComplaintModel {
	return &ComplaintModel{
		ComplaintID:    uuid.New().String(),
		SessionID:      sessionID,
		ConversationID: sessionID,
		Status:         StatusOpen,
		Priority:       PriorityMedium,
		Tags:           []string{},
		CreatedOn:      now,
		UpdatedOn:      now,
	}
}

func (m ComplaintModel) Id() string {
	if len(m.ComplaintID) == 0 {
		return uuid.New().String()
	}
	return m.ComplaintID
}

func (m ComplaintModel) CollectionName() string { return "complaints" }

// SetDescription stores the bounded description and derives the summary from its first line.
func (m *ComplaintModel) SetDescription(description string) {
	description = strings.TrimSpace(description)
	if description == "" {
		return
	}
	m.Description = truncateRunes(description, MaxComplaintDescriptionLength)

	summary := m.Description
	if idx := strings.IndexAny(summary, "\n.!?"); idx > 0 {
		summary = summary[:idx]
	}
	m.Summary = truncateRunes(strings.TrimSpace(summary), maxSummaryLength)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ComplaintDraftModel holds partial intake data for a session until the complaint is complete.
type ComplaintDraftModel struct {
	SessionID       string            `json:"sessionId" bson:"_id"`
	Description     string            `json:"description" bson:"description"`
	CustomerContact CustomerContact   `json:"customerContact" bson:"customerContact"`
	Priority        ComplaintPriority `json:"priority" bson:"priority"`
	Tags            []string          `json:"tags" bson:"tags"`
	Active          bool              `json:"active" bson:"active"`
	UpdatedOn       int64             `json:"updatedOn" bson:"updatedOn"`
}

func (m ComplaintDraftModel) Id() string { return m.SessionID }

func (m ComplaintDraftModel) CollectionName() string { return "complaint_drafts" }
