package db

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	MaxTurnContentLength = 10000 // runes
)

// ProductRef records which product backed an assistant reply and how well it matched.
type ProductRef struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Score     float64 `json:"score" bson:"score"`
	Tier      string  `json:"tier" bson:"tier"`
}

type TurnMetadata struct {
	IPAddress         string       `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent         string       `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Model             string       `json:"model,omitempty" bson:"model,omitempty"`
	ProcessingTimeMs  int64        `json:"processingTimeMs,omitempty" bson:"processingTimeMs,omitempty"`
	ResponseType      string       `json:"responseType,omitempty" bson:"responseType,omitempty"`
	SkipRAG           bool         `json:"skipRAG" bson:"skipRAG"`
	ClarifiedQuery    string       `json:"clarifiedQuery,omitempty" bson:"clarifiedQuery,omitempty"`
	RetrievedProducts []ProductRef `json:"retrievedProducts,omitempty" bson:"retrievedProducts,omitempty"`
	ComplaintID       string       `json:"complaintId,omitempty" bson:"complaintId,omitempty"`
}

// A single message in a session. Turns are append-only.
type TurnModel struct {
	Role      string        `json:"role" bson:"role"`
	Content   string        `json:"content" bson:"content"`
	Timestamp int64         `json:"timestamp" bson:"timestamp"`
	Metadata  *TurnMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

type ClientInfo struct {
	IPAddress string `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
}

// ConversationModel is keyed by the session id.
type ConversationModel struct {
	SessionID    string      `json:"sessionId" bson:"_id"`
	Turns        []TurnModel `json:"turns" bson:"turns"`
	TurnCount    int         `json:"turnCount" bson:"turnCount"`
	LastActivity int64       `json:"lastActivity" bson:"lastActivity"`
	CreatedOn    int64       `json:"createdOn" bson:"createdOn"`
	ClientInfo   *ClientInfo `json:"clientInfo,omitempty" bson:"clientInfo,omitempty"`
}

func (m ConversationModel) Id() string { return m.SessionID }

func (m ConversationModel) CollectionName() string { return "conversations" }

// AppendTurn adds a turn and recomputes the derived counters.
func (m *ConversationModel) AppendTurn(turn TurnModel) {
	turn.Content = truncateRunes(turn.Content, MaxTurnContentLength)
	m.Turns = append(m.Turns, turn)
	m.recompute()
}

func (m *ConversationModel) recompute() {
	m.TurnCount = len(m.Turns)
	m.LastActivity = 0
	for _, t := range m.Turns {
		if t.Timestamp > m.LastActivity {
			m.LastActivity = t.Timestamp
		}
	}
}

// RecentTurns returns up to n of the latest turns, oldest first.
func (m *ConversationModel) RecentTurns(n int) []TurnModel {
	if n <= 0 || len(m.Turns) == 0 {
		return []TurnModel{}
	}
	start := len(m.Turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]TurnModel, len(m.Turns)-start)
	copy(out, m.Turns[start:])
	return out
}
