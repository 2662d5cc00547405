package domain

// WebSocket envelope types sent to clients. Clients use the type label to
// decide how to handle each frame.
const (
	MsgTypeChatMessage        = "chat.message"
	MsgTypeConversationJoined = "conversation.joined"
)

// InboundMessage is the raw payload a client sends over the socket.
type InboundMessage struct {
	ConversationID string `json:"conversation_id"`
	Sender         string `json:"sender"`
	Text           string `json:"text"`
}

// Valid reports whether all required fields are present.
func (m *InboundMessage) Valid() bool {
	return m.ConversationID != "" && m.Sender != "" && m.Text != ""
}

// Envelope is the enriched, server-timestamped message broadcast to every
// member of the conversation group, the sender included.
type Envelope struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Sender         string `json:"sender"`
	Text           string `json:"text"`
	Timestamp      string `json:"timestamp"` // RFC 3339 UTC
}

// JoinedAck acknowledges a successful join to a conversation group.
type JoinedAck struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
}

// NewJoinedAck builds the ack for a conversation.
func NewJoinedAck(conversationID string) *JoinedAck {
	return &JoinedAck{
		Type:           MsgTypeConversationJoined,
		ConversationID: conversationID,
	}
}
