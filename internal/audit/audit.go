package audit

import (
	"context"

	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
)

// Audit actions for the support chat bridge.
const (
	ActionConnect            = "chat.connect"
	ActionConnectRejected    = "chat.connect_rejected"
	ActionDisconnect         = "chat.disconnect"
	ActionSendMessage        = "chat.send_message"
	ActionCreateConversation = "chat.create_conversation"
	ActionAnalytics          = "chat.analytics"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
