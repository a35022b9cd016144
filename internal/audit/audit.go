package audit

import (
	"context"

	"github.com/weiawesome/wes-chat/pkg/log"
)

// Audit actions.
const (
	ActionSignUp         = "user.sign_up"
	ActionSignIn         = "user.sign_in"
	ActionSignInFailed   = "user.sign_in_failed"
	ActionSignOut        = "user.sign_out"
	ActionChangePassword = "user.change_password"

	ActionMessageCreate = "message.create"
	ActionMessageUpdate = "message.update"
	ActionMessageDelete = "message.delete"

	ActionChatRoomCreate = "chatroom.create"
	ActionChatRoomUpdate = "chatroom.update"
	ActionChatRoomDelete = "chatroom.delete"

	ActionForbidden = "auth.forbidden"
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

// LogResource emits an audit entry about a single resource.
func LogResource(ctx context.Context, action string, userID string, resourceID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldResourceID, resourceID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
