package authcore

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignupSuccess         = "signup_success"
	auditEventSignupDuplicate       = "signup_duplicate"
	auditEventSignupFailure         = "signup_failure"
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventRefreshSuccess        = "refresh_success"
	auditEventRefreshInvalid        = "refresh_invalid"
	auditEventRefreshReuseDetected  = "refresh_reuse_detected"
	auditEventRefreshConflict       = "refresh_conflict"
	auditEventLogoutSession         = "logout_session"
	auditEventLogoutAll             = "logout_all"
	auditEventPasswordChangeSuccess = "password_change_success"
	auditEventPasswordChangeFailure = "password_change_failure"
)

// AuditErrorCode is the stable machine-readable failure code carried in
// [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrValidation         AuditErrorCode = "validation_failed"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrTokenReuse         AuditErrorCode = "token_reuse"
	auditErrConcurrentRefresh  AuditErrorCode = "concurrent_refresh"
	auditErrSessionRevoked     AuditErrorCode = "session_revoked"
	auditErrSessionNotFound    AuditErrorCode = "session_not_found"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	familyID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		FamilyID:  familyID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrEmailExists):
		return auditErrDuplicate
	case errors.Is(err, ErrValidationFailed):
		return auditErrValidation
	case errors.Is(err, ErrTokenReuse):
		return auditErrTokenReuse
	case errors.Is(err, ErrConcurrentRefresh):
		return auditErrConcurrentRefresh
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrWrongTokenKind):
		return auditErrInvalidToken
	case errors.Is(err, ErrSessionRevoked):
		return auditErrSessionRevoked
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
