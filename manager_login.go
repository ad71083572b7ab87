package authcore

import (
	"context"
	"errors"

	"github.com/smartshield/authcore/session"
)

// Login authenticates an email/password pair and opens a new session
// family. Unknown emails and wrong passwords both return
// [ErrInvalidCredentials] so callers cannot probe for registered accounts.
func (m *Manager) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if m == nil || m.userProvider == nil {
		return nil, ErrManagerNotReady
	}

	if email == "" || password == "" {
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"reason":     "empty_input",
			}
		})
		return nil, ErrInvalidCredentials
	}

	user, err := m.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"reason":     "user_not_found",
			}
		})
		return nil, ErrInvalidCredentials
	}

	ok, err := m.passwords.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"reason":     "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}
	password = ""

	result, err := m.openSession(ctx, user)
	if err != nil {
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, "", err, nil)
		return nil, err
	}
	result.Message = "Login successful"

	m.metricInc(MetricLoginSuccess)
	m.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, result.FamilyID, nil, nil)

	return result, nil
}

// openSession creates a session family for user and issues both tokens.
// The refresh token is issued first so its token ID can be persisted as
// the family's current ID before anything is handed to the caller.
func (m *Manager) openSession(ctx context.Context, user UserRecord) (*AuthResult, error) {
	rec := session.NewRecord(user.UserID, user.Role, m.config.Token.RefreshTTL)

	tokenID, refreshStr, err := m.tokens.IssueRefresh(user.UserID, rec.FamilyID)
	if err != nil {
		return nil, err
	}
	rec.CurrentTokenID = tokenID

	accessStr, err := m.tokens.IssueAccess(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.sessions.Save(sctx, rec, m.config.Token.RefreshTTL); err != nil {
		return nil, m.storeErr(err)
	}
	m.metricInc(MetricSessionCreated)

	cookie := m.RefreshCookie(refreshStr)
	info := user.Identity()

	return &AuthResult{
		Success:     true,
		AccessToken: accessStr,
		User: &UserInfo{
			ID:    info.UserID,
			Email: info.Email,
			Name:  info.Name,
			Role:  info.Role,
		},
		Cookie:   &cookie,
		FamilyID: rec.FamilyID,
	}, nil
}
