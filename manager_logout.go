package authcore

import "context"

// Logout revokes the session family named by the refresh token and returns
// the directive that clears the cookie. Idempotent: a missing, expired,
// malformed, or already revoked token still clears the cookie and reports
// success, because the end state the client asked for already holds.
func (m *Manager) Logout(ctx context.Context, refreshToken string) (CookieDirective, error) {
	if m == nil || m.sessions == nil {
		return CookieDirective{}, ErrManagerNotReady
	}
	clear := m.ClearCookie()

	claims, err := m.tokens.ParseRefresh(refreshToken)
	if err != nil {
		// Nothing to revoke server-side.
		m.metricInc(MetricLogout)
		m.emitAudit(ctx, auditEventLogoutSession, true, "", "", nil, func() map[string]string {
			return map[string]string{
				"reason": "unparseable_token",
			}
		})
		return clear, nil
	}

	if err := m.LogoutFamily(ctx, claims.FamilyID); err != nil {
		return clear, err
	}

	m.metricInc(MetricLogout)
	m.emitAudit(ctx, auditEventLogoutSession, true, claims.Subject, claims.FamilyID, nil, nil)

	return clear, nil
}

// LogoutFamily revokes one session family directly, for callers that track
// family IDs (admin tooling, session management UIs). Idempotent.
func (m *Manager) LogoutFamily(ctx context.Context, familyID string) error {
	if m == nil || m.sessions == nil {
		return ErrManagerNotReady
	}
	if familyID == "" {
		return nil
	}

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()

	if err := m.sessions.Revoke(sctx, familyID); err != nil {
		return m.storeErr(err)
	}
	m.metricInc(MetricSessionRevoked)
	return nil
}

// LogoutAll revokes every active session family of a user. Used for
// "log out everywhere" and after password changes.
func (m *Manager) LogoutAll(ctx context.Context, userID string) error {
	if m == nil || m.sessions == nil {
		return ErrManagerNotReady
	}

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()

	if err := m.sessions.RevokeAllForUser(sctx, userID); err != nil {
		return m.storeErr(err)
	}

	m.metricInc(MetricLogoutAll)
	m.emitAudit(ctx, auditEventLogoutAll, true, userID, "", nil, nil)

	return nil
}
