package authcore

import (
	"context"
	"errors"

	"github.com/smartshield/authcore/session"
	"github.com/smartshield/authcore/token"
)

// Refresh exchanges a valid refresh token for a fresh token pair, rotating
// the session family to the new token ID.
//
// A replayed token that was already rotated out terminates the whole
// family and returns [ErrTokenReuse]: once a superseded token shows up
// there is no way to tell the legitimate client from a thief, so neither
// keeps the session. A caller that merely lost a race between two
// simultaneous refreshes of the current token gets [ErrConcurrentRefresh]
// and should retry.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if m == nil || m.sessions == nil {
		return nil, ErrManagerNotReady
	}

	claims, err := m.tokens.ParseRefresh(refreshToken)
	if err != nil {
		err = mapTokenErr(err)
		m.metricInc(MetricRefreshFailure)
		m.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", err, nil)
		return nil, err
	}
	userID := claims.Subject
	familyID := claims.FamilyID
	presentedID := claims.ID

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()

	rec, err := m.sessions.Lookup(sctx, familyID)
	if err != nil {
		err = m.mapSessionErr(err)
		m.metricInc(MetricRefreshFailure)
		m.emitAudit(ctx, auditEventRefreshInvalid, false, userID, familyID, err, nil)
		return nil, err
	}

	if rec.Revoked {
		m.metricInc(MetricRefreshFailure)
		m.emitAudit(ctx, auditEventRefreshInvalid, false, userID, familyID, ErrSessionRevoked, nil)
		return nil, ErrSessionRevoked
	}

	if rec.CurrentTokenID != presentedID {
		// The presented token was already rotated out. Kill the family.
		if err := m.sessions.Revoke(sctx, familyID); err != nil {
			return nil, m.mapSessionErr(err)
		}
		m.metricInc(MetricRefreshReuseDetected)
		m.metricInc(MetricSessionRevoked)
		m.emitAudit(ctx, auditEventRefreshReuseDetected, false, userID, familyID, ErrTokenReuse, func() map[string]string {
			return map[string]string{
				"presented_jti": presentedID,
			}
		})
		return nil, ErrTokenReuse
	}

	nextID, refreshStr, err := m.tokens.IssueRefresh(userID, familyID)
	if err != nil {
		m.metricInc(MetricRefreshFailure)
		return nil, err
	}

	rec, err = m.sessions.Rotate(sctx, familyID, presentedID, nextID)
	if err != nil {
		// The lookup above saw presentedID as current, so a mismatch here
		// means another refresh rotated the family in between. A replayed
		// token racing the legitimate one can land in this branch too; its
		// retry is then caught by the reuse check.
		if errors.Is(err, session.ErrTokenMismatch) {
			m.metricInc(MetricRefreshConflict)
			m.emitAudit(ctx, auditEventRefreshConflict, false, userID, familyID, ErrConcurrentRefresh, nil)
			return nil, ErrConcurrentRefresh
		}
		err = m.mapSessionErr(err)
		m.metricInc(MetricRefreshFailure)
		m.emitAudit(ctx, auditEventRefreshInvalid, false, userID, familyID, err, nil)
		return nil, err
	}

	accessStr, err := m.tokens.IssueAccess(rec.UserID, rec.Role)
	if err != nil {
		m.metricInc(MetricRefreshFailure)
		return nil, err
	}

	m.metricInc(MetricRefreshSuccess)
	m.emitAudit(ctx, auditEventRefreshSuccess, true, rec.UserID, familyID, nil, nil)

	cookie := m.RefreshCookie(refreshStr)
	return &AuthResult{
		Success:     true,
		Message:     "Token refreshed successfully",
		AccessToken: accessStr,
		User: &UserInfo{
			ID:   rec.UserID,
			Role: rec.Role,
		},
		Cookie:   &cookie,
		FamilyID: familyID,
	}, nil
}

// mapTokenErr translates token codec sentinels into the public taxonomy.
func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrWrongKind):
		return ErrWrongTokenKind
	default:
		return ErrTokenInvalid
	}
}

// mapSessionErr translates session store sentinels into the public
// taxonomy, folding transport failures into ErrStoreUnavailable.
func (m *Manager) mapSessionErr(err error) error {
	switch {
	case errors.Is(err, session.ErrFamilyNotFound),
		errors.Is(err, session.ErrFamilyExpired):
		return ErrSessionNotFound
	case errors.Is(err, session.ErrFamilyRevoked):
		return ErrSessionRevoked
	default:
		return m.storeErr(err)
	}
}
