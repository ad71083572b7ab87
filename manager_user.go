package authcore

import (
	"context"
	"fmt"
)

// CurrentUser validates an access token and returns the principal it
// names. Stateless: no store round trip, so a revoked session's access
// token stays valid until it expires.
func (m *Manager) CurrentUser(_ context.Context, accessToken string) (Principal, error) {
	if m == nil || m.tokens == nil {
		return Principal{}, ErrManagerNotReady
	}

	claims, err := m.tokens.ParseAccess(accessToken)
	if err != nil {
		return Principal{}, mapTokenErr(err)
	}

	return Principal{
		UserID: claims.Subject,
		Role:   claims.Role,
	}, nil
}

// ChangePassword verifies the old password, stores a hash of the new one,
// and revokes every session of the account so stolen refresh tokens die
// with the old password.
func (m *Manager) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if m == nil || m.userProvider == nil {
		return ErrManagerNotReady
	}

	if len(newPassword) < m.config.Account.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrValidationFailed, m.config.Account.MinPasswordLength)
	}

	user, err := m.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	ok, err := m.passwords.Verify(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		m.metricInc(MetricPasswordChangeFailure)
		m.emitAudit(ctx, auditEventPasswordChangeFailure, false, user.UserID, "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	hash, err := m.passwords.Hash(newPassword)
	if err != nil {
		m.metricInc(MetricPasswordChangeFailure)
		return err
	}

	if err := m.userProvider.UpdatePasswordHash(ctx, user.UserID, hash); err != nil {
		m.metricInc(MetricPasswordChangeFailure)
		m.emitAudit(ctx, auditEventPasswordChangeFailure, false, user.UserID, "", err, nil)
		return err
	}

	if err := m.LogoutAll(ctx, user.UserID); err != nil {
		return err
	}

	m.metricInc(MetricPasswordChangeSuccess)
	m.emitAudit(ctx, auditEventPasswordChangeSuccess, true, user.UserID, "", nil, nil)

	return nil
}

// ActiveSessions lists the live session families of a user. Order is not
// guaranteed; callers sort as needed.
func (m *Manager) ActiveSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	if m == nil || m.sessions == nil {
		return nil, ErrManagerNotReady
	}

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()

	recs, err := m.sessions.ActiveFamilies(sctx, userID)
	if err != nil {
		return nil, m.storeErr(err)
	}

	infos := make([]SessionInfo, 0, len(recs))
	for _, rec := range recs {
		infos = append(infos, SessionInfo{
			FamilyID:      rec.FamilyID,
			CreatedAt:     rec.CreatedAt,
			LastRotatedAt: rec.LastRotatedAt,
			ExpiresAt:     rec.ExpiresAt,
		})
	}
	return infos, nil
}
