package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Signup registers a new account and immediately opens a session for it,
// so a successful signup behaves like a login.
func (m *Manager) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	if m == nil || m.userProvider == nil {
		return nil, ErrManagerNotReady
	}

	if err := m.validateSignup(req); err != nil {
		m.metricInc(MetricSignupFailure)
		m.emitAudit(ctx, auditEventSignupFailure, false, "", "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Email,
				"reason":     "validation",
			}
		})
		return nil, err
	}

	hash, err := m.passwords.Hash(req.Password)
	if err != nil {
		m.metricInc(MetricSignupFailure)
		return nil, err
	}
	req.Password = ""

	user, err := m.userProvider.CreateUser(ctx, CreateUserInput{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:   hash,
		Name:           strings.TrimSpace(req.Name),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		ManagementCode: strings.TrimSpace(req.ManagementCode),
		Role:           m.config.Account.DefaultRole,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			m.metricInc(MetricSignupDuplicate)
			m.emitAudit(ctx, auditEventSignupDuplicate, false, "", "", err, func() map[string]string {
				return map[string]string{
					"identifier": req.Email,
				}
			})
			return nil, ErrEmailExists
		}
		m.metricInc(MetricSignupFailure)
		m.emitAudit(ctx, auditEventSignupFailure, false, "", "", err, nil)
		return nil, err
	}

	result, err := m.openSession(ctx, user)
	if err != nil {
		// The account exists but no session could be opened. Surface the
		// store error; the client can recover by logging in.
		m.metricInc(MetricSignupFailure)
		m.emitAudit(ctx, auditEventSignupFailure, false, user.UserID, "", err, nil)
		return nil, err
	}
	result.Message = "User registered successfully"

	m.metricInc(MetricSignupSuccess)
	m.emitAudit(ctx, auditEventSignupSuccess, true, user.UserID, result.FamilyID, nil, nil)

	return result, nil
}

func (m *Manager) validateSignup(req SignupRequest) error {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email required", ErrValidationFailed)
	}
	if len(req.Password) < m.config.Account.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrValidationFailed, m.config.Account.MinPasswordLength)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidationFailed)
	}
	return nil
}
