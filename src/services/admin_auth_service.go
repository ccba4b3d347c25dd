package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nestling-app/nestling-server/src/logging"
	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/repositories"
)

// tokenTypeRefresh marks refresh tokens in the signed claims so an access
// endpoint can never be driven with a refresh token and vice versa.
const tokenTypeRefresh = "refresh"

// dummyPasswordHash is a structurally valid bcrypt hash compared against when
// login hits an unknown email, so the response time does not reveal whether
// the account exists.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AdminAuthConfig carries the tunable security parameters of the orchestrator
type AdminAuthConfig struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
	InvitationTTL    time.Duration
	ResetTokenTTL    time.Duration
	ConsoleBaseURL   string
}

// LoginResult is the outcome of a successful login or token refresh
type LoginResult struct {
	Account      *models.AdminAccount `json:"account"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	ExpiresAt    time.Time            `json:"expires_at"`
}

// AdminAuthService orchestrates the administrative authentication flows:
// login with lockout, session issue and refresh, invitations, password
// change and reset, and account status management. Every state-changing flow
// writes to the audit log; for the security-critical ones a failed audit
// write fails the whole operation.
type AdminAuthService struct {
	accounts    repositories.AccountRepository
	roles       repositories.RoleRepository
	sessions    repositories.SessionRepository
	invitations repositories.InvitationRepository
	resets      repositories.PasswordResetRepository

	passwords *PasswordService
	access    *TokenService
	refresh   *TokenService
	audit     *AuditService
	mailer    Mailer

	cfg AdminAuthConfig
	now func() time.Time
	log zerolog.Logger
}

// NewAdminAuthService wires the orchestrator. access and refresh are the two
// token services of the admin realm; their policies fix the token lifetimes.
func NewAdminAuthService(
	accounts repositories.AccountRepository,
	roles repositories.RoleRepository,
	sessions repositories.SessionRepository,
	invitations repositories.InvitationRepository,
	resets repositories.PasswordResetRepository,
	passwords *PasswordService,
	access, refresh *TokenService,
	audit *AuditService,
	mailer Mailer,
	cfg AdminAuthConfig,
) *AdminAuthService {
	if cfg.LockoutThreshold <= 0 {
		cfg.LockoutThreshold = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	return &AdminAuthService{
		accounts:    accounts,
		roles:       roles,
		sessions:    sessions,
		invitations: invitations,
		resets:      resets,
		passwords:   passwords,
		access:      access,
		refresh:     refresh,
		audit:       audit,
		mailer:      mailer,
		cfg:         cfg,
		now:         time.Now,
		log:         logging.NewLogger("admin-auth"),
	}
}

// WithClock returns a copy of the service using the given clock. The token
// services keep their own clocks; tests inject the same function into both.
func (s *AdminAuthService) WithClock(now func() time.Time) *AdminAuthService {
	clone := *s
	clone.now = now
	return &clone
}

// Login verifies credentials and issues a session token pair. Unknown email
// and wrong password collapse into the same ErrInvalidCredentials; repeated
// failures lock the account for the configured window.
func (s *AdminAuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	email = normalizeEmail(email)
	now := s.now()

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, transient("load account", err)
	}
	if account == nil {
		// Burn the same bcrypt cost as a real comparison
		_, _ = s.passwords.Verify(password, dummyPasswordHash)
		s.audit.RecordBestEffort(ctx, AuditEntry{
			Action:    models.ActionLoginFailed,
			Target:    email,
			Severity:  models.SeverityWarning,
			Metadata:  map[string]interface{}{"reason": "unknown_email"},
			IPAddress: ip,
			UserAgent: userAgent,
		})
		return nil, ErrInvalidCredentials
	}

	if account.IsLocked(now) {
		s.auditLoginFailure(ctx, account, "locked", ip, userAgent)
		return nil, ErrAccountLocked
	}

	ok, err := s.passwords.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		attempts, locked, err := s.accounts.RecordLoginFailure(ctx, account.ID, s.cfg.LockoutThreshold, now.Add(s.cfg.LockoutDuration))
		if err != nil {
			return nil, transient("record login failure", err)
		}
		s.auditLoginFailure(ctx, account, "bad_password", ip, userAgent)
		if locked {
			s.audit.RecordBestEffort(ctx, AuditEntry{
				ActorID:   &account.ID,
				Action:    models.ActionAccountLocked,
				Target:    account.Email,
				Severity:  models.SeverityError,
				Metadata:  map[string]interface{}{"failed_attempts": attempts},
				IPAddress: ip,
				UserAgent: userAgent,
			})
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	// Only a correct password learns that the account is not active
	if account.Status != models.AccountStatusActive {
		s.auditLoginFailure(ctx, account, "not_active", ip, userAgent)
		return nil, ErrAccountDisabled
	}

	if err := s.accounts.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		return nil, transient("record login success", err)
	}
	account.LoginCount++
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	account.LastLoginAt = &now

	result, err := s.issueSession(ctx, account, ip, userAgent)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionLogin,
		Target:    account.Email,
		Severity:  models.SeverityInfo,
		IPAddress: ip,
		UserAgent: userAgent,
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// Refresh redeems a refresh token for a fresh token pair, rotating the
// session's stored hashes. A refresh token minted before the account's most
// recent login is a replay and revokes the session it names.
func (s *AdminAuthService) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*LoginResult, error) {
	claims, err := s.refresh.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	now := s.now()
	session, err := s.sessions.FindActiveByRefreshHash(ctx, HashToken(refreshToken))
	if err != nil {
		return nil, transient("load session", err)
	}
	if session == nil {
		return nil, ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		return nil, transient("load account", err)
	}
	if account == nil {
		return nil, ErrInvalidToken
	}
	if account.IsLocked(now) {
		return nil, ErrAccountLocked
	}
	if account.Status != models.AccountStatusActive {
		return nil, ErrAccountDisabled
	}

	if claims.LoginCount != account.LoginCount {
		// The account logged in again since this token was minted
		if _, err := s.sessions.Revoke(ctx, session.ID, "stale refresh token"); err != nil {
			return nil, transient("revoke session", err)
		}
		s.log.Warn().
			Str("account_id", account.ID.String()).
			Str("session_id", session.ID.String()).
			Msg("Refresh token replay detected")
		return nil, ErrInvalidToken
	}

	accessToken, newRefresh, err := s.mintTokenPair(account, session.ID)
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.access.TTL())
	if err := s.sessions.UpdateTokens(ctx, session.ID, HashToken(accessToken), HashToken(newRefresh), expiresAt); err != nil {
		return nil, transient("rotate session tokens", err)
	}

	s.audit.RecordBestEffort(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionTokenRefreshed,
		Target:    account.Email,
		Severity:  models.SeverityInfo,
		IPAddress: ip,
		UserAgent: userAgent,
	})

	return &LoginResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// AuthenticateAccessToken resolves a presented bearer token to its account
// and session. The signed claims, the server-side session row, and the live
// account status must all agree.
func (s *AdminAuthService) AuthenticateAccessToken(ctx context.Context, rawToken string) (*models.AdminAccount, *models.AdminSession, error) {
	claims, err := s.access.Verify(rawToken)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	if claims.TokenType == tokenTypeRefresh {
		return nil, nil, ErrInvalidToken
	}

	now := s.now()
	session, err := s.sessions.FindActiveByTokenHash(ctx, HashToken(rawToken), now)
	if err != nil {
		return nil, nil, transient("load session", err)
	}
	if session == nil {
		return nil, nil, ErrInvalidToken
	}
	if claims.SessionHash != "" && claims.SessionHash != session.ID.String() {
		return nil, nil, ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		return nil, nil, transient("load account", err)
	}
	if account == nil || account.Status != models.AccountStatusActive {
		return nil, nil, ErrAccountDisabled
	}

	if err := s.sessions.Touch(ctx, session.ID, now); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to touch session")
	}
	return account, session, nil
}

// Logout revokes the calling session
func (s *AdminAuthService) Logout(ctx context.Context, account *models.AdminAccount, sessionID uuid.UUID, ip, userAgent string) error {
	if _, err := s.sessions.Revoke(ctx, sessionID, "logout"); err != nil {
		return transient("revoke session", err)
	}
	s.audit.RecordBestEffort(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionLogout,
		Target:    account.Email,
		Severity:  models.SeverityInfo,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return nil
}

// Invite issues a single-use invitation for an email and role, superseding
// any pending invitation for the same email, and sends the invitation email.
// A send failure does not void the invitation; re-inviting resends it.
func (s *AdminAuthService) Invite(ctx context.Context, actor *models.AdminAccount, email, roleName, ip, userAgent string) (*models.AdminInvitation, error) {
	email = normalizeEmail(email)
	now := s.now()

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, transient("load role", err)
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, transient("load account", err)
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	if _, err := s.invitations.RevokePendingForEmail(ctx, email); err != nil {
		return nil, transient("supersede invitations", err)
	}

	rawToken, err := NewRawToken()
	if err != nil {
		return nil, err
	}
	invitation := &models.AdminInvitation{
		ID:        uuid.New(),
		Email:     email,
		TokenHash: HashToken(rawToken),
		RoleID:    role.ID,
		RoleName:  role.Name,
		InvitedBy: actor.ID,
		Status:    models.TokenStatusPending,
		ExpiresAt: now.Add(s.cfg.InvitationTTL),
		CreatedAt: now,
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, transient("create invitation", err)
	}

	if err := s.audit.Record(ctx, AuditEntry{
		ActorID:   &actor.ID,
		Action:    models.ActionInvitationSent,
		Target:    email,
		Severity:  models.SeverityInfo,
		Metadata:  map[string]interface{}{"role": role.Name},
		IPAddress: ip,
		UserAgent: userAgent,
	}); err != nil {
		return nil, err
	}

	acceptLink := fmt.Sprintf("%s/admin/invitations/accept?token=%s", strings.TrimSuffix(s.cfg.ConsoleBaseURL, "/"), rawToken)
	days := int(s.cfg.InvitationTTL.Hours() / 24)
	if err := s.mailer.SendInvitationEmail(ctx, email, role.DisplayName, acceptLink, days); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to send invitation email")
	}

	return invitation, nil
}

// ListPendingInvitations returns outstanding invitations
func (s *AdminAuthService) ListPendingInvitations(ctx context.Context, limit, offset int) ([]*models.AdminInvitation, error) {
	invitations, err := s.invitations.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, transient("list invitations", err)
	}
	return invitations, nil
}

// AcceptInvitation redeems an invitation token, creating an active account
// with the invited role. The token is consumed atomically; a second accept
// with the same token fails no matter how the calls interleave.
func (s *AdminAuthService) AcceptInvitation(ctx context.Context, rawToken, password, ip, userAgent string) (*models.AdminAccount, error) {
	if err := s.passwords.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}
	now := s.now()

	invitation, err := s.invitations.Consume(ctx, HashToken(rawToken), now)
	if err != nil {
		return nil, transient("consume invitation", err)
	}
	if invitation == nil {
		return nil, ErrInvalidToken
	}

	existing, err := s.accounts.GetByEmail(ctx, invitation.Email)
	if err != nil {
		return nil, transient("load account", err)
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	account := &models.AdminAccount{
		ID:           uuid.New(),
		Email:        invitation.Email,
		PasswordHash: hash,
		Status:       models.AccountStatusActive,
		RoleID:       invitation.RoleID,
		RoleName:     invitation.RoleName,
		CreatedBy:    &invitation.InvitedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, transient("create account", err)
	}

	if err := s.audit.Record(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionInvitationAccepted,
		Target:    account.Email,
		Severity:  models.SeverityInfo,
		Metadata:  map[string]interface{}{"role": account.RoleName, "invited_by": invitation.InvitedBy.String()},
		IPAddress: ip,
		UserAgent: userAgent,
	}); err != nil {
		return nil, err
	}
	return account, nil
}

// ChangePassword verifies the current password, applies the new one, and
// revokes every other session of the account. The calling session survives.
func (s *AdminAuthService) ChangePassword(ctx context.Context, account *models.AdminAccount, currentSessionID uuid.UUID, currentPassword, newPassword, ip, userAgent string) error {
	ok, err := s.passwords.Verify(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	if err := s.passwords.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return transient("update password", err)
	}
	if _, err := s.sessions.RevokeAllForAccount(ctx, account.ID, &currentSessionID, "password_changed"); err != nil {
		return transient("revoke sessions", err)
	}

	return s.audit.Record(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionPasswordChanged,
		Target:    account.Email,
		Severity:  models.SeverityWarning,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// RequestPasswordReset issues a single-use reset token and emails it. The
// response is identical whether or not the email maps to an account.
func (s *AdminAuthService) RequestPasswordReset(ctx context.Context, email, ip, userAgent string) error {
	email = normalizeEmail(email)
	now := s.now()

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return transient("load account", err)
	}
	if account == nil || account.Status != models.AccountStatusActive {
		// Same outcome as the real flow, minus the email
		return nil
	}

	rawToken, err := NewRawToken()
	if err != nil {
		return err
	}
	reset := &models.PasswordReset{
		ID:        uuid.New(),
		AccountID: account.ID,
		TokenHash: HashToken(rawToken),
		Status:    models.TokenStatusPending,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return transient("create password reset", err)
	}

	s.audit.RecordBestEffort(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionPasswordResetRequested,
		Target:    account.Email,
		Severity:  models.SeverityInfo,
		IPAddress: ip,
		UserAgent: userAgent,
	})

	resetLink := fmt.Sprintf("%s/admin/password-reset/confirm?token=%s", strings.TrimSuffix(s.cfg.ConsoleBaseURL, "/"), rawToken)
	minutes := int(s.cfg.ResetTokenTTL.Minutes())
	if err := s.mailer.SendPasswordResetEmail(ctx, account.Email, resetLink, minutes); err != nil {
		s.log.Error().Err(err).Str("email", account.Email).Msg("failed to send password reset email")
	}
	return nil
}

// ConfirmPasswordReset redeems a reset token, sets the new password, and
// revokes every session of the account
func (s *AdminAuthService) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword, ip, userAgent string) error {
	if err := s.passwords.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	now := s.now()

	reset, err := s.resets.Consume(ctx, HashToken(rawToken), now)
	if err != nil {
		return transient("consume password reset", err)
	}
	if reset == nil {
		return ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, reset.AccountID)
	if err != nil {
		return transient("load account", err)
	}
	if account == nil {
		return ErrInvalidToken
	}
	if account.Status != models.AccountStatusActive {
		return ErrAccountDisabled
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return transient("update password", err)
	}
	if _, err := s.sessions.RevokeAllForAccount(ctx, account.ID, nil, "password_reset"); err != nil {
		return transient("revoke sessions", err)
	}

	return s.audit.Record(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionPasswordResetCompleted,
		Target:    account.Email,
		Severity:  models.SeverityWarning,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// SetAccountStatus applies a status transition. Disabling revokes every
// session of the target account in the same operation.
func (s *AdminAuthService) SetAccountStatus(ctx context.Context, actor *models.AdminAccount, accountID uuid.UUID, to models.AccountStatus, ip, userAgent string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return transient("load account", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if !models.ValidStatusTransition(account.Status, to) {
		return ErrInvalidTransition
	}

	applied, err := s.accounts.UpdateStatus(ctx, accountID, account.Status, to)
	if err != nil {
		return transient("update status", err)
	}
	if !applied {
		return ErrInvalidTransition
	}

	if to == models.AccountStatusDisabled {
		if _, err := s.sessions.RevokeAllForAccount(ctx, accountID, nil, "account_disabled"); err != nil {
			return transient("revoke sessions", err)
		}
	}

	return s.audit.Record(ctx, AuditEntry{
		ActorID:   &actor.ID,
		Action:    models.ActionAccountStatusChanged,
		Target:    account.Email,
		Severity:  models.SeverityWarning,
		Metadata:  map[string]interface{}{"from": string(account.Status), "to": string(to)},
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// RevokeSession revokes one session by id on behalf of an operator
func (s *AdminAuthService) RevokeSession(ctx context.Context, actor *models.AdminAccount, sessionID uuid.UUID, ip, userAgent string) error {
	revoked, err := s.sessions.Revoke(ctx, sessionID, "revoked_by_admin")
	if err != nil {
		return transient("revoke session", err)
	}
	if !revoked {
		return ErrSessionNotFound
	}
	return s.audit.Record(ctx, AuditEntry{
		ActorID:   &actor.ID,
		Action:    models.ActionSessionRevoked,
		Target:    sessionID.String(),
		Severity:  models.SeverityWarning,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// ListAccounts returns a page of admin accounts with the total count
func (s *AdminAuthService) ListAccounts(ctx context.Context, limit, offset int) ([]*models.AdminAccount, int64, error) {
	accounts, err := s.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, transient("list accounts", err)
	}
	total, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, 0, transient("count accounts", err)
	}
	return accounts, total, nil
}

// BootstrapAdmin creates the first super_admin account when the account
// table is empty. Called once at startup; a populated table is a no-op.
func (s *AdminAuthService) BootstrapAdmin(ctx context.Context, email, password string) error {
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return transient("count accounts", err)
	}
	if count > 0 {
		return nil
	}

	email = normalizeEmail(email)
	if err := s.passwords.ValidatePasswordStrength(password); err != nil {
		return err
	}
	role, err := s.roles.GetByName(ctx, models.RoleSuperAdmin)
	if err != nil {
		return transient("load role", err)
	}
	if role == nil {
		return ErrRoleNotFound
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return err
	}
	now := s.now()
	account := &models.AdminAccount{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Status:       models.AccountStatusActive,
		RoleID:       role.ID,
		RoleName:     role.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return transient("create account", err)
	}

	s.log.Info().Str("email", email).Msg("Bootstrap admin account created")
	return s.audit.Record(ctx, AuditEntry{
		Action:   models.ActionAccountCreated,
		Target:   email,
		Severity: models.SeverityWarning,
		Metadata: map[string]interface{}{"bootstrap": true, "role": role.Name},
	})
}

func (s *AdminAuthService) issueSession(ctx context.Context, account *models.AdminAccount, ip, userAgent string) (*LoginResult, error) {
	now := s.now()
	sessionID := uuid.New()

	accessToken, refreshToken, err := s.mintTokenPair(account, sessionID)
	if err != nil {
		return nil, err
	}

	session := &models.AdminSession{
		ID:               sessionID,
		AccountID:        account.ID,
		TokenHash:        HashToken(accessToken),
		RefreshTokenHash: HashToken(refreshToken),
		IPAddress:        ip,
		UserAgent:        userAgent,
		ExpiresAt:        now.Add(s.access.TTL()),
		CreatedAt:        now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, transient("create session", err)
	}

	return &LoginResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *AdminAuthService) mintTokenPair(account *models.AdminAccount, sessionID uuid.UUID) (string, string, error) {
	subject := jwt.RegisteredClaims{Subject: account.ID.String()}
	accessToken, err := s.access.Issue(Claims{
		Role:             account.RoleName,
		SessionHash:      sessionID.String(),
		RegisteredClaims: subject,
	})
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.refresh.Issue(Claims{
		Role:             account.RoleName,
		SessionHash:      sessionID.String(),
		TokenType:        tokenTypeRefresh,
		LoginCount:       account.LoginCount,
		RegisteredClaims: subject,
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AdminAuthService) auditLoginFailure(ctx context.Context, account *models.AdminAccount, reason, ip, userAgent string) {
	s.audit.RecordBestEffort(ctx, AuditEntry{
		ActorID:   &account.ID,
		Action:    models.ActionLoginFailed,
		Target:    account.Email,
		Severity:  models.SeverityWarning,
		Metadata:  map[string]interface{}{"reason": reason},
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
