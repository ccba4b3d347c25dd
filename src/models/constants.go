package models

// AccountStatus represents the lifecycle state of an admin account
type AccountStatus string

const (
	// AccountStatusPending indicates the account was invited but not yet activated
	AccountStatusPending AccountStatus = "pending"
	// AccountStatusActive indicates the account can authenticate
	AccountStatusActive AccountStatus = "active"
	// AccountStatusDisabled indicates the account is soft-disabled; all sessions are invalid
	AccountStatusDisabled AccountStatus = "disabled"
)

// TokenStatus represents the state of a single-use credential token
type TokenStatus string

const (
	// TokenStatusPending is the only state a token can be consumed from
	TokenStatusPending TokenStatus = "pending"
	// TokenStatusAccepted marks a consumed invitation
	TokenStatusAccepted TokenStatus = "accepted"
	// TokenStatusUsed marks a consumed password-reset token
	TokenStatusUsed TokenStatus = "used"
	// TokenStatusExpired marks a token past its TTL
	TokenStatusExpired TokenStatus = "expired"
	// TokenStatusRevoked marks a token superseded or withdrawn before use
	TokenStatusRevoked TokenStatus = "revoked"
)

// Seeded role names. Roles are administered out of band; the core only
// resolves them to permission sets.
const (
	RoleSuperAdmin = "super_admin"
	RoleModerator  = "moderator"
	RoleSupport    = "support"
)

// Permission catalog names referenced by the core. There is no implicit
// superuser bypass; super_admin holds explicit entries for each of these.
const (
	PermAdminInvite    = "admin.invite"
	PermAccountsManage = "admin.accounts.manage"
	PermSessionsRevoke = "admin.sessions.revoke"
	PermAuditView      = "audit.view"
	PermContentPublish = "content.publish"
	PermUsersSuspend   = "users.suspend"
)

// Audit action names
const (
	ActionLogin                  = "admin_login"
	ActionLoginFailed            = "admin_login_failed"
	ActionLogout                 = "admin_logout"
	ActionTokenRefreshed         = "admin_token_refreshed"
	ActionPasswordChanged        = "admin_password_changed"
	ActionPasswordResetRequested = "admin_password_reset_requested"
	ActionPasswordResetCompleted = "admin_password_reset_completed"
	ActionInvitationSent         = "admin_invitation_sent"
	ActionInvitationAccepted     = "admin_invitation_accepted"
	ActionAccountCreated         = "admin_account_created"
	ActionAccountLocked          = "admin_account_locked"
	ActionAccountStatusChanged   = "admin_account_status_changed"
	ActionSessionRevoked         = "admin_session_revoked"
)

// Audit severities
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)
