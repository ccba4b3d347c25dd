package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/repositories"
)

// Mock repositories for service-level tests. Each method delegates to an
// overridable function stub and records the call; stubs left nil return
// zero values. The Calls map is guarded so concurrency tests can assert on
// it safely.

type callLog struct {
	mu    sync.Mutex
	calls map[string][]interface{}
}

func newCallLog() *callLog {
	return &callLog{calls: make(map[string][]interface{})}
}

func (l *callLog) record(name string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[name] = append(l.calls[name], args)
}

// CallCount returns how many times the named method was invoked
func (l *callLog) CallCount(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls[name])
}

// AccountRepository is a mock implementation of repositories.AccountRepository
type AccountRepository struct {
	*callLog
	CreateFunc             func(ctx context.Context, account *models.AdminAccount) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.AdminAccount, error)
	ListFunc               func(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error)
	CountFunc              func(ctx context.Context) (int64, error)
	UpdatePasswordHashFunc func(ctx context.Context, id uuid.UUID, hash string) error
	UpdateStatusFunc       func(ctx context.Context, id uuid.UUID, from, to models.AccountStatus) (bool, error)
	RecordLoginSuccessFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
	RecordLoginFailureFunc func(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (int32, bool, error)
}

// NewAccountRepository creates a new mock account repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{callLog: newCallLog()}
}

func (m *AccountRepository) Create(ctx context.Context, account *models.AdminAccount) error {
	m.record("Create", account)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil
}

func (m *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error) {
	m.record("GetByID", id)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	m.record("GetByEmail", email)
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error) {
	m.record("List", limit, offset)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *AccountRepository) Count(ctx context.Context) (int64, error) {
	m.record("Count")
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *AccountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	m.record("UpdatePasswordHash", id, hash)
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, id, hash)
	}
	return nil
}

func (m *AccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.AccountStatus) (bool, error) {
	m.record("UpdateStatus", id, from, to)
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *AccountRepository) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.record("RecordLoginSuccess", id, at)
	if m.RecordLoginSuccessFunc != nil {
		return m.RecordLoginSuccessFunc(ctx, id, at)
	}
	return nil
}

func (m *AccountRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (int32, bool, error) {
	m.record("RecordLoginFailure", id, threshold, lockUntil)
	if m.RecordLoginFailureFunc != nil {
		return m.RecordLoginFailureFunc(ctx, id, threshold, lockUntil)
	}
	return 1, false, nil
}

var _ repositories.AccountRepository = (*AccountRepository)(nil)

// RoleRepository is a mock implementation of repositories.RoleRepository
type RoleRepository struct {
	*callLog
	GetByNameFunc          func(ctx context.Context, name string) (*models.AdminRole, error)
	GetByIDFunc            func(ctx context.Context, id int32) (*models.AdminRole, error)
	PermissionsForRoleFunc func(ctx context.Context, roleID int32) ([]string, error)
}

// NewRoleRepository creates a new mock role repository
func NewRoleRepository() *RoleRepository {
	return &RoleRepository{callLog: newCallLog()}
}

func (m *RoleRepository) GetByName(ctx context.Context, name string) (*models.AdminRole, error) {
	m.record("GetByName", name)
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *RoleRepository) GetByID(ctx context.Context, id int32) (*models.AdminRole, error) {
	m.record("GetByID", id)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *RoleRepository) PermissionsForRole(ctx context.Context, roleID int32) ([]string, error) {
	m.record("PermissionsForRole", roleID)
	if m.PermissionsForRoleFunc != nil {
		return m.PermissionsForRoleFunc(ctx, roleID)
	}
	return nil, nil
}

var _ repositories.RoleRepository = (*RoleRepository)(nil)

// SessionRepository is a mock implementation of repositories.SessionRepository
type SessionRepository struct {
	*callLog
	CreateFunc                  func(ctx context.Context, session *models.AdminSession) error
	FindActiveByTokenHashFunc   func(ctx context.Context, tokenHash string, now time.Time) (*models.AdminSession, error)
	FindActiveByRefreshHashFunc func(ctx context.Context, refreshHash string) (*models.AdminSession, error)
	UpdateTokensFunc            func(ctx context.Context, id uuid.UUID, tokenHash, refreshHash string, expiresAt time.Time) error
	TouchFunc                   func(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeFunc                  func(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	RevokeAllForAccountFunc     func(ctx context.Context, accountID uuid.UUID, except *uuid.UUID, reason string) (int64, error)
	DeleteExpiredFunc           func(ctx context.Context, before time.Time) (int64, error)
}

// NewSessionRepository creates a new mock session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{callLog: newCallLog()}
}

func (m *SessionRepository) Create(ctx context.Context, session *models.AdminSession) error {
	m.record("Create", session)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *SessionRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.AdminSession, error) {
	m.record("FindActiveByTokenHash", tokenHash)
	if m.FindActiveByTokenHashFunc != nil {
		return m.FindActiveByTokenHashFunc(ctx, tokenHash, now)
	}
	return nil, nil
}

func (m *SessionRepository) FindActiveByRefreshHash(ctx context.Context, refreshHash string) (*models.AdminSession, error) {
	m.record("FindActiveByRefreshHash", refreshHash)
	if m.FindActiveByRefreshHashFunc != nil {
		return m.FindActiveByRefreshHashFunc(ctx, refreshHash)
	}
	return nil, nil
}

func (m *SessionRepository) UpdateTokens(ctx context.Context, id uuid.UUID, tokenHash, refreshHash string, expiresAt time.Time) error {
	m.record("UpdateTokens", id, tokenHash, refreshHash)
	if m.UpdateTokensFunc != nil {
		return m.UpdateTokensFunc(ctx, id, tokenHash, refreshHash, expiresAt)
	}
	return nil
}

func (m *SessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.record("Touch", id)
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, id, at)
	}
	return nil
}

func (m *SessionRepository) Revoke(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	m.record("Revoke", id, reason)
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id, reason)
	}
	return true, nil
}

func (m *SessionRepository) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID, except *uuid.UUID, reason string) (int64, error) {
	m.record("RevokeAllForAccount", accountID, except, reason)
	if m.RevokeAllForAccountFunc != nil {
		return m.RevokeAllForAccountFunc(ctx, accountID, except, reason)
	}
	return 0, nil
}

func (m *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.record("DeleteExpired", before)
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, before)
	}
	return 0, nil
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// InvitationRepository is a mock implementation of repositories.InvitationRepository
type InvitationRepository struct {
	*callLog
	CreateFunc                func(ctx context.Context, invitation *models.AdminInvitation) error
	RevokePendingForEmailFunc func(ctx context.Context, email string) (int64, error)
	ConsumeFunc               func(ctx context.Context, tokenHash string, at time.Time) (*models.AdminInvitation, error)
	ListPendingFunc           func(ctx context.Context, limit, offset int) ([]*models.AdminInvitation, error)
	MarkExpiredFunc           func(ctx context.Context, before time.Time) (int64, error)
}

// NewInvitationRepository creates a new mock invitation repository
func NewInvitationRepository() *InvitationRepository {
	return &InvitationRepository{callLog: newCallLog()}
}

func (m *InvitationRepository) Create(ctx context.Context, invitation *models.AdminInvitation) error {
	m.record("Create", invitation)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, invitation)
	}
	return nil
}

func (m *InvitationRepository) RevokePendingForEmail(ctx context.Context, email string) (int64, error) {
	m.record("RevokePendingForEmail", email)
	if m.RevokePendingForEmailFunc != nil {
		return m.RevokePendingForEmailFunc(ctx, email)
	}
	return 0, nil
}

func (m *InvitationRepository) Consume(ctx context.Context, tokenHash string, at time.Time) (*models.AdminInvitation, error) {
	m.record("Consume", tokenHash)
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, tokenHash, at)
	}
	return nil, nil
}

func (m *InvitationRepository) ListPending(ctx context.Context, limit, offset int) ([]*models.AdminInvitation, error) {
	m.record("ListPending", limit, offset)
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *InvitationRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	m.record("MarkExpired", before)
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, before)
	}
	return 0, nil
}

var _ repositories.InvitationRepository = (*InvitationRepository)(nil)

// PasswordResetRepository is a mock implementation of repositories.PasswordResetRepository
type PasswordResetRepository struct {
	*callLog
	CreateFunc      func(ctx context.Context, reset *models.PasswordReset) error
	ConsumeFunc     func(ctx context.Context, tokenHash string, at time.Time) (*models.PasswordReset, error)
	MarkExpiredFunc func(ctx context.Context, before time.Time) (int64, error)
}

// NewPasswordResetRepository creates a new mock password reset repository
func NewPasswordResetRepository() *PasswordResetRepository {
	return &PasswordResetRepository{callLog: newCallLog()}
}

func (m *PasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	m.record("Create", reset)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reset)
	}
	return nil
}

func (m *PasswordResetRepository) Consume(ctx context.Context, tokenHash string, at time.Time) (*models.PasswordReset, error) {
	m.record("Consume", tokenHash)
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, tokenHash, at)
	}
	return nil, nil
}

func (m *PasswordResetRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	m.record("MarkExpired", before)
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, before)
	}
	return 0, nil
}

var _ repositories.PasswordResetRepository = (*PasswordResetRepository)(nil)

// AuditRepository is a mock implementation of repositories.AuditRepository
type AuditRepository struct {
	*callLog
	CreateFunc func(ctx context.Context, record *models.AuditRecord) error
	QueryFunc  func(ctx context.Context, q models.AuditQuery) ([]*models.AuditRecord, error)

	mu      sync.Mutex
	Records []*models.AuditRecord
}

// NewAuditRepository creates a new mock audit repository that additionally
// retains appended records for assertions
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{callLog: newCallLog()}
}

func (m *AuditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	m.record("Create", record)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	m.mu.Lock()
	m.Records = append(m.Records, record)
	m.mu.Unlock()
	return nil
}

func (m *AuditRepository) Query(ctx context.Context, q models.AuditQuery) ([]*models.AuditRecord, error) {
	m.record("Query", q)
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AuditRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

// Actions returns the appended action names in order
func (m *AuditRepository) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.Records))
	for _, rec := range m.Records {
		actions = append(actions, rec.Action)
	}
	return actions
}

var _ repositories.AuditRepository = (*AuditRepository)(nil)
