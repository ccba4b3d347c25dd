package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nestling-app/nestling-server/src/logging"
	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/repositories"
	"github.com/rs/zerolog"
)

// AuditEntry is the caller-facing shape of an audit record before encoding
type AuditEntry struct {
	ActorID   *uuid.UUID
	Action    string
	Target    string
	Severity  string
	Metadata  map[string]interface{}
	IPAddress string
	UserAgent string
}

// AuditService appends immutable records of security-relevant actions.
// Metadata blobs are optionally encrypted at rest. Record surfaces write
// failures to the caller; the orchestrator decides per action whether a
// failed audit write fails the parent operation.
type AuditService struct {
	repo repositories.AuditRepository
	enc  *Encryptor
	now  func() time.Time
	log  zerolog.Logger
}

// NewAuditService creates an audit service. enc may be nil (no encryption).
func NewAuditService(repo repositories.AuditRepository, enc *Encryptor) *AuditService {
	return &AuditService{
		repo: repo,
		enc:  enc,
		now:  time.Now,
		log:  logging.NewLogger("audit"),
	}
}

// Record persists one audit record. A failure is returned, never swallowed;
// security-critical callers treat it as a retryable fault of the parent
// operation.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) error {
	metadata, err := s.encodeMetadata(entry.Metadata)
	if err != nil {
		return err
	}
	record := &models.AuditRecord{
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		Target:    entry.Target,
		Severity:  entry.Severity,
		Metadata:  metadata,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return transient("append audit record", err)
	}
	return nil
}

// RecordBestEffort persists an audit record for actions where the parent
// operation must not fail on audit trouble; the failure still lands in the
// log sink with full context.
func (s *AuditService) RecordBestEffort(ctx context.Context, entry AuditEntry) {
	if err := s.Record(ctx, entry); err != nil {
		s.log.Error().Err(err).
			Str("action", entry.Action).
			Str("target", entry.Target).
			Msg("audit write failed")
	}
}

// Query returns matching audit records with metadata decrypted
func (s *AuditService) Query(ctx context.Context, q models.AuditQuery) ([]*models.AuditRecord, error) {
	records, err := s.repo.Query(ctx, q)
	if err != nil {
		return nil, transient("query audit log", err)
	}
	for _, rec := range records {
		plain, err := s.enc.Decrypt(rec.Metadata)
		if err == nil {
			rec.Metadata = plain
		}
	}
	return records, nil
}

func (s *AuditService) encodeMetadata(metadata map[string]interface{}) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit metadata: %w", err)
	}
	sealed, err := s.enc.Encrypt(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt audit metadata: %w", err)
	}
	return sealed, nil
}
