package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/repositories/mock"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAuditService_RecordEncryptsMetadata(t *testing.T) {
	repo := mock.NewAuditRepository()
	enc, err := NewEncryptor(testEncryptionKey)
	if err != nil {
		t.Fatalf("encryptor: %v", err)
	}
	svc := NewAuditService(repo, enc)

	actorID := uuid.New()
	err = svc.Record(context.Background(), AuditEntry{
		ActorID:  &actorID,
		Action:   models.ActionLogin,
		Target:   "account:" + actorID.String(),
		Severity: models.SeverityInfo,
		Metadata: map[string]interface{}{"role": "moderator"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(repo.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(repo.Records))
	}

	stored := repo.Records[0]
	if bytes.Contains(stored.Metadata, []byte("moderator")) {
		t.Error("metadata should not be stored in the clear")
	}

	// Query returns it decrypted
	records, err := svc.Query(context.Background(), models.AuditQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || !bytes.Contains(records[0].Metadata, []byte("moderator")) {
		t.Error("query should return decrypted metadata")
	}
}

func TestAuditService_NilEncryptorPassthrough(t *testing.T) {
	repo := mock.NewAuditRepository()
	svc := NewAuditService(repo, nil)

	err := svc.Record(context.Background(), AuditEntry{
		Action:   models.ActionAccountCreated,
		Target:   "account:bootstrap",
		Severity: models.SeverityInfo,
		Metadata: map[string]interface{}{"bootstrap": true},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !bytes.Contains(repo.Records[0].Metadata, []byte("bootstrap")) {
		t.Error("without a key the metadata is stored as plain JSON")
	}
}

func TestAuditService_RecordSurfacesWriteFailure(t *testing.T) {
	repo := mock.NewAuditRepository()
	repo.CreateFunc = func(_ context.Context, _ *models.AuditRecord) error {
		return errors.New("connection refused")
	}
	svc := NewAuditService(repo, nil)

	err := svc.Record(context.Background(), AuditEntry{
		Action: models.ActionLogin, Target: "account:x", Severity: models.SeverityInfo,
	})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestAuditService_RecordBestEffortSwallows(t *testing.T) {
	repo := mock.NewAuditRepository()
	repo.CreateFunc = func(_ context.Context, _ *models.AuditRecord) error {
		return errors.New("connection refused")
	}
	svc := NewAuditService(repo, nil)

	// Must not panic or propagate
	svc.RecordBestEffort(context.Background(), AuditEntry{
		Action: models.ActionLogout, Target: "account:x", Severity: models.SeverityInfo,
	})
	if repo.CallCount("Create") != 1 {
		t.Error("expected the write to be attempted")
	}
}
