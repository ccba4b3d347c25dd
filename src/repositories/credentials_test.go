package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nestling-app/nestling-server/src/database"
	"github.com/nestling-app/nestling-server/src/models"
)

func createInvitation(t *testing.T, tdb *database.TestDB, email string, invitedBy uuid.UUID, expiresAt time.Time) *models.AdminInvitation {
	t.Helper()
	ctx := context.Background()

	role, err := NewRoleRepository(tdb.Pool).GetByName(ctx, models.RoleModerator)
	if err != nil || role == nil {
		t.Fatalf("seeded role lookup failed: %v", err)
	}

	invitation := &models.AdminInvitation{
		ID:        uuid.New(),
		Email:     email,
		TokenHash: uuid.NewString(),
		RoleID:    role.ID,
		InvitedBy: invitedBy,
		Status:    models.TokenStatusPending,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := NewInvitationRepository(tdb.Pool).Create(ctx, invitation); err != nil {
		t.Fatalf("create invitation: %v", err)
	}
	return invitation
}

func TestInvitationRepository_ConsumeIsSingleUse(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewInvitationRepository(tdb.Pool)
		inviter := createAccount(t, tdb, "inviter@nestling.app")
		now := time.Now().UTC()
		invitation := createInvitation(t, tdb, "new@nestling.app", inviter.ID, now.Add(time.Hour))

		got, err := repo.Consume(ctx, invitation.TokenHash, now)
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if got == nil {
			t.Fatal("expected the pending invitation to consume")
		}
		if got.Status != models.TokenStatusAccepted {
			t.Errorf("status: got %s", got.Status)
		}
		if got.ConsumedAt == nil {
			t.Error("consumed_at should be set")
		}
		if got.RoleName != models.RoleModerator {
			t.Errorf("role name: got %q", got.RoleName)
		}

		// Second consume of the same token finds nothing
		got, err = repo.Consume(ctx, invitation.TokenHash, now)
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if got != nil {
			t.Error("a consumed token must not consume again")
		}
	})
}

func TestInvitationRepository_ConsumeExpired(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewInvitationRepository(tdb.Pool)
		inviter := createAccount(t, tdb, "inviter@nestling.app")
		now := time.Now().UTC()
		invitation := createInvitation(t, tdb, "late@nestling.app", inviter.ID, now.Add(-time.Minute))

		got, err := repo.Consume(ctx, invitation.TokenHash, now)
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if got != nil {
			t.Error("an expired token must not consume")
		}
	})
}

func TestInvitationRepository_ConsumeConcurrent(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		repo := NewInvitationRepository(tdb.Pool)
		inviter := createAccount(t, tdb, "inviter@nestling.app")
		now := time.Now().UTC()
		invitation := createInvitation(t, tdb, "contended@nestling.app", inviter.ID, now.Add(time.Hour))

		const workers = 4
		var wg sync.WaitGroup
		successes := make(chan struct{}, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := repo.Consume(context.Background(), invitation.TokenHash, now)
				if err == nil && got != nil {
					successes <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(successes)

		count := 0
		for range successes {
			count++
		}
		if count != 1 {
			t.Fatalf("expected exactly one winner, got %d", count)
		}
	})
}

func TestInvitationRepository_RevokePendingForEmail(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewInvitationRepository(tdb.Pool)
		inviter := createAccount(t, tdb, "inviter@nestling.app")
		now := time.Now().UTC()

		first := createInvitation(t, tdb, "super.seded@nestling.app", inviter.ID, now.Add(time.Hour))
		createInvitation(t, tdb, "other@nestling.app", inviter.ID, now.Add(time.Hour))

		count, err := repo.RevokePendingForEmail(ctx, "Super.Seded@Nestling.App")
		if err != nil {
			t.Fatalf("revoke pending: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 revocation, got %d", count)
		}

		if got, _ := repo.Consume(ctx, first.TokenHash, now); got != nil {
			t.Error("a revoked invitation must not consume")
		}

		pending, err := repo.ListPending(ctx, 10, 0)
		if err != nil {
			t.Fatalf("list pending: %v", err)
		}
		if len(pending) != 1 || pending[0].Email != "other@nestling.app" {
			t.Errorf("pending list: got %d entries", len(pending))
		}
	})
}

func TestInvitationRepository_MarkExpired(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewInvitationRepository(tdb.Pool)
		inviter := createAccount(t, tdb, "inviter@nestling.app")
		now := time.Now().UTC()

		createInvitation(t, tdb, "stale@nestling.app", inviter.ID, now.Add(-time.Hour))
		createInvitation(t, tdb, "fresh@nestling.app", inviter.ID, now.Add(time.Hour))

		count, err := repo.MarkExpired(ctx, now)
		if err != nil {
			t.Fatalf("mark expired: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 expiry, got %d", count)
		}

		pending, err := repo.ListPending(ctx, 10, 0)
		if err != nil {
			t.Fatalf("list pending: %v", err)
		}
		if len(pending) != 1 {
			t.Errorf("pending list: got %d entries", len(pending))
		}
	})
}

func TestPasswordResetRepository_ConsumeIsSingleUse(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewPasswordResetRepository(tdb.Pool)
		account := createAccount(t, tdb, "resettee@nestling.app")
		now := time.Now().UTC()

		reset := &models.PasswordReset{
			ID:        uuid.New(),
			AccountID: account.ID,
			TokenHash: uuid.NewString(),
			Status:    models.TokenStatusPending,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
		}
		if err := repo.Create(ctx, reset); err != nil {
			t.Fatalf("create reset: %v", err)
		}

		got, err := repo.Consume(ctx, reset.TokenHash, now)
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if got == nil {
			t.Fatal("expected the pending reset to consume")
		}
		if got.Status != models.TokenStatusUsed {
			t.Errorf("status: got %s", got.Status)
		}
		if got.AccountID != account.ID {
			t.Error("reset bound to the wrong account")
		}

		if got, _ := repo.Consume(ctx, reset.TokenHash, now); got != nil {
			t.Error("a used token must not consume again")
		}
	})
}
