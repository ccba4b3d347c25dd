package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nestling-app/nestling-server/src/database"
	"github.com/nestling-app/nestling-server/src/models"
)

func createSession(t *testing.T, tdb *database.TestDB, accountID uuid.UUID, expiresAt time.Time) *models.AdminSession {
	t.Helper()
	session := &models.AdminSession{
		ID:               uuid.New(),
		AccountID:        accountID,
		TokenHash:        uuid.NewString(),
		RefreshTokenHash: uuid.NewString(),
		IPAddress:        "10.0.0.1",
		UserAgent:        "test-agent",
		ExpiresAt:        expiresAt,
		CreatedAt:        time.Now().UTC(),
	}
	if err := NewSessionRepository(tdb.Pool).Create(context.Background(), session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func TestSessionRepository_FindActiveByTokenHash(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewSessionRepository(tdb.Pool)
		account := createAccount(t, tdb, "sessions@nestling.app")
		now := time.Now().UTC()

		live := createSession(t, tdb, account.ID, now.Add(time.Hour))
		expired := createSession(t, tdb, account.ID, now.Add(-time.Minute))

		got, err := repo.FindActiveByTokenHash(ctx, live.TokenHash, now)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got == nil || got.ID != live.ID {
			t.Fatal("expected the live session")
		}

		got, err = repo.FindActiveByTokenHash(ctx, expired.TokenHash, now)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got != nil {
			t.Error("an expired session must not resolve")
		}

		// The refresh hash lookup ignores the access expiry
		got, err = repo.FindActiveByRefreshHash(ctx, expired.RefreshTokenHash)
		if err != nil {
			t.Fatalf("find by refresh: %v", err)
		}
		if got == nil || got.ID != expired.ID {
			t.Error("refresh lookup should outlive the access expiry")
		}
	})
}

func TestSessionRepository_RevokeIsIdempotentlyReported(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewSessionRepository(tdb.Pool)
		account := createAccount(t, tdb, "revoke@nestling.app")
		session := createSession(t, tdb, account.ID, time.Now().UTC().Add(time.Hour))

		revoked, err := repo.Revoke(ctx, session.ID, "logout")
		if err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if !revoked {
			t.Fatal("first revoke should report true")
		}

		revoked, err = repo.Revoke(ctx, session.ID, "logout")
		if err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if revoked {
			t.Error("second revoke should report false")
		}

		got, err := repo.FindActiveByTokenHash(ctx, session.TokenHash, time.Now().UTC())
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got != nil {
			t.Error("a revoked session must not resolve")
		}
	})
}

func TestSessionRepository_RevokeAllForAccountExcept(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewSessionRepository(tdb.Pool)
		account := createAccount(t, tdb, "revokeall@nestling.app")
		other := createAccount(t, tdb, "bystander@nestling.app")
		now := time.Now().UTC()

		keep := createSession(t, tdb, account.ID, now.Add(time.Hour))
		s2 := createSession(t, tdb, account.ID, now.Add(time.Hour))
		s3 := createSession(t, tdb, account.ID, now.Add(time.Hour))
		bystander := createSession(t, tdb, other.ID, now.Add(time.Hour))

		count, err := repo.RevokeAllForAccount(ctx, account.ID, &keep.ID, "password_changed")
		if err != nil {
			t.Fatalf("revoke all: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 revocations, got %d", count)
		}

		for _, tc := range []struct {
			name    string
			session *models.AdminSession
			alive   bool
		}{
			{"kept", keep, true},
			{"second", s2, false},
			{"third", s3, false},
			{"bystander", bystander, true},
		} {
			got, err := repo.FindActiveByTokenHash(ctx, tc.session.TokenHash, now)
			if err != nil {
				t.Fatalf("%s: find: %v", tc.name, err)
			}
			if (got != nil) != tc.alive {
				t.Errorf("%s: alive=%v, want %v", tc.name, got != nil, tc.alive)
			}
		}

		// With no exception the remaining session goes too
		count, err = repo.RevokeAllForAccount(ctx, account.ID, nil, "account_disabled")
		if err != nil {
			t.Fatalf("revoke all: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 revocation, got %d", count)
		}
	})
}

func TestSessionRepository_UpdateTokensRotatesHashes(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewSessionRepository(tdb.Pool)
		account := createAccount(t, tdb, "rotate@nestling.app")
		now := time.Now().UTC()
		session := createSession(t, tdb, account.ID, now.Add(time.Hour))

		newToken, newRefresh := uuid.NewString(), uuid.NewString()
		if err := repo.UpdateTokens(ctx, session.ID, newToken, newRefresh, now.Add(2*time.Hour)); err != nil {
			t.Fatalf("update tokens: %v", err)
		}

		if got, _ := repo.FindActiveByTokenHash(ctx, session.TokenHash, now); got != nil {
			t.Error("the old token hash must stop resolving")
		}
		got, err := repo.FindActiveByTokenHash(ctx, newToken, now)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got == nil || got.ID != session.ID {
			t.Fatal("the new token hash should resolve to the same session")
		}

		// Rotation is refused on a revoked session
		if _, err := repo.Revoke(ctx, session.ID, "logout"); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if err := repo.UpdateTokens(ctx, session.ID, uuid.NewString(), uuid.NewString(), now.Add(3*time.Hour)); err == nil {
			t.Error("expected an error rotating a revoked session")
		}
	})
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		ctx := context.Background()
		repo := NewSessionRepository(tdb.Pool)
		account := createAccount(t, tdb, "sweep@nestling.app")
		now := time.Now().UTC()

		old := createSession(t, tdb, account.ID, now.Add(-8*24*time.Hour))
		recent := createSession(t, tdb, account.ID, now.Add(-time.Hour))

		deleted, err := repo.DeleteExpired(ctx, now.Add(-7*24*time.Hour))
		if err != nil {
			t.Fatalf("delete expired: %v", err)
		}
		if deleted != 1 {
			t.Errorf("expected 1 deletion, got %d", deleted)
		}

		// The recent one is expired for access but kept within the refresh
		// window; only its hash lookup by access path fails
		if got, _ := repo.FindActiveByRefreshHash(ctx, recent.RefreshTokenHash); got == nil {
			t.Error("a session inside the retention window should survive the sweep")
		}
		if got, _ := repo.FindActiveByRefreshHash(ctx, old.RefreshTokenHash); got != nil {
			t.Error("a swept session must not resolve")
		}
	})
}
