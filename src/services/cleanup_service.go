package services

import (
	"context"
	"time"

	"github.com/nestling-app/nestling-server/src/logging"
	"github.com/nestling-app/nestling-server/src/repositories"
	"github.com/rs/zerolog"
)

// CleanupService periodically sweeps expired credentials: pending
// invitations and reset tokens past their TTL are moved to the expired
// state, and session rows past their refresh grace window are purged.
// Expiry is enforced inline on every lookup; the sweeper only keeps the
// tables tidy and the token states accurate for listings.
type CleanupService struct {
	sessions    repositories.SessionRepository
	invitations repositories.InvitationRepository
	resets      repositories.PasswordResetRepository

	enabled      bool
	interval     time.Duration
	sessionGrace time.Duration
	done         chan struct{}
	log          zerolog.Logger
}

// NewCleanupService creates a cleanup service. sessionGrace is how long an
// expired session row is kept so its refresh token can still rotate it
// (the refresh token TTL).
func NewCleanupService(
	sessions repositories.SessionRepository,
	invitations repositories.InvitationRepository,
	resets repositories.PasswordResetRepository,
	enabled bool,
	interval time.Duration,
	sessionGrace time.Duration,
) *CleanupService {
	return &CleanupService{
		sessions:     sessions,
		invitations:  invitations,
		resets:       resets,
		enabled:      enabled,
		interval:     interval,
		sessionGrace: sessionGrace,
		done:         make(chan struct{}),
		log:          logging.NewLogger("cleanup"),
	}
}

// Start launches the sweep loop. No-op when disabled.
func (cs *CleanupService) Start(ctx context.Context) {
	if !cs.enabled {
		cs.log.Info().Msg("cleanup service disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(cs.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				cs.log.Info().Msg("cleanup service stopped")
				return
			case <-cs.done:
				cs.log.Info().Msg("cleanup service stopped")
				return
			case <-ticker.C:
				cs.Sweep(ctx)
			}
		}
	}()

	cs.log.Info().Dur("interval", cs.interval).Msg("cleanup service started")
}

// Stop stops the sweep loop
func (cs *CleanupService) Stop() {
	close(cs.done)
}

// Sweep performs one cleanup pass
func (cs *CleanupService) Sweep(ctx context.Context) {
	now := time.Now()

	expired, err := cs.invitations.MarkExpired(ctx, now)
	if err != nil {
		cs.log.Error().Err(err).Msg("failed to expire invitations")
	}
	resets, err := cs.resets.MarkExpired(ctx, now)
	if err != nil {
		cs.log.Error().Err(err).Msg("failed to expire password resets")
	}
	purged, err := cs.sessions.DeleteExpired(ctx, now.Add(-cs.sessionGrace))
	if err != nil {
		cs.log.Error().Err(err).Msg("failed to purge dead sessions")
	}

	if expired+resets+purged > 0 {
		cs.log.Info().
			Int64("invitations_expired", expired).
			Int64("resets_expired", resets).
			Int64("sessions_purged", purged).
			Msg("cleanup pass completed")
	}
}
