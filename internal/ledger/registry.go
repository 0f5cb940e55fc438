package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RegistryPartition is the non-month partition holding known users. Its name
// deliberately fails the YYYY-MM pattern so balance scans skip it.
const RegistryPartition = "users"

func registryHeader() []string {
	return []string{"user_id", "user_label", "first_seen"}
}

// Registry records first-time users in the registry partition. Everything
// here is best effort: a failed duplicate check defaults to "not registered"
// and a failed append only logs — user bookkeeping must never block a
// submission.
type Registry struct {
	store Store
	now   func() time.Time
	log   zerolog.Logger
}

func NewRegistry(store Store, now func() time.Time, log zerolog.Logger) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{store: store, now: now, log: log}
}

// Register adds the user to the registry unless already present.
func (r *Registry) Register(ctx context.Context, userID, userLabel string) {
	if userID == "" {
		return
	}

	if err := r.ensurePartition(ctx); err != nil {
		r.log.Warn().Err(err).Msg("User registry unavailable")
		return
	}

	if r.exists(ctx, userID) {
		return
	}

	row := []interface{}{userID, userLabel, r.now().Format(time.RFC3339)}
	if err := r.store.AppendRow(ctx, RegistryPartition, row); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to register user")
		return
	}

	r.log.Info().Str("user_id", userID).Msg("User registered")
}

func (r *Registry) ensurePartition(ctx context.Context) error {
	exists, err := r.store.PartitionExists(ctx, RegistryPartition)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.store.CreatePartition(ctx, RegistryPartition, registryHeader(), nil)
}

func (r *Registry) exists(ctx context.Context, userID string) bool {
	rows, err := r.store.ReadAllRows(ctx, RegistryPartition)
	if err != nil {
		r.log.Warn().Err(err).Msg("User registry read failed, assuming not registered")
		return false
	}
	for _, row := range rows {
		if len(row) > 0 && cellString(row[0]) == userID {
			return true
		}
	}
	return false
}
