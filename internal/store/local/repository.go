// Package local implements the anonymous-session store: every
// collection kind is one row in a SQLite key-value table, serialized as
// JSON text. Reads never fail (absent or malformed rows yield the
// kind's default) and writes are best-effort (storage errors are logged
// and swallowed), matching how the browser original treated
// localStorage.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quranstudy/internal/badges"
	"quranstudy/internal/dbx"
	"quranstudy/internal/logging"
	"quranstudy/internal/models"
)

// deviceIDKey is the extra row holding this installation's anonymous
// identifier. It shares the table with the collection kinds but is not
// a collection itself.
const deviceIDKey = "deviceId"

type Repository struct {
	db  *sql.DB
	log logging.Logger
}

func NewRepository(db *sql.DB, log logging.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// Read returns the stored value for the given kind, or the kind's
// default when the row is absent or its text fails to deserialize.
// Malformed rows are reported to the log but never surfaced.
func (r *Repository) Read(ctx context.Context, k models.Kind) any {
	if !k.Valid() {
		r.log.Warn(ctx, "local read of unknown kind", "kind", string(k))
		return nil
	}

	raw, err := r.get(ctx, k.Key())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.log.Warn(ctx, "local read failed, using default", "kind", string(k), "error", err)
		}
		return models.DefaultFor(k)
	}

	value, err := models.DecodeValue(k, []byte(raw))
	if err != nil {
		r.log.Warn(ctx, "malformed local value, using default", "kind", string(k), "error", err)
		return models.DefaultFor(k)
	}
	return value
}

// ReadAll loads all seven collections, falling back to defaults per
// kind.
func (r *Repository) ReadAll(ctx context.Context) models.Collections {
	c := models.DefaultCollections()
	for _, k := range models.AllKinds() {
		if err := c.Set(k, r.Read(ctx, k)); err != nil {
			r.log.Warn(ctx, "skipping local value", "kind", string(k), "error", err)
		}
	}
	return c
}

// Write serializes and stores the value for the given kind. Writing
// badges also rewrites earnedBadges in the same transaction so the two
// rows never diverge. Write never fails: errors are logged and the
// in-memory mirror remains the source of truth.
func (r *Repository) Write(ctx context.Context, k models.Kind, value any) {
	if !k.Valid() {
		r.log.Warn(ctx, "local write of unknown kind", "kind", string(k))
		return
	}

	data, err := models.EncodeValue(k, value)
	if err != nil {
		r.log.Warn(ctx, "local write skipped, value not serializable", "kind", string(k), "error", err)
		return
	}

	if k != models.KindBadges {
		if err := r.set(ctx, r.db, k.Key(), string(data)); err != nil {
			r.log.Warn(ctx, "local write failed", "kind", string(k), "error", err)
		}
		return
	}

	list, ok := value.([]models.Badge)
	if !ok {
		r.log.Warn(ctx, "local write skipped, badges value has wrong type", "type", fmt.Sprintf("%T", value))
		return
	}
	earned, err := models.EncodeValue(models.KindEarnedBadges, badges.DeriveEarned(list))
	if err != nil {
		r.log.Warn(ctx, "local write skipped, earned badges not serializable", "error", err)
		return
	}

	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := r.set(ctx, tx, models.KindBadges.Key(), string(data)); err != nil {
			return err
		}
		return r.set(ctx, tx, models.KindEarnedBadges.Key(), string(earned))
	})
	if err != nil {
		r.log.Warn(ctx, "local badges write failed", "error", err)
	}
}

// DeviceID returns the stable anonymous identifier for this
// installation, generating and persisting one on first use. If the
// store is unwritable the freshly generated id is still returned so the
// session can proceed.
func (r *Repository) DeviceID(ctx context.Context) string {
	id, err := r.get(ctx, deviceIDKey)
	if err == nil && id != "" {
		return id
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.log.Warn(ctx, "device id read failed", "error", err)
	}

	id = uuid.NewString()
	if err := r.set(ctx, r.db, deviceIDKey, id); err != nil {
		r.log.Warn(ctx, "device id write failed", "error", err)
	}
	return id
}

func (r *Repository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM user_state WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *Repository) set(ctx context.Context, db dbx.DBTX, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO user_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set user_state[%s]: %w", key, err)
	}
	return nil
}
