package templates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx. The store
// accepts this so the same code works inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads templates from the notification_templates table owned
// by the surrounding application's settings layer. Reads only; this core
// never writes templates.
type PostgresStore struct {
	db DBTX
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgresStore backed by the given connection
// (pool or transaction).
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Lookup fetches the template row for (channel, kind). A missing row maps to
// ErrNotConfigured; database failures are wrapped in an AppError so callers
// can distinguish "not configured" from "store unavailable".
func (s *PostgresStore) Lookup(ctx context.Context, channel types.ChannelKind, kind types.EventKind) (Template, error) {
	row := s.db.QueryRow(ctx,
		`SELECT enabled, subject, body, COALESCE(image, '')
		 FROM notification_templates
		 WHERE channel = $1 AND event_kind = $2`,
		string(channel), string(kind),
	)

	t := Template{Channel: channel, Kind: kind}
	if err := row.Scan(&t.Enabled, &t.Subject, &t.Body, &t.Image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, ErrNotConfigured
		}
		return Template{}, types.NewAppError(types.ErrCodeInternalDB, "failed to read notification template", err)
	}

	return t, nil
}
