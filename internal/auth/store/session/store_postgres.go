package session

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"passage/internal/auth/models"
)

// PostgresStore persists the session slots as rows of a small key-value
// table. All three slots are replaced inside one transaction, which gives
// the replace-or-clear guarantee for free.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed session store. The pool
// lifecycle is managed by the caller.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the slots table when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS auth_session_slots (
			slot  TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure session schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, session models.Session) error {
	token, user, associations, err := encodeSession(session)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session save: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO auth_session_slots (slot, value)
		VALUES ($1, $2)
		ON CONFLICT (slot) DO UPDATE SET value = EXCLUDED.value
	`
	for _, row := range []struct{ slot, value string }{
		{SlotToken, token},
		{SlotUser, user},
		{SlotAssociations, associations},
	} {
		if _, err := tx.ExecContext(ctx, upsert, row.slot, row.value); err != nil {
			return fmt.Errorf("write %s slot: %w", row.slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, value FROM auth_session_slots WHERE slot IN ($1, $2, $3)`,
		SlotToken, SlotUser, SlotAssociations)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var slot, value string
		if err := rows.Scan(&slot, &value); err != nil {
			return nil, fmt.Errorf("scan session slot: %w", err)
		}
		values[slot] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read session slots: %w", err)
	}

	return decodeSession(values[SlotToken], values[SlotUser], values[SlotAssociations], len(values))
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_session_slots WHERE slot IN ($1, $2, $3)`,
		SlotToken, SlotUser, SlotAssociations)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
