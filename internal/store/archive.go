package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/inkwell/engage/internal/model"
)

// Archive is a local SQLite record of every notification the synchronizer
// has observed, so history stays browsable offline and across restarts.
// The remote list remains the source of truth for live state; the archive
// is append-mostly and keyed by notification id, so re-observing a
// notification simply refreshes its row.
type Archive struct {
	db *sqlx.DB
}

// NewArchive opens (or creates) the archive database at dbPath, enables
// WAL mode, and runs any pending schema migrations.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	a := &Archive{db: db}
	if err := a.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return a, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (a *Archive) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := a.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = a.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := a.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Record inserts or refreshes a batch of observed notifications.
func (a *Archive) Record(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO notifications (
			id, type, title, message,
			from_user_id, from_username, project_id, action_url,
			read, created_at, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing archive statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, n := range notifications {
		var fromID int
		var fromUsername string
		if n.FromUser != nil {
			fromID = n.FromUser.ID
			fromUsername = n.FromUser.Username
		}

		_, err = stmt.ExecContext(ctx,
			n.ID, string(n.Type), n.Title, n.Message,
			fromID, fromUsername, n.ProjectID, n.ActionURL,
			boolToInt(n.Read), n.CreatedAt.UTC(), now,
		)
		if err != nil {
			return fmt.Errorf("archiving notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// List retrieves archived notifications, newest first.
func (a *Archive) List(ctx context.Context, limit, offset int) ([]model.Notification, error) {
	query := "SELECT * FROM notifications ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := a.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// Prune deletes all but the newest keep rows.
func (a *Archive) Prune(ctx context.Context, keep int) error {
	_, err := a.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE id NOT IN (
			SELECT id FROM notifications ORDER BY created_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("pruning archive: %w", err)
	}
	return nil
}

// scanNotification scans an archive row back into the wire model.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n            model.Notification
		typ          string
		fromID       int
		fromUsername string
		readInt      int
		createdAt    time.Time
		archivedAt   time.Time
	)

	err := rows.Scan(
		&n.ID, &typ, &n.Title, &n.Message,
		&fromID, &fromUsername, &n.ProjectID, &n.ActionURL,
		&readInt, &createdAt, &archivedAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning archive row: %w", err)
	}

	n.Type = model.NotificationType(typ)
	n.Read = readInt != 0
	n.CreatedAt = createdAt
	if fromUsername != "" || fromID != 0 {
		n.FromUser = &model.NotificationUser{ID: fromID, Username: fromUsername}
	}

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
