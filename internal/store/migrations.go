package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT PRIMARY KEY,
	type          TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	message       TEXT NOT NULL DEFAULT '',
	from_user_id  INTEGER NOT NULL DEFAULT 0,
	from_username TEXT NOT NULL DEFAULT '',
	project_id    INTEGER NOT NULL DEFAULT 0,
	action_url    TEXT NOT NULL DEFAULT '',
	read          INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL,
	archived_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_created_at
	ON notifications(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_type
	ON notifications(type);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
