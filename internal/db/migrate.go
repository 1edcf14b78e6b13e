package db

import (
	"context"
)

const auditMigration = `
CREATE TABLE IF NOT EXISTS sign_ins (
    id uuid PRIMARY KEY,
    provider text NOT NULL,
    email text NOT NULL DEFAULT '',
    backend text NOT NULL DEFAULT '',
    success boolean NOT NULL,
    message text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS sign_ins_email_idx
ON sign_ins (LOWER(email));

CREATE INDEX IF NOT EXISTS sign_ins_created_at_idx
ON sign_ins (created_at);
`

// Migrate creates the sign-in audit tables. It is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.ExecContext(ctx, auditMigration)
	return err
}
