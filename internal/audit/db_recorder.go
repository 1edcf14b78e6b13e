package audit

import (
	"context"
	"fmt"

	"github.com/dominic-source/kadabite-app/internal/db"

	"github.com/google/uuid"
)

// DBRecorder writes sign-in attempts to postgres.
type DBRecorder struct {
	db *db.DB
}

func NewDBRecorder(db *db.DB) *DBRecorder {
	return &DBRecorder{db: db}
}

func (r *DBRecorder) Record(ctx context.Context, e Entry) error {
	e = e.normalize()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sign_ins (id, provider, email, backend, success, message)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(),
		e.Provider,
		e.Email,
		e.Backend,
		e.Success,
		e.Message,
	)
	if err != nil {
		return fmt.Errorf("audit: record sign-in: %w", err)
	}
	return nil
}
