package audit

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/dominic-source/kadabite-app/internal/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDriver captures the statements executed through database/sql.
type recordingDriver struct {
	mu    sync.Mutex
	query string
	args  []driver.Value
	err   error
}

func (d *recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{d: d}, nil }

type recordingConn struct{ d *recordingDriver }

func (c *recordingConn) Prepare(query string) (driver.Stmt, error) {
	return &recordingStmt{d: c.d, query: query}, nil
}
func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return nil, errors.New("not supported") }

type recordingStmt struct {
	d     *recordingDriver
	query string
}

func (s *recordingStmt) Close() error  { return nil }
func (s *recordingStmt) NumInput() int { return -1 }

func (s *recordingStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if s.d.err != nil {
		return nil, s.d.err
	}
	s.d.query = s.query
	s.d.args = args
	return driver.RowsAffected(1), nil
}

func (s *recordingStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("not supported")
}

var (
	stubDriver     = &recordingDriver{}
	registerDriver sync.Once
)

func stubDB(t *testing.T) *db.DB {
	t.Helper()
	registerDriver.Do(func() { sql.Register("audit-recording", stubDriver) })

	stubDriver.mu.Lock()
	stubDriver.query, stubDriver.args, stubDriver.err = "", nil, nil
	stubDriver.mu.Unlock()

	sqlDB, err := sql.Open("audit-recording", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &db.DB{DB: sqlDB}
}

func TestDBRecorder_Record(t *testing.T) {
	r := NewDBRecorder(stubDB(t))

	err := r.Record(context.Background(), Entry{
		Provider: "google",
		Email:    " Ada@Gmail.com",
		Backend:  "python",
		Success:  false,
		Message:  "sign-in refused",
	})
	require.NoError(t, err)

	stubDriver.mu.Lock()
	defer stubDriver.mu.Unlock()

	assert.Contains(t, stubDriver.query, "INSERT INTO sign_ins")
	require.Len(t, stubDriver.args, 6)

	id, ok := stubDriver.args[0].(string)
	require.True(t, ok, "id is bound as its string form")
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	assert.Equal(t, []driver.Value{"google", "ada@gmail.com", "python", false, "sign-in refused"}, stubDriver.args[1:])
}

func TestDBRecorder_RecordError(t *testing.T) {
	database := stubDB(t)
	stubDriver.mu.Lock()
	stubDriver.err = errors.New("connection reset")
	stubDriver.mu.Unlock()

	err := NewDBRecorder(database).Record(context.Background(), Entry{Provider: "credentials"})
	assert.ErrorContains(t, err, "audit: record sign-in")
}

func TestDBRecorder_Postgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		t.Skip("DATABASE_DSN not set")
	}

	ctx := context.Background()
	database, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.Migrate(ctx))

	email := uuid.NewString() + "@kadabite.com"
	require.NoError(t, NewDBRecorder(database).Record(ctx, Entry{
		Provider: "credentials",
		Email:    email,
		Success:  true,
	}))

	var n int
	require.NoError(t, database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sign_ins WHERE email = $1 AND success`, email).Scan(&n))
	assert.Equal(t, 1, n)
}
