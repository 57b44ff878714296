package zombiezen

import (
	"errors"
	"fmt"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tidings-app/tidings/db"
)

// ErrConnectionClosed is returned by Log methods after Close.
var ErrConnectionClosed = errors.New("log database connection is closed")

// NewConn creates a new SQLite connection for logging purposes with
// performance pragmas in the DSN. The log database is separate from the
// application database so log writes never contend with auth traffic.
func NewConn(dbPath string) (*sqlite.Conn, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=off", dbPath)

	conn, err := sqlite.OpenConn(dsn, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open logging connection: %w", err)
	}
	return conn, nil
}

// Log implements db.DbLog on a single dedicated SQLite connection. The batch
// daemon is the only writer, so one connection guarded by a mutex is enough.
type Log struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	closed bool
}

var _ db.DbLog = (*Log)(nil)

// NewLog opens a dedicated logging connection to the given database file.
func NewLog(dbPath string) (*Log, error) {
	conn, err := NewConn(dbPath)
	if err != nil {
		return nil, err
	}
	return &Log{conn: conn}, nil
}

// InsertBatch writes a batch of log entries inside one immediate
// transaction. Any failure rolls the whole batch back.
func (l *Log) InsertBatch(batch []db.Log) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrConnectionClosed
	}
	if len(batch) == 0 {
		return nil
	}

	err := sqlitex.Execute(l.conn, "BEGIN IMMEDIATE;", nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = sqlitex.Execute(l.conn, "ROLLBACK;", nil)
		}
	}()

	stmt, err := l.conn.Prepare("INSERT INTO logs (level, message, data, created) VALUES ($level, $message, $data, $created)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Finalize()

	for _, entry := range batch {
		stmt.SetInt64("$level", entry.Level)
		stmt.SetText("$message", entry.Message)
		stmt.SetText("$data", entry.JsonData)
		stmt.SetText("$created", entry.Created)

		if _, err = stmt.Step(); err != nil {
			stmt.Reset()
			return fmt.Errorf("failed to execute statement for record (msg: %q): %w", entry.Message, err)
		}
		stmt.Reset()
	}

	if err = sqlitex.Execute(l.conn, "COMMIT;", nil); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive and the given table exists.
func (l *Log) Ping(tableName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrConnectionClosed
	}

	query := fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", tableName)
	if err := sqlitex.Execute(l.conn, query, nil); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying connection. A second Close returns
// ErrConnectionClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrConnectionClosed
	}
	l.closed = true
	return l.conn.Close()
}
