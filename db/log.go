package db

// Log is a single structured log entry persisted by the batch logger.
type Log struct {
	Level    int64
	Message  string
	JsonData string
	Created  string
}

// DbLog defines the interface for database operations related to logs.
type DbLog interface {
	// InsertBatch inserts a batch of log entries into the database.
	InsertBatch(batch []Log) error
	// Ping verifies the connection is alive and the schema for the given
	// table is correct.
	Ping(tableName string) error
	// Close closes the underlying database connection or pool.
	Close() error
}
