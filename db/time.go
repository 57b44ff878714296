package db

import "time"

// TimeFormat formats a time.Time as RFC3339 in UTC, the storage format for
// all timestamp columns.
func TimeFormat(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TimeParse parses an RFC3339 timestamp as stored in the database.
func TimeParse(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
