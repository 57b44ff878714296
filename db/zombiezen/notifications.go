package zombiezen

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tidings-app/tidings/db"
)

func newNotificationFromStmt(stmt *sqlite.Stmt) (db.Notification, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return db.Notification{}, fmt.Errorf("error parsing created time: %w", err)
	}
	return db.Notification{
		ID:      stmt.GetInt64("id"),
		UserID:  stmt.GetText("user_id"),
		Kind:    stmt.GetText("kind"),
		Body:    stmt.GetText("body"),
		Read:    stmt.GetInt64("read") != 0,
		Created: created,
	}, nil
}

// InsertNotification appends a side record for the user. Notifications are
// never authoritative for identity state; failures here must not abort the
// flow that produced them.
func (d *Db) InsertNotification(n db.Notification) error {
	if n.UserID == "" || n.Kind == "" {
		return fmt.Errorf("%w: UserID, Kind", db.ErrMissingFields)
	}

	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get connection for notification insert: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO notifications (user_id, kind, body) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{n.UserID, n.Kind, n.Body},
		})
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// GetNotificationsByUser returns the newest notifications of the user,
// newest first.
func (d *Db) GetNotificationsByUser(userId string, limit int) ([]db.Notification, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get connection for notification list: %w", err)
	}
	defer d.pool.Put(conn)

	var notifications []db.Notification
	err = sqlitex.Execute(conn,
		`SELECT id, user_id, kind, body, read, created
		FROM notifications
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n, err := newNotificationFromStmt(stmt)
				if err != nil {
					return err
				}
				notifications = append(notifications, n)
				return nil
			},
			Args: []interface{}{userId, limit},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []db.Notification{}
	}
	return notifications, nil
}

// MarkAllNotificationsRead flips every unread notification of the user in
// one statement and reports how many rows changed.
func (d *Db) MarkAllNotificationsRead(userId string) (int64, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return 0, fmt.Errorf("failed to get connection for notification update: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`,
		&sqlitex.ExecOptions{
			Args: []interface{}{userId},
		})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int64(conn.Changes()), nil
}
