package zombiezen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tidings-app/tidings/db"
)

func TestNotificationLifecycle(t *testing.T) {
	testDB := newTestDB(t)
	user := mustCreateUser(t, testDB, "notify@example.com")

	for i := 0; i < 3; i++ {
		err := testDB.InsertNotification(db.Notification{
			UserID: user.ID,
			Kind:   db.NotificationLogin,
			Body:   fmt.Sprintf("login %d", i),
		})
		if err != nil {
			t.Fatalf("InsertNotification failed: %v", err)
		}
	}

	t.Run("ListNewestFirst", func(t *testing.T) {
		got, err := testDB.GetNotificationsByUser(user.ID, 10)
		if err != nil {
			t.Fatalf("GetNotificationsByUser failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 notifications, got %d", len(got))
		}
		if got[0].Body != "login 2" {
			t.Errorf("expected newest first, got %q", got[0].Body)
		}
		for _, n := range got {
			if n.Read {
				t.Error("expected notifications to start unread")
			}
		}
	})

	t.Run("Limit", func(t *testing.T) {
		got, err := testDB.GetNotificationsByUser(user.ID, 2)
		if err != nil {
			t.Fatalf("GetNotificationsByUser failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 notifications, got %d", len(got))
		}
	})

	t.Run("MarkAllRead", func(t *testing.T) {
		changed, err := testDB.MarkAllNotificationsRead(user.ID)
		if err != nil {
			t.Fatalf("MarkAllNotificationsRead failed: %v", err)
		}
		if changed != 3 {
			t.Errorf("expected 3 rows changed, got %d", changed)
		}

		changed, err = testDB.MarkAllNotificationsRead(user.ID)
		if err != nil {
			t.Fatalf("second MarkAllNotificationsRead failed: %v", err)
		}
		if changed != 0 {
			t.Errorf("expected 0 rows changed on second pass, got %d", changed)
		}
	})

	t.Run("OtherUserIsEmpty", func(t *testing.T) {
		got, err := testDB.GetNotificationsByUser("someone-else", 10)
		if err != nil {
			t.Fatalf("GetNotificationsByUser failed: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no notifications, got %d", len(got))
		}
	})
}

func TestInsertNotificationValidation(t *testing.T) {
	testDB := newTestDB(t)
	err := testDB.InsertNotification(db.Notification{Kind: db.NotificationLogin})
	if !errors.Is(err, db.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}
