package core

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/db/mock"
)

func TestListNotificationsHandler(t *testing.T) {
	authedUser := &db.User{ID: "user123", Email: "user@example.com", Active: true}

	mockDb := &mock.Db{
		GetNotificationsByUserFunc: func(userId string, limit int) ([]db.Notification, error) {
			if userId != "user123" {
				t.Errorf("listing for wrong user %q", userId)
			}
			return []db.Notification{
				{ID: 2, UserID: userId, Kind: db.NotificationLogin, Body: "New sign-in", Created: time.Now()},
				{ID: 1, UserID: userId, Kind: db.NotificationRegistration, Body: "Welcome", Read: true, Created: time.Now()},
			}, nil
		},
	}
	app := newTestApp(mockDb, authedUser)

	req := httptest.NewRequest("GET", "/api/notifications", nil)
	rr := httptest.NewRecorder()
	app.ListNotificationsHandler(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Code string `json:"code"`
		Data struct {
			Notifications []NotificationRecord `json:"notifications"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != CodeOkNotificationsList {
		t.Errorf("unexpected code %q", resp.Code)
	}
	if len(resp.Data.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(resp.Data.Notifications))
	}
	if resp.Data.Notifications[0].ID != 2 || resp.Data.Notifications[0].Kind != db.NotificationLogin {
		t.Errorf("unexpected first notification %+v", resp.Data.Notifications[0])
	}
}

func TestListNotificationsHandler_InvalidLimit(t *testing.T) {
	app := newTestApp(&mock.Db{}, &db.User{ID: "user123"})

	req := httptest.NewRequest("GET", "/api/notifications?limit=zero", nil)
	rr := httptest.NewRecorder()
	app.ListNotificationsHandler(rr, req)
	checkResponse(t, rr, errorInvalidRequest)
}

func TestMarkNotificationsReadHandler(t *testing.T) {
	authedUser := &db.User{ID: "user123", Email: "user@example.com", Active: true}

	mockDb := &mock.Db{
		MarkAllNotificationsReadFunc: func(userId string) (int64, error) {
			return 3, nil
		},
	}
	app := newTestApp(mockDb, authedUser)

	rr := httptest.NewRecorder()
	app.MarkNotificationsReadHandler(rr, newJsonRequest("POST", "/api/notifications/mark-all-read", `{}`))

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Code string `json:"code"`
		Data struct {
			Updated int64 `json:"updated"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != CodeOkNotificationsRead || resp.Data.Updated != 3 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestNotificationsHandlers_RequireAuth(t *testing.T) {
	app := newTestApp(&mock.Db{}, nil)

	rr := httptest.NewRecorder()
	app.ListNotificationsHandler(rr, httptest.NewRequest("GET", "/api/notifications", nil))
	checkResponse(t, rr, errorJwtInvalidToken)

	rr = httptest.NewRecorder()
	app.MarkNotificationsReadHandler(rr, newJsonRequest("POST", "/api/notifications/mark-all-read", `{}`))
	checkResponse(t, rr, errorJwtInvalidToken)
}
