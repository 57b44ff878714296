package core

import (
	"net/http"
	"strconv"

	"github.com/tidings-app/tidings/db"
)

// notificationsDefaultLimit bounds a list request without an explicit limit.
const notificationsDefaultLimit = 50

// NotificationRecord is the wire shape of one notification.
type NotificationRecord struct {
	ID      int64  `json:"id"`
	Kind    string `json:"kind"`
	Body    string `json:"body"`
	Read    bool   `json:"read"`
	Created string `json:"created"`
}

// ListNotificationsHandler returns the caller's notifications, newest first.
// Endpoint: GET /api/notifications
// Authenticated: Yes
func (a *App) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, err, authResp := a.Auth().Authenticate(r)
	if err != nil {
		writeJsonError(w, authResp)
		return
	}

	limit := notificationsDefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJsonError(w, errorInvalidRequest)
			return
		}
		if n < limit {
			limit = n
		}
	}

	notifications, err := a.DbNotification().GetNotificationsByUser(user.ID, limit)
	if err != nil {
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	records := make([]NotificationRecord, 0, len(notifications))
	for _, n := range notifications {
		records = append(records, NotificationRecord{
			ID:      n.ID,
			Kind:    n.Kind,
			Body:    n.Body,
			Read:    n.Read,
			Created: db.TimeFormat(n.Created),
		})
	}

	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkNotificationsList,
			Message: "Notifications",
		},
		Data: map[string]interface{}{"notifications": records},
	}
	writeJsonWithData(w, response)
}

// MarkNotificationsReadHandler flips every unread notification of the
// caller in one statement.
// Endpoint: POST /api/notifications/mark-all-read
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) MarkNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	user, err, authResp := a.Auth().Authenticate(r)
	if err != nil {
		writeJsonError(w, authResp)
		return
	}

	updated, err := a.DbNotification().MarkAllNotificationsRead(user.ID)
	if err != nil {
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkNotificationsRead,
			Message: "Notifications marked as read",
		},
		Data: map[string]int64{"updated": updated},
	}
	writeJsonWithData(w, response)
}
