package core

import (
	"fmt"
	"time"

	"github.com/tidings-app/tidings/crypto"
	"github.com/tidings-app/tidings/db"
)

// newSessionToken issues a session JWT for the user with claims taken from
// the current record. Returns the token and its lifetime in seconds.
func (a *App) newSessionToken(user *db.User) (string, int, error) {
	cfg := a.Config()
	token, _, err := crypto.NewJwtSessionToken(
		user.ID, user.Name, user.Email, user.Avatar,
		user.Email, user.Password,
		cfg.Jwt.AuthSecret, cfg.Jwt.AuthTokenDuration.Duration,
	)
	if err != nil {
		return "", 0, err
	}
	return token, int(cfg.Jwt.AuthTokenDuration.Duration.Seconds()), nil
}

// recordNotification inserts a side record for the user. Notifications are
// never authoritative; a failed insert is logged and otherwise ignored.
func (a *App) recordNotification(userID, kind, body string) {
	if a.dbNotification == nil {
		return
	}
	err := a.dbNotification.InsertNotification(db.Notification{
		UserID:  userID,
		Kind:    kind,
		Body:    body,
		Created: time.Now(),
	})
	if err != nil {
		a.Logger().Error("failed to insert notification", "error", err, "user_id", userID, "kind", kind)
	}
}

// inCooldown tracks proof-request cooldowns in the in-process cache. The
// first request for (kind, email) within the window claims the slot; repeats
// report true. The queue's unique payload constraint remains the durable
// guard; the cache only spares the database a write on hot repeats.
func (a *App) inCooldown(kind, email string, ttl time.Duration) bool {
	if a.cache == nil || ttl <= 0 {
		return false
	}
	key := fmt.Sprintf("cooldown:%s:%s", kind, email)
	if _, found := a.cache.Get(key); found {
		return true
	}
	a.cache.SetWithTTL(key, struct{}{}, 1, ttl)
	return false
}
