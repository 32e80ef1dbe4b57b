package middleware

import (
	"net/http"

	"libris/internal/db"
	"libris/internal/services"
	"libris/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckAccountKey = "account"
const UnreadCountKey = "unread_count"

// LoadAccount resolves the session into a full account, refreshes its
// activity stamp and stashes the account plus the unread notification
// count on the request context.
func LoadAccount() gin.HandlerFunc {
	accounts := store.NewAccountRepo(db.DB)
	notifications := store.NewNotificationRepo(db.DB)
	presence := services.NewPresenceService(db.DB)

	return func(c *gin.Context) {
		session := sessions.Default(c)
		accountID := session.Get("account_id")

		if accountID != nil {
			if id, ok := accountID.(uint); ok {
				account, err := accounts.FindByID(id)
				switch {
				case err == nil && account != nil:
					// At most one write per presence window.
					_, _ = presence.TouchActivity(account)
					c.Set(CheckAccountKey, account)

					if count, err := notifications.CountUnread(account.ID); err == nil {
						c.Set(UnreadCountKey, count)
					}
				case err == nil:
					// The account is gone, drop the stale session.
					session.Delete("account_id")
					_ = session.Save()
				}
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests that did not resolve to an account.
// It must run after LoadAccount.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckAccountKey); !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
