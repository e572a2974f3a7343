package handlers

import (
	"github.com/gin-gonic/gin"
)

const flashCookieName = "flash"

// setFlash queues a one-shot message for the next rendered page.
func setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookieName, message, 60, "/", "", false, true)
}

// popFlash returns the queued message, if any, and clears it.
func popFlash(c *gin.Context) string {
	message, err := c.Cookie(flashCookieName)
	if err != nil || message == "" {
		return ""
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	return message
}

// pageData assembles the fields every template expects: the flash message
// and the session identity, merged with the page's own values.
func pageData(c *gin.Context, values gin.H) gin.H {
	data := gin.H{
		"Flash":    popFlash(c),
		"LoggedIn": false,
		"Guest":    false,
		"UserID":   uint(0),
	}
	if userID := c.GetUint("user_id"); userID > 0 {
		data["LoggedIn"] = true
		data["Guest"] = c.GetBool("guest")
		data["UserID"] = userID
	}
	for k, v := range values {
		data[k] = v
	}
	return data
}
