package handlers

import "github.com/gin-gonic/gin"

const (
	flashCookie = "flash"
	flashMaxAge = 60
)

func setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookie, message, flashMaxAge, "/", "", false, true)
}

// popFlash returns the pending flash message, if any, and clears it.
func popFlash(c *gin.Context) string {
	message, err := c.Cookie(flashCookie)
	if err != nil || message == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return message
}
