package webhandlers

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "portal_flash"

// Flash is a one-time notification shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	flashSuccess = "success"
	flashError   = "error"
)

func setFlash(c *gin.Context, level string, message string) {
	flashes := readFlashCookie(c)
	flashes = append(flashes, Flash{Level: level, Message: message})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	c.SetCookie(flashCookieName, base64.RawURLEncoding.EncodeToString(data), 300, "/", "", false, true)
}

// popFlashes returns pending notifications and clears the cookie.
func popFlashes(c *gin.Context) []Flash {
	flashes := readFlashCookie(c)
	if len(flashes) > 0 {
		c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	}
	return flashes
}

func readFlashCookie(c *gin.Context) []Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(cookie)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
