package webhandlers

import (
	"encoding/base64"
	"errors"
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"
)

// randomWait blunts timing based probing of auth failure branches.
func randomWait(minTimeMs int, maxTimeMs int) {
	time.Sleep(time.Duration(rand.Intn(maxTimeMs-minTimeMs)+minTimeMs) * time.Millisecond)
}

// encodeUID turns an account ID into the opaque identifier used in reset
// links.
func encodeUID(accountID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(accountID))
}

func decodeUID(uid string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", errors.New("invalid identifier")
	}
	return string(data), nil
}

// render writes a page including pending and extra flash notifications.
func (h *HttpEndpoints) render(c *gin.Context, status int, templateName string, data gin.H, extraFlashes ...Flash) {
	if data == nil {
		data = gin.H{}
	}
	data["flashes"] = append(popFlashes(c), extraFlashes...)
	c.HTML(status, templateName, data)
}
