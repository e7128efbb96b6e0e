// Package resettoken issues and verifies password reset tokens. Tokens are
// not stored anywhere: the MAC covers the account's current password hash and
// last login, so a token stops validating as soon as the password changes or
// the account logs in again, and verification is a recomputation.
package resettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
)

type Generator struct {
	secret []byte
	ttl    time.Duration

	// overridable for tests
	now func() time.Time
}

func NewGenerator(secret string, ttl time.Duration) *Generator {
	return &Generator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns how long issued tokens stay valid, so callers can state the
// validity period without duplicating the configured value.
func (g *Generator) TTL() time.Duration {
	return g.ttl
}

// Issue creates a token bound to the account's current state.
func (g *Generator) Issue(account userTypes.Account) string {
	ts := g.now().Unix()
	return formatTimestamp(ts) + "-" + g.mac(account, ts)
}

// Verify recomputes the MAC for the account and compares in constant time.
// A token issued for one account never validates for another because the
// account ID is part of the MAC input.
func (g *Generator) Verify(account userTypes.Account, token string) bool {
	tsPart, macPart, found := strings.Cut(token, "-")
	if !found {
		return false
	}

	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	now := g.now().Unix()
	if ts > now || now-ts > int64(g.ttl.Seconds()) {
		return false
	}

	return hmac.Equal([]byte(g.mac(account, ts)), []byte(macPart))
}

func (g *Generator) mac(account userTypes.Account, ts int64) string {
	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(account.ID.Hex()))
	h.Write([]byte("|"))
	h.Write([]byte(account.Password))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatInt(account.Timestamps.LastLogin, 10)))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

func formatTimestamp(ts int64) string {
	return strconv.FormatInt(ts, 36)
}
