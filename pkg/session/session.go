// Package session implements the cookie based auth session. The cookie
// carries a signed JWT wrapping an opaque session ID; the session record
// itself lives in the database, so logout invalidates the cookie immediately
// regardless of the JWT expiry.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
)

const (
	DefaultCookieName = "portal_session"

	// gin context keys set by RequireSession
	ContextKeyAccountID = "accountID"
	ContextKeySessionID = "sessionID"
)

var ErrNoSession = errors.New("no valid session")

// Store is the persistence the manager needs; *accounts.AccountDBService
// satisfies it.
type Store interface {
	CreateSession(session userTypes.Session) (userTypes.Session, error)
	GetSession(sessionID string) (userTypes.Session, error)
	DeleteSession(sessionID string) error
}

type sessionClaims struct {
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	store        Store
	signKey      string
	ttl          time.Duration
	cookieName   string
	secureCookie bool
}

func NewManager(store Store, signKey string, ttl time.Duration, cookieName string, secureCookie bool) *Manager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Manager{
		store:        store,
		signKey:      signKey,
		ttl:          ttl,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

// generateSessionID creates a unique session ID using crypto/rand
func generateSessionID() (string, error) {
	bytes := make([]byte, 16) // 32 character hex string
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Start creates a session record for the account and sets the cookie.
func (m *Manager) Start(c *gin.Context, accountID string) error {
	sessionID, err := generateSessionID()
	if err != nil {
		return err
	}

	_, err = m.store.CreateSession(userTypes.Session{
		SessionID: sessionID,
		AccountID: accountID,
		ExpiresAt: time.Now().Add(m.ttl),
	})
	if err != nil {
		return err
	}

	claims := sessionClaims{
		sessionID,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   accountID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.signKey))
	if err != nil {
		return err
	}

	c.SetCookie(m.cookieName, tokenString, int(m.ttl.Seconds()), "/", "", m.secureCookie, true)
	return nil
}

// End destroys the current session record and clears the cookie. Calling it
// without a valid session is not an error.
func (m *Manager) End(c *gin.Context) {
	claims, err := m.claimsFromRequest(c)
	if err == nil {
		// cookie is cleared either way, the TTL index collects a leftover record
		_ = m.store.DeleteSession(claims.SessionID)
	}
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secureCookie, true)
}

// AccountID validates the cookie and resolves the bound account. The session
// record must still exist in the store.
func (m *Manager) AccountID(c *gin.Context) (accountID string, sessionID string, err error) {
	claims, err := m.claimsFromRequest(c)
	if err != nil {
		return "", "", ErrNoSession
	}

	sess, err := m.store.GetSession(claims.SessionID)
	if err != nil {
		return "", "", ErrNoSession
	}
	if sess.AccountID != claims.Subject {
		return "", "", ErrNoSession
	}
	return sess.AccountID, sess.SessionID, nil
}

func (m *Manager) claimsFromRequest(c *gin.Context) (*sessionClaims, error) {
	cookie, err := c.Cookie(m.cookieName)
	if err != nil || cookie == "" {
		return nil, ErrNoSession
	}

	token, err := jwt.ParseWithClaims(cookie, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signKey), nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrNoSession
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.SessionID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

// RequireSession is the access control gate for authenticated pages:
// requests without a valid session are redirected to the login page.
func (m *Manager) RequireSession(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, sessionID, err := m.AccountID(c)
		if err != nil {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Set(ContextKeyAccountID, accountID)
		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}
