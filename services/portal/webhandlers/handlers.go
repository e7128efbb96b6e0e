package webhandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accounts-portal/accounts-portal/pkg/session"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/resettoken"
	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
)

// AccountStore is what the flow controllers need from the repository;
// *accounts.AccountDBService satisfies it.
type AccountStore interface {
	CreateAccount(account userTypes.Account) (userTypes.Account, error)
	GetAccountByID(id string) (userTypes.Account, error)
	GetAccountByUsername(username string) (userTypes.Account, error)
	GetAccountByEmail(email string) (userTypes.Account, error)
	EmailInUse(email string) (bool, error)
	UpdatePassword(accountID string, newHash string) error
	SaveLastLogin(accountID string) error
	DeleteSessionsForAccount(accountID string) (int64, error)
}

// ResetMailer delivers the reset link; *messaging.EmailService satisfies it.
type ResetMailer interface {
	SendPasswordResetEmail(to string, name string, resetURL string, validUntilHours string) bool
}

type HttpEndpoints struct {
	accountDB   AccountStore
	sessions    *session.Manager
	resetTokens *resettoken.Generator
	mailer      ResetMailer
	baseURL     string
}

func NewHTTPHandler(
	accountDB AccountStore,
	sessions *session.Manager,
	resetTokens *resettoken.Generator,
	mailer ResetMailer,
	baseURL string,
) *HttpEndpoints {
	return &HttpEndpoints{
		accountDB:   accountDB,
		sessions:    sessions,
		resetTokens: resetTokens,
		mailer:      mailer,
		baseURL:     baseURL,
	}
}

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
