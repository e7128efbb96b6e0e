package webhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accountsDB "github.com/accounts-portal/accounts-portal/pkg/db/accounts"
	"github.com/accounts-portal/accounts-portal/pkg/metrics"
	"github.com/accounts-portal/accounts-portal/pkg/session"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/pwhash"
	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
	umUtils "github.com/accounts-portal/accounts-portal/pkg/user-management/utils"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/validation"
)

// notification literals, enforced by tests
const (
	msgRegistrationSuccess = "Registration is successful"
	msgLoginSuccess        = "Logged in successfully"
	msgLoginFailed         = "Invalid username or password"
)

func (h *HttpEndpoints) AddAuthRoutes(rg *gin.RouterGroup) {
	rg.GET("/login", h.loginPage)
	rg.POST("/login", h.login)
	rg.GET("/register", h.registerPage)
	rg.POST("/register", h.register)
	rg.POST("/logout", h.sessions.RequireSession("/login"), h.logout)
}

func (h *HttpEndpoints) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{})
}

func (h *HttpEndpoints) login(c *gin.Context) {
	username := umUtils.SanitizeUsername(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		h.failLogin(c, username, "missing required fields")
		return
	}

	account, err := h.accountDB.GetAccountByUsername(username)
	if err != nil {
		// same generic outcome as a wrong password, no user enumeration
		slog.Warn("login attempt with unknown username", slog.String("username", username))
		h.failLogin(c, username, "unknown username")
		return
	}

	match, err := pwhash.ComparePasswordWithHash(account.Password, password)
	if err != nil || !match {
		slog.Warn("login attempt with wrong password", slog.String("username", username))
		h.failLogin(c, username, "wrong password")
		return
	}

	if err := h.accountDB.SaveLastLogin(account.ID.Hex()); err != nil {
		slog.Error("failed to save last login", slog.String("error", err.Error()))
	}

	if err := h.sessions.Start(c, account.ID.Hex()); err != nil {
		slog.Error("failed to start session", slog.String("error", err.Error()))
		h.render(c, http.StatusOK, "login.html", gin.H{"username": username},
			Flash{Level: flashError, Message: msgLoginFailed})
		return
	}

	metrics.RecordLogin(metrics.OutcomeSuccess)
	slog.Info("login successful", slog.String("accountID", account.ID.Hex()))

	setFlash(c, flashSuccess, msgLoginSuccess)
	c.Redirect(http.StatusFound, "/home")
}

// failLogin re-renders the form with exactly one generic error notification.
func (h *HttpEndpoints) failLogin(c *gin.Context, username string, reason string) {
	metrics.RecordLogin(metrics.OutcomeFailure)
	slog.Debug("login failed", slog.String("reason", reason))
	randomWait(100, 300)
	h.render(c, http.StatusOK, "login.html", gin.H{"username": username},
		Flash{Level: flashError, Message: msgLoginFailed})
}

func (h *HttpEndpoints) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{})
}

func (h *HttpEndpoints) register(c *gin.Context) {
	input := validation.RegistrationInput{
		FirstName:            c.PostForm("first_name"),
		LastName:             c.PostForm("last_name"),
		Username:             c.PostForm("username"),
		Email:                c.PostForm("email"),
		Password:             c.PostForm("password1"),
		PasswordConfirmation: c.PostForm("password2"),
	}

	input, fieldErrors := validation.ValidateRegistration(input, func(email string) bool {
		inUse, err := h.accountDB.EmailInUse(email)
		if err != nil {
			// the unique index still catches the race, fail open here
			slog.Error("failed to check email uniqueness", slog.String("error", err.Error()))
			return false
		}
		return inUse
	})
	if !fieldErrors.IsEmpty() {
		h.failRegistration(c, input, fieldErrors)
		return
	}

	hashedPassword, err := pwhash.HashPassword(input.Password)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
		return
	}

	account, err := h.accountDB.CreateAccount(userTypes.Account{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  hashedPassword,
	})
	if err != nil {
		// the repository's unique indexes surface as field errors
		fieldErrors = validation.FieldErrors{}
		switch {
		case errors.Is(err, accountsDB.ErrEmailTaken):
			fieldErrors.Add(validation.FieldEmail, validation.MsgEmailInUse)
		case errors.Is(err, accountsDB.ErrUsernameTaken):
			fieldErrors.Add(validation.FieldUsername, "Username is already taken.")
		default:
			slog.Error("failed to create account", slog.String("error", err.Error()))
			h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
			return
		}
		h.failRegistration(c, input, fieldErrors)
		return
	}
	metrics.IncAccountCount()

	if err := h.sessions.Start(c, account.ID.Hex()); err != nil {
		// account exists, the user can still log in manually
		slog.Error("failed to start session after registration", slog.String("error", err.Error()))
		setFlash(c, flashSuccess, msgRegistrationSuccess)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	metrics.RecordRegistration(metrics.OutcomeSuccess)
	slog.Info("registration successful", slog.String("accountID", account.ID.Hex()), slog.String("username", account.Username))

	setFlash(c, flashSuccess, msgRegistrationSuccess)
	c.Redirect(http.StatusFound, "/home")
}

func (h *HttpEndpoints) failRegistration(c *gin.Context, input validation.RegistrationInput, fieldErrors validation.FieldErrors) {
	metrics.RecordRegistration(metrics.OutcomeFailure)
	h.render(c, http.StatusOK, "register.html", gin.H{
		"errors": fieldErrors,
		"values": gin.H{
			"first_name": input.FirstName,
			"last_name":  input.LastName,
			"username":   input.Username,
			"email":      input.Email,
		},
	})
}

func (h *HttpEndpoints) logout(c *gin.Context) {
	h.sessions.End(c)
	slog.Info("logout", slog.String("accountID", c.GetString(session.ContextKeyAccountID)))
	c.Redirect(http.StatusFound, "/")
}
