package webhandlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/accounts-portal/accounts-portal/pkg/metrics"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/pwhash"
	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
	umUtils "github.com/accounts-portal/accounts-portal/pkg/user-management/utils"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/validation"
)

const (
	msgResetLinkInvalid  = "The password reset link is invalid or has expired"
	msgPasswordResetDone = "Password reset successful"
	resetRequestStage    = "request"
	resetConfirmStage    = "confirm"
)

func (h *HttpEndpoints) AddPasswordResetRoutes(rg *gin.RouterGroup) {
	rg.GET("/password-reset/", h.passwordResetRequestPage)
	rg.POST("/password-reset/", h.passwordResetRequest)
	rg.GET("/password-reset/confirm/:uid/:token/", h.passwordResetConfirmPage)
	rg.POST("/password-reset/confirm/:uid/:token/", h.passwordResetConfirm)
	rg.GET("/password-reset-done", h.passwordResetDonePage)
}

func (h *HttpEndpoints) passwordResetRequestPage(c *gin.Context) {
	h.render(c, http.StatusOK, "password-reset.html", gin.H{})
}

// passwordResetRequest always ends on the done page; whether the address is
// enrolled must not be observable from the response.
func (h *HttpEndpoints) passwordResetRequest(c *gin.Context) {
	email := umUtils.SanitizeEmail(c.PostForm("email"))

	account, err := h.accountDB.GetAccountByEmail(email)
	if err != nil {
		slog.Warn("password reset requested for unknown email", slog.String("email", email))
		metrics.RecordPasswordReset(resetRequestStage, metrics.OutcomeFailure)
		randomWait(100, 300)
		c.Redirect(http.StatusFound, "/password-reset-done")
		return
	}

	token := h.resetTokens.Issue(account)
	resetURL := h.baseURL + "/password-reset/confirm/" + encodeUID(account.ID.Hex()) + "/" + token + "/"
	validHours := strconv.FormatInt(int64(h.resetTokens.TTL().Hours()), 10)

	// delivery outcome is swallowed, the flow never depends on the transport
	h.mailer.SendPasswordResetEmail(account.Email, account.FirstName, resetURL, validHours)

	metrics.RecordPasswordReset(resetRequestStage, metrics.OutcomeSuccess)
	slog.Info("password reset initiated", slog.String("accountID", account.ID.Hex()))
	c.Redirect(http.StatusFound, "/password-reset-done")
}

func (h *HttpEndpoints) passwordResetConfirmPage(c *gin.Context) {
	account, ok := h.accountFromResetLink(c)
	if !ok {
		return
	}

	h.render(c, http.StatusOK, "password-reset-confirm.html", gin.H{
		"uid":   c.Param("uid"),
		"token": c.Param("token"),
		"email": account.Email,
	})
}

func (h *HttpEndpoints) passwordResetConfirm(c *gin.Context) {
	account, ok := h.accountFromResetLink(c)
	if !ok {
		return
	}

	password := c.PostForm("password1")
	confirmation := c.PostForm("password2")

	if fieldErrors := validation.ValidateNewPassword(password, confirmation); !fieldErrors.IsEmpty() {
		metrics.RecordPasswordReset(resetConfirmStage, metrics.OutcomeFailure)
		h.render(c, http.StatusOK, "password-reset-confirm.html", gin.H{
			"uid":    c.Param("uid"),
			"token":  c.Param("token"),
			"email":  account.Email,
			"errors": fieldErrors,
		})
		return
	}

	hashedPassword, err := pwhash.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
		return
	}

	if err := h.accountDB.UpdatePassword(account.ID.Hex(), hashedPassword); err != nil {
		slog.Error("failed to update password", slog.String("accountID", account.ID.Hex()), slog.String("error", err.Error()))
		h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
		return
	}

	// existing sessions are bound to the old credentials, revoke them
	if removed, err := h.accountDB.DeleteSessionsForAccount(account.ID.Hex()); err != nil {
		slog.Error("failed to revoke sessions after password reset", slog.String("accountID", account.ID.Hex()), slog.String("error", err.Error()))
	} else if removed > 0 {
		slog.Info("revoked sessions after password reset", slog.String("accountID", account.ID.Hex()), slog.Int64("count", removed))
	}

	metrics.RecordPasswordReset(resetConfirmStage, metrics.OutcomeSuccess)
	slog.Info("password reset successful", slog.String("accountID", account.ID.Hex()))

	setFlash(c, flashSuccess, msgPasswordResetDone)
	c.Redirect(http.StatusFound, "/login")
}

func (h *HttpEndpoints) passwordResetDonePage(c *gin.Context) {
	h.render(c, http.StatusOK, "password-reset-done.html", gin.H{})
}

// accountFromResetLink resolves and verifies the identifier/token pair from
// the URL. On failure the caller is already redirected to the request step.
func (h *HttpEndpoints) accountFromResetLink(c *gin.Context) (account userTypes.Account, ok bool) {
	accountID, err := decodeUID(c.Param("uid"))
	if err != nil {
		return h.rejectResetLink(c, "bad identifier")
	}

	account, err = h.accountDB.GetAccountByID(accountID)
	if err != nil {
		return h.rejectResetLink(c, "unknown account")
	}

	if !h.resetTokens.Verify(account, c.Param("token")) {
		return h.rejectResetLink(c, "invalid token")
	}
	return account, true
}

func (h *HttpEndpoints) rejectResetLink(c *gin.Context, reason string) (userTypes.Account, bool) {
	slog.Warn("invalid password reset link", slog.String("reason", reason))
	metrics.RecordPasswordReset(resetConfirmStage, metrics.OutcomeFailure)
	randomWait(100, 300)
	setFlash(c, flashError, msgResetLinkInvalid)
	c.Redirect(http.StatusFound, "/password-reset/")
	return userTypes.Account{}, false
}
