package webhandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accounts-portal/accounts-portal/pkg/session"
)

func (h *HttpEndpoints) AddPageRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.indexPage)
	rg.GET("/home", h.sessions.RequireSession("/login"), h.homePage)
}

// indexPage is the unauthenticated landing page.
func (h *HttpEndpoints) indexPage(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", gin.H{})
}

// homePage is the landing page for logged in accounts.
func (h *HttpEndpoints) homePage(c *gin.Context) {
	accountID := c.MustGet(session.ContextKeyAccountID).(string)

	account, err := h.accountDB.GetAccountByID(accountID)
	if err != nil {
		slog.Error("failed to load account for home page", slog.String("accountID", accountID), slog.String("error", err.Error()))
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.render(c, http.StatusOK, "home.html", gin.H{
		"firstName": account.FirstName,
		"username":  account.Username,
	})
}

// NotFoundHandle renders the custom 404 page.
func (h *HttpEndpoints) NotFoundHandle(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{})
}

// RecoveryHandle renders the custom 500 page on panics.
func (h *HttpEndpoints) RecoveryHandle(c *gin.Context, err any) {
	slog.Error("panic during request", slog.Any("error", err))
	h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
}
