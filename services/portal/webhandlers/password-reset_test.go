package webhandlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/accounts-portal/accounts-portal/pkg/user-management/pwhash"
	"github.com/accounts-portal/accounts-portal/pkg/user-management/validation"
)

func TestPasswordResetRequestPage(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/password-reset/")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="email"`) {
		t.Error("expected email field in page")
	}
}

func TestPasswordResetRequestSendsLink(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")

	w := env.postForm(t, "/password-reset/", url.Values{"email": {"david@example.com"}})

	if target := redirectTarget(t, w); target != "/password-reset-done" {
		t.Errorf("unexpected redirect target: %s", target)
	}
	if len(env.mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(env.mailer.sent))
	}
	mail := env.mailer.sent[0]
	if mail.to != "david@example.com" {
		t.Errorf("unexpected recipient: %s", mail.to)
	}
	if !strings.Contains(mail.resetURL, "/password-reset/confirm/") {
		t.Errorf("unexpected reset URL: %s", mail.resetURL)
	}
	if !strings.Contains(mail.resetURL, encodeUID(account.ID.Hex())) {
		t.Error("expected the account identifier in the reset URL")
	}
	// the stated validity follows the generator's configured ttl
	if mail.validUntilHours != "1" {
		t.Errorf("unexpected validity hours: %q", mail.validUntilHours)
	}
}

func TestPasswordResetRequestUppercaseEmailStillMatches(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "david@123", "david@example.com", "Test#12345")

	env.postForm(t, "/password-reset/", url.Values{"email": {"  David@Example.COM "}})

	if len(env.mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(env.mailer.sent))
	}
}

func TestPasswordResetRequestUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.postForm(t, "/password-reset/", url.Values{"email": {"nobody@example.com"}})

	// same outcome as for an enrolled address, nothing is revealed
	if target := redirectTarget(t, w); target != "/password-reset-done" {
		t.Errorf("unexpected redirect target: %s", target)
	}
	if len(env.mailer.sent) != 0 {
		t.Error("no mail should be sent for an unknown address")
	}
}

func TestPasswordResetConfirmPage(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")
	token := env.resetTokens.Issue(account)

	w := env.get(t, "/password-reset/confirm/"+encodeUID(account.ID.Hex())+"/"+token+"/")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `name="password1"`) || !strings.Contains(body, `name="password2"`) {
		t.Error("expected the new password form")
	}
	if !strings.Contains(body, "david@example.com") {
		t.Error("expected the account email on the page")
	}
}

func TestPasswordResetConfirmPageRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")

	w := env.get(t, "/password-reset/confirm/"+encodeUID(account.ID.Hex())+"/not-a-token/")
	if target := redirectTarget(t, w); target != "/password-reset/" {
		t.Errorf("unexpected redirect target: %s", target)
	}
}

func TestPasswordResetConfirmPageRejectsBadIdentifier(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/password-reset/confirm/not*base64/whatever/")
	if target := redirectTarget(t, w); target != "/password-reset/" {
		t.Errorf("unexpected redirect target: %s", target)
	}
}

func TestPasswordResetConfirmChangesPassword(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")
	token := env.resetTokens.Issue(account)
	confirmPath := "/password-reset/confirm/" + encodeUID(account.ID.Hex()) + "/" + token + "/"

	w := env.postForm(t, confirmPath, url.Values{
		"password1": {"Renewed#678"},
		"password2": {"Renewed#678"},
	})

	if target := redirectTarget(t, w); target != "/login" {
		t.Errorf("unexpected redirect target: %s", target)
	}

	updated, err := env.accounts.GetAccountByID(account.ID.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match, _ := pwhash.ComparePasswordWithHash(updated.Password, "Test#12345"); match {
		t.Error("old password should no longer match")
	}
	if match, err := pwhash.ComparePasswordWithHash(updated.Password, "Renewed#678"); err != nil || !match {
		t.Error("new password should match")
	}
}

func TestPasswordResetConfirmMismatchKeepsForm(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")
	token := env.resetTokens.Issue(account)
	confirmPath := "/password-reset/confirm/" + encodeUID(account.ID.Hex()) + "/" + token + "/"

	w := env.postForm(t, confirmPath, url.Values{
		"password1": {"Renewed#678"},
		"password2": {"Different#9"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), validation.MsgPasswordsMismatch) {
		t.Errorf("expected %q in page", validation.MsgPasswordsMismatch)
	}

	updated, err := env.accounts.GetAccountByID(account.ID.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match, _ := pwhash.ComparePasswordWithHash(updated.Password, "Test#12345"); !match {
		t.Error("password should be unchanged after a mismatch")
	}
}

func TestPasswordResetConfirmWeakPasswordRejected(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")
	token := env.resetTokens.Issue(account)
	confirmPath := "/password-reset/confirm/" + encodeUID(account.ID.Hex()) + "/" + token + "/"

	w := env.postForm(t, confirmPath, url.Values{
		"password1": {"short"},
		"password2": {"short"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), validation.MsgPasswordTooWeak) {
		t.Errorf("expected %q in page", validation.MsgPasswordTooWeak)
	}
}

func TestPasswordResetTokenSingleUse(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")
	token := env.resetTokens.Issue(account)
	confirmPath := "/password-reset/confirm/" + encodeUID(account.ID.Hex()) + "/" + token + "/"

	env.postForm(t, confirmPath, url.Values{
		"password1": {"Renewed#678"},
		"password2": {"Renewed#678"},
	})

	// the password change invalidates the link
	w := env.postForm(t, confirmPath, url.Values{
		"password1": {"Another#999"},
		"password2": {"Another#999"},
	})
	if target := redirectTarget(t, w); target != "/password-reset/" {
		t.Errorf("unexpected redirect target: %s", target)
	}
}

func TestPasswordResetRevokesExistingSessions(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "david@123", "david@example.com", "Test#12345")

	loginResp := env.postForm(t, "/login", url.Values{
		"username": {"david@123"},
		"password": {"Test#12345"},
	})
	cookie := sessionCookie(t, loginResp)

	// the login updated the account, issue the token for the current state
	account, err := env.accounts.GetAccountByID(account.ID.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token := env.resetTokens.Issue(account)
	env.postForm(t, "/password-reset/confirm/"+encodeUID(account.ID.Hex())+"/"+token+"/", url.Values{
		"password1": {"Renewed#678"},
		"password2": {"Renewed#678"},
	})

	if len(env.sessionStore.sessions) != 0 {
		t.Error("expected sessions to be revoked after the reset")
	}
	w := env.get(t, "/home", cookie)
	if target := redirectTarget(t, w); target != "/login" {
		t.Errorf("unexpected redirect target: %s", target)
	}
}

// TestPasswordResetFullFlow drives the whole journey through the mailed link.
func TestPasswordResetFullFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "david@123", "david@example.com", "Test#12345")

	env.postForm(t, "/password-reset/", url.Values{"email": {"david@example.com"}})
	if len(env.mailer.sent) != 1 {
		t.Fatal("expected a reset mail")
	}

	link := strings.TrimPrefix(env.mailer.sent[0].resetURL, "http://localhost:8080")
	env.postForm(t, link, url.Values{
		"password1": {"Renewed#678"},
		"password2": {"Renewed#678"},
	})

	// old credentials no longer work
	failed := env.postForm(t, "/login", url.Values{
		"username": {"david@123"},
		"password": {"Test#12345"},
	})
	if failed.Code != http.StatusOK || !strings.Contains(failed.Body.String(), msgLoginFailed) {
		t.Error("expected login with the old password to fail")
	}

	// new credentials do
	ok := env.postForm(t, "/login", url.Values{
		"username": {"david@123"},
		"password": {"Renewed#678"},
	})
	if target := redirectTarget(t, ok); target != "/home" {
		t.Errorf("unexpected redirect target: %s", target)
	}
}
