package resettoken

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userTypes "github.com/accounts-portal/accounts-portal/pkg/user-management/types"
)

func testAccount() userTypes.Account {
	return userTypes.Account{
		ID:       primitive.NewObjectID(),
		Username: "david@123",
		Email:    "david@example.com",
		Password: "$argon2id$v=19$m=65536,t=4,p=1$c2FsdA$aGFzaA",
		Timestamps: userTypes.Timestamps{
			LastLogin: 1700000000,
		},
	}
}

func TestTTLAccessor(t *testing.T) {
	g := NewGenerator("test-secret", 48*time.Hour)
	if got := g.TTL(); got != 48*time.Hour {
		t.Errorf("unexpected ttl: %v", got)
	}
}

func TestIssueAndVerify(t *testing.T) {
	g := NewGenerator("test-secret", 24*time.Hour)
	account := testAccount()

	token := g.Issue(account)
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !g.Verify(account, token) {
		t.Error("expected freshly issued token to verify")
	}
}

func TestTokenBoundToAccount(t *testing.T) {
	g := NewGenerator("test-secret", 24*time.Hour)
	accountA := testAccount()
	accountB := testAccount()

	token := g.Issue(accountA)
	if g.Verify(accountB, token) {
		t.Error("token for account A must not validate for account B")
	}
}

func TestTokenInvalidatedByPasswordChange(t *testing.T) {
	g := NewGenerator("test-secret", 24*time.Hour)
	account := testAccount()

	token := g.Issue(account)
	account.Password = "$argon2id$v=19$m=65536,t=4,p=1$bmV3c2FsdA$bmV3aGFzaA"
	if g.Verify(account, token) {
		t.Error("token must stop validating after password change")
	}
}

func TestTokenInvalidatedByLogin(t *testing.T) {
	g := NewGenerator("test-secret", 24*time.Hour)
	account := testAccount()

	token := g.Issue(account)
	account.Timestamps.LastLogin = 1700009999
	if g.Verify(account, token) {
		t.Error("token must stop validating after a new login")
	}
}

func TestTokenExpiry(t *testing.T) {
	g := NewGenerator("test-secret", time.Hour)
	account := testAccount()

	issuedAt := time.Now()
	g.now = func() time.Time { return issuedAt }
	token := g.Issue(account)

	t.Run("within ttl", func(t *testing.T) {
		g.now = func() time.Time { return issuedAt.Add(30 * time.Minute) }
		if !g.Verify(account, token) {
			t.Error("expected token to be valid within ttl")
		}
	})

	t.Run("after ttl", func(t *testing.T) {
		g.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
		if g.Verify(account, token) {
			t.Error("expected token to be rejected after ttl")
		}
	})

	t.Run("timestamp in the future", func(t *testing.T) {
		g.now = func() time.Time { return issuedAt.Add(-time.Minute) }
		if g.Verify(account, token) {
			t.Error("expected token with future timestamp to be rejected")
		}
	})
}

func TestMalformedTokens(t *testing.T) {
	g := NewGenerator("test-secret", time.Hour)
	account := testAccount()

	for _, token := range []string{"", "justonepart", "!!-abc", "zzzz-"} {
		if g.Verify(account, token) {
			t.Errorf("expected malformed token %q to be rejected", token)
		}
	}
}

func TestDifferentSecrets(t *testing.T) {
	account := testAccount()
	token := NewGenerator("secret-a", time.Hour).Issue(account)
	if NewGenerator("secret-b", time.Hour).Verify(account, token) {
		t.Error("token must not verify under a different secret")
	}
}
