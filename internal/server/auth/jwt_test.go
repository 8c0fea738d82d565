package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dkozyrev/classauth/internal/common"
	"github.com/dkozyrev/classauth/internal/server/models"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	c := NewCodec("access-secret", time.Minute)

	tok, err := c.Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.PrincipalID != "p1" || claims.StudentID != "s12345" || claims.Role != models.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti claim")
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	c := NewCodec("access-secret", time.Minute)

	a, err := c.Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	b, err := c.Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if a == b {
		t.Fatal("two tokens for the same principal must differ (jti)")
	}
}

func TestVerify_KeySeparation(t *testing.T) {
	access := NewCodec("access-secret", time.Minute)
	refresh := NewCodec("refresh-secret", time.Hour)

	tok, err := access.Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := refresh.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("token signed with the access key verified under the refresh key: %v", err)
	}
}

func TestVerify_ExpiredIsDistinct(t *testing.T) {
	c := NewCodec("access-secret", -time.Minute)

	tok, err := c.Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = c.Verify(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	c := NewCodec("access-secret", time.Minute)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := c.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("Verify(%q): want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestPeekClaims_IgnoresSignature(t *testing.T) {
	c := NewCodec("some-secret", time.Minute)

	tok, err := c.Issue("p1", "s12345", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// PeekClaims has no key at all, so a valid signature is not required.
	claims, err := PeekClaims(tok)
	if err != nil {
		t.Fatalf("PeekClaims error: %v", err)
	}
	if claims.PrincipalID != "p1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := PeekClaims("not-a-token"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for garbage, got %v", err)
	}
}
