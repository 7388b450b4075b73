package utils

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("stylist-7", RoleStylist, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "stylist-7" || claims.Role != RoleStylist {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := GenerateToken("client-1", RoleClient, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(tok); err == nil {
		t.Fatalf("expired token accepted")
	}
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatalf("garbage accepted")
	}
}
