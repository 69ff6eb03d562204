package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/service"

	"go.uber.org/zap"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	svc, err := service.NewAuthService("dashboard", "demo-secret", "test-jwt-secret", time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func TestIssueToken_ValidCredentials(t *testing.T) {
	svc := newAuthService(t)

	resp, err := svc.IssueToken(&domain.TokenRequest{ClientID: "dashboard", ClientSecret: "demo-secret"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "Bearer" {
		t.Errorf("unexpected token response: %+v", resp)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expected 3600s expiry, got %d", resp.ExpiresIn)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Sub != "dashboard" {
		t.Errorf("expected sub 'dashboard', got %q", claims.Sub)
	}
}

func TestIssueToken_BadCredentials(t *testing.T) {
	svc := newAuthService(t)

	cases := []domain.TokenRequest{
		{ClientID: "dashboard", ClientSecret: "wrong"},
		{ClientID: "intruder", ClientSecret: "demo-secret"},
		{},
	}
	for _, req := range cases {
		_, err := svc.IssueToken(&req)
		var unauthorized *domain.ErrUnauthorized
		if !errors.As(err, &unauthorized) {
			t.Errorf("expected ErrUnauthorized for %+v, got %v", req, err)
		}
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ValidateAccessToken("not.a.jwt")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateAccessToken_WrongKey(t *testing.T) {
	svc := newAuthService(t)
	other, err := service.NewAuthService("dashboard", "demo-secret", "different-key", time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	resp, err := other.IssueToken(&domain.TokenRequest{ClientID: "dashboard", ClientSecret: "demo-secret"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Fatal("expected rejection of token signed with another key")
	}
}
