package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"skm_agent_backend/platform/apperr"
	"skm_agent_backend/platform/logger"
)

type stubAuthConfig struct {
	secret string
	ttl    time.Duration
	hash   string
}

func (c stubAuthConfig) GetJWTSecret() string             { return c.secret }
func (c stubAuthConfig) GetAccessTokenTTL() time.Duration { return c.ttl }
func (c stubAuthConfig) GetOperatorPasswordHash() string  { return c.hash }

func testConfig(t *testing.T, password string) stubAuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return stubAuthConfig{secret: "test-secret", ttl: time.Hour, hash: string(hash)}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	cfg := testConfig(t, "hunter2")
	svc := New(cfg, logger.New("test"))

	result, err := svc.Login("priya", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Operator != "priya" {
		t.Errorf("Operator = %q, want priya", result.Operator)
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Error("token already expired")
	}

	operator, err := ParseToken(result.Token, cfg)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if operator != "priya" {
		t.Errorf("parsed operator = %q, want priya", operator)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := New(testConfig(t, "hunter2"), logger.New("test"))

	_, err := svc.Login("priya", "letmein")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
}

func TestLoginRejectsWhenNoHashConfigured(t *testing.T) {
	cfg := stubAuthConfig{secret: "test-secret", ttl: time.Hour}
	svc := New(cfg, logger.New("test"))

	_, err := svc.Login("priya", "anything")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	cfg := testConfig(t, "hunter2")
	svc := New(cfg, logger.New("test"))

	result, err := svc.Login("priya", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	other := stubAuthConfig{secret: "different-secret", ttl: time.Hour}
	if _, err := ParseToken(result.Token, other); err == nil {
		t.Fatal("ParseToken() accepted a token signed with another secret")
	}
}
