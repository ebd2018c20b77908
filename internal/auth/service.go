// Package auth provides operator dashboard authentication. The dashboard has
// a single operator account: the password is verified against a bcrypt hash
// from configuration and a signed access token is issued.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"skm_agent_backend/platform/apperr"
	"skm_agent_backend/platform/config"
	"skm_agent_backend/platform/logger"
)

const tokenTypeAccess = "access"

// LoginResult carries the issued token back to the dashboard.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Operator  string    `json:"operator"`
}

// Service issues and validates operator access tokens.
type Service struct {
	cfg config.AuthConfig
	log *logger.Logger
}

// New creates a new auth service.
func New(cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// Login verifies the operator password and issues an access token.
func (s *Service) Login(operator, password string) (LoginResult, error) {
	hash := s.cfg.GetOperatorPasswordHash()
	if hash == "" {
		s.log.Warn("login attempted but no operator password hash is configured")
		return LoginResult{}, apperr.Unauthorized("login is not configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	expiresAt := time.Now().Add(s.cfg.GetAccessTokenTTL())
	token, err := s.signToken(operator, expiresAt)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindInternal, "failed to issue token", err)
	}

	s.log.Info("operator logged in", "operator", operator)
	return LoginResult{Token: token, ExpiresAt: expiresAt, Operator: operator}, nil
}

func (s *Service) signToken(operator string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  operator,
		"type": tokenTypeAccess,
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTSecret()))
}

// ParseToken validates a raw access token and returns the operator name.
func ParseToken(rawToken string, cfg config.AuthConfig) (string, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.GetJWTSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token")
	}
	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeAccess {
		return "", errors.New("invalid token")
	}

	operator, _ := claims["sub"].(string)
	if operator == "" {
		return "", errors.New("invalid token")
	}
	return operator, nil
}
