package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/minitwit/config"
	"github.com/d60-Lab/minitwit/internal/apperr"
)

// CredentialService 负责口令哈希与会话令牌；核心关系链只接收已认证的用户 ID。
type CredentialService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewCredentialService(cfg config.JWTConfig) *CredentialService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		cost:   cost,
		now:    time.Now,
	}
}

// Hash returns the bcrypt hash stored as the user's opaque credential.
func (s *CredentialService) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Wrap(apperr.ErrInvalidInput, err)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *CredentialService) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return apperr.Wrap(apperr.ErrInvalidCredentials, err)
	}
	return nil
}

// IssueToken signs an HS256 token whose subject is userID.
func (s *CredentialService) IssueToken(userID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken validates signature, issuer and expiry and returns the subject.
func (s *CredentialService) ParseToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", apperr.Wrap(apperr.ErrInvalidCredentials, err)
	}
	if claims.Subject == "" {
		return "", apperr.Wrap(apperr.ErrInvalidCredentials, errors.New("token has no subject"))
	}
	return claims.Subject, nil
}
