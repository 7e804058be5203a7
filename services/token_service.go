package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs the bearer tokens handed out by POST /jwt.
// The only claim the guards rely on is "email".
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *TokenService) Secret() []byte {
	return s.secret
}

// Issue signs every field of payload as a claim, the way the web client
// posts its whole user object, and stamps iat/exp.
func (s *TokenService) Issue(payload map[string]interface{}) (string, error) {
	email, _ := payload["email"].(string)
	if strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("email claim is required")
	}

	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	now := s.now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// EmailFromClaims pulls the email claim out of a verified token.
func EmailFromClaims(c jwt.Claims) (string, error) {
	claims, ok := c.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}
