package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Reviewer handles session token validation
type Reviewer struct {
	secret   []byte
	audience string // Optional audience the token must carry
}

// NewReviewer creates a new Reviewer instance
func NewReviewer(secret string) *Reviewer {
	return &Reviewer{
		secret: []byte(secret),
	}
}

// NewReviewerWithAudience creates a new Reviewer instance with audience
func NewReviewerWithAudience(secret, audience string) *Reviewer {
	return &Reviewer{
		secret:   []byte(secret),
		audience: audience,
	}
}

// ExtractUserInfo validates a token and extracts user information
func (r *Reviewer) ExtractUserInfo(_ context.Context, tokenString string) (*UserContext, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	if len(r.secret) == 0 {
		return nil, fmt.Errorf("token signing secret is not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if r.audience != "" {
		opts = append(opts, jwt.WithAudience(r.audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return &UserContext{IsAuthenticated: false}, nil
		}
		return nil, fmt.Errorf("token review failed: %w", err)
	}

	if claims.Subject == "" {
		return &UserContext{IsAuthenticated: false}, nil
	}

	return &UserContext{
		UserID:          claims.Subject,
		Email:           claims.Email,
		IsAuthenticated: true,
	}, nil
}

// NewSessionToken signs an HS256 session token for userID that expires after ttl.
func NewSessionToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
