package signon

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the routing fields decoded from a room credential. Signature
// verification happens upstream; this client only reads the claims.
type Claims struct {
	Audience  string
	Issuer    string
	ExpiresAt time.Time
	RoomID    string
	IsHost    bool
	UserID    string // empty for hosts
}

type credentialClaims struct {
	QuizID string `json:"quizId"`
	IsHost bool   `json:"isHost"`
	UserID string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// DecodeCredential extracts the claims from a credential without
// verifying its signature.
func DecodeCredential(token string) (Claims, error) {
	var raw credentialClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &raw); err != nil {
		return Claims{}, fmt.Errorf("decode credential: %w", err)
	}
	if raw.QuizID == "" {
		return Claims{}, fmt.Errorf("decode credential: missing quizId claim")
	}
	if !raw.IsHost && raw.UserID == "" {
		return Claims{}, fmt.Errorf("decode credential: participant credential missing userId claim")
	}

	claims := Claims{
		RoomID: raw.QuizID,
		IsHost: raw.IsHost,
		UserID: raw.UserID,
	}
	if len(raw.Audience) > 0 {
		claims.Audience = raw.Audience[0]
	}
	claims.Issuer = raw.Issuer
	if raw.ExpiresAt != nil {
		claims.ExpiresAt = raw.ExpiresAt.Time
	}
	return claims, nil
}
