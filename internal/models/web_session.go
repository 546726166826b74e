package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// WebSession is an opaque server-side session backing the session cookie.
type WebSession struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	IPAddress      string    `json:"ipAddress,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	IsActive       bool      `json:"isActive"`
}

// NewWebSession creates a session with a random token id.
func NewWebSession(userID, ipAddress, userAgent string, ttl time.Duration) (*WebSession, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &WebSession{
		ID:             token,
		UserID:         userID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		IsActive:       true,
	}, nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *WebSession) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
