package models

import (
	"context"
	"time"
)

// ResultSet is the stored outcome of one search for a session.
type ResultSet struct {
	SessionID     string       `json:"sessionId"`
	Keyword       string       `json:"keyword"`
	LocationInput string       `json:"locationInput"`
	LocationType  LocationType `json:"locationType"`
	Location      Location     `json:"location"`
	Businesses    []Business   `json:"businesses"`
	CreatedAt     time.Time    `json:"createdAt"`
	ExpiresAt     time.Time    `json:"expiresAt"`
}

// IsExpired checks if the result set has outlived its TTL
func (r *ResultSet) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// ResultSetRepository stores one result set per session; Save replaces.
type ResultSetRepository interface {
	Save(ctx context.Context, rs *ResultSet) error
	Get(ctx context.Context, sessionID string) (*ResultSet, error)
	Delete(ctx context.Context, sessionID string) error
}
