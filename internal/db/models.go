package db

import (
	"strings"
	"time"
)

// MatchAction status values. Rejected and accepted are terminal.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// User table
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time
	Gender       string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Profile holds the matchable attributes of a user, 1:1 with User.
// Owned by the profile-management service; this engine only reads it.
//
// Interests and PreferredGenders are comma-joined free-text values, the
// way the profile service writes them. Coordinates are optional.
type Profile struct {
	UserID           uint64 `gorm:"primaryKey"`
	BirthDate        *time.Time
	Latitude         *float64
	Longitude        *float64
	Location         string    `gorm:"size:128"`
	Occupation       string    `gorm:"size:128"`
	Interests        string    `gorm:"size:1024"`
	PreferredGenders string    `gorm:"size:256"`
	Goals            string    `gorm:"size:256"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// InterestList returns the interests as a slice.
func (p *Profile) InterestList() []string { return SplitList(p.Interests) }

// PreferredGenderList returns the stated gender preference as a slice.
func (p *Profile) PreferredGenderList() []string { return SplitList(p.PreferredGenders) }

// MatchAction is one directional like/pass/super-like decision.
//
// Unique index idx_actor_target enforces at most one row per ordered
// (actor, target) pair; the row is created exactly once and only the
// mutual-match promotion may flip a pending row to accepted.
//
// idx_target_status serves the reciprocal pending-row lookup and the
// mutual-match listing.
type MatchAction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ActorID   uint64    `gorm:"not null;uniqueIndex:idx_actor_target,priority:1"`
	TargetID  uint64    `gorm:"not null;uniqueIndex:idx_actor_target,priority:2;index:idx_target_status,priority:1"`
	Status    string    `gorm:"size:16;not null;index:idx_target_status,priority:2"`
	Score     float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// SplitList parses a comma-joined column into trimmed non-empty values.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// JoinList is the inverse of SplitList, used by the seeder.
func JoinList(items []string) string { return strings.Join(items, ",") }
