// Package domain contains core types for accounts and sessions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Email        string       `json:"email" gorm:"type:text;not null;uniqueIndex"`
	DisplayName  string       `json:"display_name" gorm:"type:text"`
	PasswordHash string       `json:"-" gorm:"column:password_hash;type:text;not null"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }

// Session is a server-side login session. Only the SHA-256 hash of the token
// is stored; the raw token lives in the client cookie.
type Session struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID     snowflake.ID `json:"user_id" gorm:"column:user_id;not null;index"`
	TokenHash  string       `json:"-" gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	UserAgent  string       `json:"user_agent" gorm:"type:text"`
	IPAddress  string       `json:"ip_address" gorm:"column:ip_address;type:text"`
	ExpiresAt  time.Time    `json:"expires_at" gorm:"not null"`
	RevokedAt  *time.Time   `json:"revoked_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt time.Time    `json:"last_seen_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string { return "sessions" }
