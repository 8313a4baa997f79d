package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, db *gorm.DB, session *Session) error
	FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	Revoke(ctx context.Context, db *gorm.DB, id int64, at time.Time) error
	UpdateLastSeen(ctx context.Context, db *gorm.DB, id int64, at time.Time) error
}
