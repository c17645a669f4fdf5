package user

import (
	"strings"
	"time"

	"license-tracker/pkg/authz"
)

type User struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(20);not null" json:"username"`
	UsernameKey  string    `gorm:"column:username_key;type:varchar(20);uniqueIndex;not null" json:"-"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(100);not null" json:"-"`
	Role         string    `gorm:"column:role;type:varchar(16);index;not null" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Principal() authz.Principal {
	return authz.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// usernameKey is the case-folded form used for uniqueness and lookup.
func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
