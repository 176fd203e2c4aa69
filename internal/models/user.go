package models

import "time"

type User struct {
	BaseModel
	Name         string   `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'"`
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// Token - непрозрачный ключ сессии. Никогда не изменяется,
// устаревает по CreatedAt + TTL.
type Token struct {
	BaseModel
	Token  string `gorm:"uniqueIndex;size:36;not null"`
	UserID uint   `gorm:"not null;index"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE"`
}

// ExpiresAt - момент, после которого токен считается недействительным
func (t *Token) ExpiresAt(ttl time.Duration) time.Time {
	return t.CreatedAt.Add(ttl)
}
