package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a blog author. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255" json:"email"`
	FirstName    string    `gorm:"size:64" json:"first_name"`
	LastName     string    `gorm:"size:64" json:"last_name"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Provider     string    `gorm:"size:32" json:"provider"`
	ProviderID   string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Posts        []Post    `gorm:"foreignKey:AuthorID" json:"-"`
	Comments     []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// BeforeDelete removes everything the user authored. Comments left by other
// users on the author's posts go away with the posts themselves. Foreign key
// constraints are disabled during migration, so the cascade lives here.
func (u *User) BeforeDelete(tx *gorm.DB) error {
	if err := tx.Where("author_id = ?", u.ID).Delete(&Comment{}).Error; err != nil {
		return err
	}
	sub := tx.Session(&gorm.Session{NewDB: true}).Model(&Post{}).Select("id").Where("author_id = ?", u.ID)
	if err := tx.Where("post_id IN (?)", sub).Delete(&Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("author_id = ?", u.ID).Delete(&Post{}).Error
}
