// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a registered account. Email and nickname are each unique.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Nickname     string    `gorm:"uniqueIndex;not null" json:"nickname"`
	Password     string    `gorm:"not null" json:"-"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
