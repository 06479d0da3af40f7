package model

import "time"

// SkillLevel is the self-declared proficiency of a user.
type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
)

// User is an account that owns content and quiz sessions.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     *string    `json:"full_name,omitempty"`
	SkillLevel   SkillLevel `json:"skill_level"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"omitempty,max=100"`
}

// LoginRequest is the payload for password login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
