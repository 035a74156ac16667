package model

import "time"

// Admin roles.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Admin represents a dashboard user.
type Admin struct {
	ID           string    `json:"id" bson:"-"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	Role         string    `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse is returned after successful admin login.
type AdminLoginResponse struct {
	Token       string   `json:"token"`
	Admin       Admin    `json:"admin"`
	Permissions []string `json:"permissions"`
}

// TestNotificationRequest asks for a test mail to be sent to an address.
type TestNotificationRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}
