package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates the access roles recognised by the API guard.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleCoach UserRole = "COACH"
	RoleCoder UserRole = "CODER"
)

// JWTClaims represents the JWT payload for access tokens issued by the
// identity collaborator. This service only verifies them.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
