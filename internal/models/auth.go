package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleFaculty UserRole = "FACULTY"
)

// LoginRequest holds faculty credentials.
type LoginRequest struct {
	FacultyID string `json:"facultyId" validate:"required"`
	SecureKey string `json:"secureKey" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token and the signed-in member.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int64         `json:"expires_in"`
	IssuedAt    time.Time     `json:"issued_at"`
	Faculty     FacultyMember `json:"faculty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	FacultyID string   `json:"faculty_id"`
	Role      UserRole `json:"role"`
	Name      string   `json:"name"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
