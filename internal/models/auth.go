package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload issued by the CMS for API access.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor returns the member described by the token. Only ID, email, name and role are known.
func (c *JWTClaims) Actor() *User {
	if c == nil {
		return nil
	}
	return &User{ID: c.UserID, Email: c.Email, FirstName: c.FullName, Role: c.Role}
}
