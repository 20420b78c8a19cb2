package model

import "github.com/golang-jwt/jwt/v5"

// TeamClaims are JWT claims issued to a team on login
type TeamClaims struct {
	TeamID   string `json:"teamId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for team login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TeamInfo is the public view of a team
type TeamInfo struct {
	Username string `json:"username"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Message string   `json:"message"`
	Team    TeamInfo `json:"team"`
	Token   string   `json:"token,omitempty"`
}
