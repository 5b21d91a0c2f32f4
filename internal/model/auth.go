package model

import "github.com/golang-jwt/jwt/v5"

// TabClaims are JWT claims scoping a client to one tab session
type TabClaims struct {
	TabID string `json:"tabId"`
	jwt.RegisteredClaims
}

// OpenTabResponse is returned after a tab session is opened
type OpenTabResponse struct {
	Token string    `json:"token"`
	TabID string    `json:"tabId"`
	State *Snapshot `json:"state"`
}
