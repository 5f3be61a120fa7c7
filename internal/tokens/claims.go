package tokens

import "github.com/golang-jwt/jwt/v5"

type AccessClaims struct {
	Staff     bool `json:"staff"`
	Superuser bool `json:"superuser"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

const refreshType = "refresh"
