package models

import "github.com/golang-jwt/jwt/v5"

// TokenScope distinguishes access from refresh tokens in the "scope" claim.
// The string values are part of the wire format and must not change.
type TokenScope string

const (
	ScopeAccess  TokenScope = "access_token"
	ScopeRefresh TokenScope = "refresh_token"
)

// Claims is the JWT claim set used for both access and refresh tokens:
// {sub, iat, exp, scope} plus a unique jti per issued token. Email
// verification tokens carry the same registered claims with an empty scope.
type Claims struct {
	Scope TokenScope `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
