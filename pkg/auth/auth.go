package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrReauthToken  = errors.New("re-auth token not valid for api access")
)

// Context is the authenticated caller, produced once per request by token
// verification and passed explicitly into every handler.
type Context struct {
	Email string
	Roles []string
}

type claims struct {
	Email  string   `json:"email"`
	Roles  []string `json:"roles,omitempty"`
	Reauth bool     `json:"reauth,omitempty"`
	jwt.StandardClaims
}

// Issuer mints and verifies HS256 bearer tokens.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewIssuer(secret, issuer, audience string, expireDays int) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      time.Duration(expireDays) * 24 * time.Hour,
	}
}

// IssueToken returns a signed token carrying the user's email and roles,
// expiring after the configured day count. No refresh rotation exists; a
// token is valid until natural expiry.
func (i *Issuer) IssueToken(email string, roles []string) (string, error) {
	return i.sign(claims{
		Email: email,
		Roles: roles,
		StandardClaims: jwt.StandardClaims{
			Issuer:    i.issuer,
			Audience:  i.audience,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(i.ttl).Unix(),
		},
	})
}

// IssueReauthToken returns a short-lived token proving the caller re-entered
// their password. It is rejected by Parse, so it cannot be replayed against
// normal endpoints.
func (i *Issuer) IssueReauthToken(email string) (string, error) {
	return i.sign(claims{
		Email:  email,
		Reauth: true,
		StandardClaims: jwt.StandardClaims{
			Issuer:    i.issuer,
			Audience:  i.audience,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
		},
	})
}

func (i *Issuer) sign(c claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(i.secret)
}

// Parse verifies a bearer token and returns the caller it identifies.
func (i *Issuer) Parse(tokenStr string) (*Context, error) {
	c, err := i.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.Reauth {
		return nil, ErrReauthToken
	}
	return &Context{Email: c.Email, Roles: c.Roles}, nil
}

// ParseReauth accepts only re-auth tokens and returns the proven email.
func (i *Issuer) ParseReauth(tokenStr string) (string, error) {
	c, err := i.parse(tokenStr)
	if err != nil {
		return "", err
	}
	if !c.Reauth {
		return "", ErrInvalidToken
	}
	return c.Email, nil
}

func (i *Issuer) parse(tokenStr string) (*claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	c, ok := token.Claims.(*claims)
	if !ok || c.Email == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
