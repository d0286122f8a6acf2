// Package auth checks admin credentials and issues signed session tokens.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hoteldir/internal/domain"
)

const (
	CookieName = "admin_session"
	SessionTTL = 24 * time.Hour
	issuer     = "hoteldir"
)

type Options struct {
	Username     string
	Password     string // plain, used only when PasswordHash is empty
	PasswordHash string // bcrypt
	Secret       string
}

type Authenticator struct {
	user   string
	pass   string
	hash   []byte
	secret []byte
	now    func() time.Time
}

func New(o Options) (*Authenticator, error) {
	if o.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if o.Username == "" || (o.Password == "" && o.PasswordHash == "") {
		return nil, errors.New("admin credentials are required")
	}
	a := &Authenticator{user: o.Username, pass: o.Password, secret: []byte(o.Secret), now: time.Now}
	if o.PasswordHash != "" {
		a.hash = []byte(o.PasswordHash)
	}
	return a, nil
}

// Login verifies credentials and returns a signed token with its expiry.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	if !a.check(username, password) {
		return "", time.Time{}, domain.ErrUnauthorized
	}
	now := a.now()
	exp := now.Add(SessionTTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Verify validates signature, issuer and expiry and returns the subject.
func (a *Authenticator) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return claims.Subject, nil
}

func (a *Authenticator) check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.user)) == 1
	var passOK bool
	if a.hash != nil {
		passOK = bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.pass)) == 1
	}
	return userOK && passOK
}
