package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"

	. "github.com/CodedInternet/gobraille/onboard/errors"
)

var (
	JWT_LIFESPAN time.Duration = time.Hour
)

type jwtKey struct{}

// Operator is someone allowed to drive the device remotely, usually an
// instructor or carer setting up lessons.
type Operator struct {
	ID       int    `storm:"increment"` // pk
	Email    string `storm:"unique"`
	Name     string
	Password string
	Admin    bool
}

// SetPassword stores the bcrypt hash of pass.
func (u *Operator) SetPassword(pass []byte) error {
	hash, err := bcrypt.GenerateFromPassword(pass, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// VerifyPassword returns bcrypt's error untouched so callers can tell a
// mismatch from a corrupt hash.
func (u *Operator) VerifyPassword(pass []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), pass)
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *LoginPayload) Bind(r *http.Request) error {
	if len(l.Email) == 0 {
		return New("email is required")
	}
	return nil
}

type JWTPayload struct {
	SignedToken string `json:"token"`
}

func jwtSecret() []byte {
	return []byte(ENV.JWT_SECRET)
}

// newJWT issues a token for sub valid for JWT_LIFESPAN.
func newJWT(sub string) (ts string, err error) {
	now := time.Now().UTC()
	claims := jwt.StandardClaims{
		Issuer:    ENV.JWT_ISSUER,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(JWT_LIFESPAN).Unix(),
		Subject:   sub,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(jwtSecret())
}

//---
// Views
//---

// Login exchanges operator credentials for a token.
func Login(w http.ResponseWriter, r *http.Request) {
	data := &LoginPayload{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	var op Operator
	if err := ENV.DB.One("Email", data.Email, &op); err != nil {
		if Is(err, storm.ErrNotFound) {
			render.Render(w, r, ErrNotFound)
			return
		}
		render.Render(w, r, ErrRender(err))
		return
	}

	switch err := op.VerifyPassword([]byte(data.Password)); {
	case Is(err, bcrypt.ErrMismatchedHashAndPassword):
		render.Render(w, r, ErrPermissionDenied(New("invalid password")))
		return
	case err != nil:
		render.Render(w, r, ErrRender(err))
		return
	}

	respondWithToken(w, r, op.Email)
}

// JWTRefresh issues a fresh token for an already authenticated operator.
func JWTRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := r.Context().Value(jwtKey{}).(*jwt.Token)
	if !ok {
		render.Render(w, r, ErrUnauthorized(ErrJWTEmpty))
		return
	}
	respondWithToken(w, r, token.Claims.(*jwt.StandardClaims).Subject)
}

func respondWithToken(w http.ResponseWriter, r *http.Request, subject string) {
	signed, err := newJWT(subject)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	render.JSON(w, r, JWTPayload{SignedToken: signed})
}

var (
	ErrJWTEmpty = New("bearer token not provided")
)

// tokenFromRequest checks the jwt query parameter before the Authorization
// header and the jwt cookie.
func tokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("jwt"); t != "" {
		return t
	}

	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.EqualFold(bearer[:7], "bearer ") {
		return bearer[7:]
	}

	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}

func parseJWT(raw string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, Newf("unexpected signing method %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, New("token has expired")
		}
		return nil, New("invalid token")
	}
	if !token.Valid {
		return nil, New("invalid token")
	}
	return token, nil
}

// ValidateJWT refuses requests without a valid operator token.
func ValidateJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			render.Render(w, r, ErrUnauthorized(ErrJWTEmpty))
			return
		}

		token, err := parseJWT(raw)
		if err != nil {
			render.Render(w, r, ErrUnauthorized(err))
			return
		}

		ctx := context.WithValue(r.Context(), jwtKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
