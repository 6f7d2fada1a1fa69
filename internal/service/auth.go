package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
)

// CredentialStore checks admin sign-in attempts.
type CredentialStore interface {
	Authenticate(ctx context.Context, username, password string) (*model.Admin, error)
}

// StaticCredentials accepts a single configured admin account.
type StaticCredentials struct {
	username string
	uid      string
	hash     []byte
}

func NewStaticCredentials(username, password, uid string) (*StaticCredentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &StaticCredentials{username: username, uid: uid, hash: hash}, nil
}

func (c *StaticCredentials) Authenticate(_ context.Context, username, password string) (*model.Admin, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	return &model.Admin{UID: c.uid, Email: c.username}, nil
}

type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	UID       string
	ExpiresAt time.Time
}

type TokenService struct {
	creds     CredentialStore
	jwtSecret []byte
	jwtExpiry time.Duration
	now       func() time.Time
}

func NewTokenService(creds CredentialStore, jwtSecret string, jwtExpiry time.Duration) *TokenService {
	return &TokenService{creds: creds, jwtSecret: []byte(jwtSecret), jwtExpiry: jwtExpiry, now: time.Now}
}

func (s *TokenService) SignIn(ctx context.Context, req dto.SignInRequest) (*Token, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	admin, err := s.creds.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.jwtExpiry)
	claims := Claims{
		UID:   admin.UID,
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Value: signed, UID: admin.UID, ExpiresAt: expiresAt}, nil
}

// Verify accepts only unexpired HS256 tokens signed with the service secret.
func (s *TokenService) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
