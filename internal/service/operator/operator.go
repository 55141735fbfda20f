// Package operator manages internal staff accounts and the access tokens the
// ops endpoints authenticate with. The operator id is the actor identity the
// rest of the system records on audit events.
package operator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/repository"
)

const defaultAccessTokenTTL = 8 * time.Hour

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret key to sign access tokens. Required.
	SecretKey string

	// Access token lifetime. Defaults to a work shift.
	AccessTTL time.Duration
}

type Service struct {
	key       string
	accessTTL time.Duration
	hasher    PasswordHasher
	storage   repository.Storage
}

type accessTokenClaims struct {
	jwt.RegisteredClaims
	OperatorID uuid.UUID `json:"oid"`
}

func NewService(cfg Config, hasher PasswordHasher, storage repository.Storage) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &Service{
		key:       cfg.SecretKey,
		accessTTL: cfg.AccessTTL,
		hasher:    hasher,
		storage:   storage,
	}, nil
}

func (s *Service) Register(ctx context.Context, username string, password string) (models.Operator, error) {
	var op models.Operator

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return op, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	return s.storage.Operator().CreateOperator(ctx, username, hash)
}

// Login checks credentials and returns a signed access token.
// Wrong password reports the same error as a missing operator.
func (s *Service) Login(ctx context.Context, username string, password string) (string, error) {
	op, err := s.storage.Operator().GetOperatorByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := s.hasher.Compare(op.HashedPassword, password); err != nil {
		return "", apperrors.ErrOperatorNotFound
	}

	return s.generateToken(op)
}

// Auth resolves the operator from the request's bearer token.
func (s *Service) Auth(ctx context.Context, r *http.Request) (models.Operator, error) {
	var op models.Operator

	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return op, apperrors.ErrOperatorNotFound
	}

	operatorID, err := s.parseToken(token)
	if err != nil {
		return op, apperrors.ErrOperatorNotFound
	}

	return s.storage.Operator().GetOperatorByID(ctx, operatorID)
}

func (s *Service) generateToken(op models.Operator) (string, error) {
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		accessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			},
			OperatorID: op.ID,
		},
	)

	signed, err := token.SignedString([]byte(s.key))
	if err != nil {
		return "", fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return signed, nil
}

func (s *Service) parseToken(tokenString string) (uuid.UUID, error) {
	var claims accessTokenClaims

	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) { return []byte(s.key), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, err
	}

	return claims.OperatorID, nil
}
