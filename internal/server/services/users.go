// Package services contains the backend's business logic. UserService
// authenticates operators and mints access tokens; SyncService stores the
// batches pushed by terminals.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/server/auth"
	"github.com/dmitrijs2005/poskeeper/internal/server/config"
	"github.com/dmitrijs2005/poskeeper/internal/server/models"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist, so unknown
// and known names take about the same time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("poskeeper"), bcrypt.MinCost)

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	hashCost                    int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		hashCost:                    bcrypt.DefaultCost,
	}
}

// Register creates an operator account.
func (s *UserService) Register(ctx context.Context, userName, password string) (*models.User, error) {
	if userName == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{UserName: userName, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// EnsureOperator creates the account unless it exists already.
func (s *UserService) EnsureOperator(ctx context.Context, userName, password string) (bool, error) {
	_, err := s.Register(ctx, userName, password)
	if errors.Is(err, shared.ErrorAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Login checks the password and returns a signed access token together
// with its lifetime. Unknown users and wrong passwords both yield
// common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, time.Duration, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", 0, fmt.Errorf("%w: %w", common.ErrUnauthorized, shared.ErrorInvalidLoginPassword)
		}
		return "", 0, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", 0, fmt.Errorf("%w: %w", common.ErrUnauthorized, shared.ErrorInvalidLoginPassword)
	}

	token, err := auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return token, s.accessTokenValidityDuration, nil
}
