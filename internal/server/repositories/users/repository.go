package users

import (
	"context"

	"github.com/dmitrijs2005/poskeeper/internal/server/models"
)

type Repository interface {
	// Create stores user and fills its ID. An existing user name yields
	// shared.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
