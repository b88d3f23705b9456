package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// Sentinel errors returned by RegistrationStore implementations.
var (
	// ErrRegistrationExists indicates the channel is already registered for the repository.
	ErrRegistrationExists = errors.New("registration already exists")

	// ErrRegistrationNotFound indicates no matching registration exists.
	ErrRegistrationNotFound = errors.New("registration not found")
)

// RegistrationStore defines the driven port for translation-sync registrations.
type RegistrationStore interface {
	FindByRepo(ctx context.Context, owner, repo string) ([]model.Registration, error)
	Add(ctx context.Context, reg model.Registration) (model.Registration, error)
	Remove(ctx context.Context, owner, repo, channelID string) error
	ListAll(ctx context.Context) ([]model.Registration, error)
}
