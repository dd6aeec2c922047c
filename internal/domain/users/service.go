package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, username string) (User, error) {
	if strings.TrimSpace(username) == "" {
		return User{}, ErrInvalidInput
	}

	u := User{
		ID:        s.newID(),
		Username:  strings.TrimSpace(username),
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, bool, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists implementa pets.OwnerChecker.
func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	_, ok, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok, nil
}
