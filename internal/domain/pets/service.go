package pets

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

// OwnerChecker valida que un owner exista antes de asociarlo.
// Lo implementa users.Service; la interface vive acá para evitar
// el ciclo de imports pets <-> users.
type OwnerChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	repo   Repository
	owners OwnerChecker // puede ser nil (variante sin ownership)
	now    func() time.Time
	newID  func() string
}

func NewService(repo Repository, owners OwnerChecker) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

type CreateInput struct {
	Name    string
	Type    string
	Img     string
	OwnerID string
}

// Create valida el input, asigna id/createdAt y persiste.
// Si no viene img, se materializa la derivada del tipo, así el
// round-trip por el store devuelve exactamente lo creado.
func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Type) == "" {
		return Pet{}, ErrInvalidInput
	}

	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID != "" {
		if s.owners == nil {
			return Pet{}, ErrInvalidInput
		}
		ok, err := s.owners.Exists(ctx, ownerID)
		if err != nil {
			return Pet{}, err
		}
		if !ok {
			return Pet{}, ErrInvalidInput
		}
	}

	typ := PetType(strings.TrimSpace(in.Type))
	img := strings.TrimSpace(in.Img)
	if img == "" {
		img = ImageFor(typ)
	}

	p := Pet{
		ID:        s.newID(),
		Name:      strings.TrimSpace(in.Name),
		Type:      typ,
		Img:       img,
		OwnerID:   ownerID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Pet, error) {
	return s.repo.FindMany(ctx, f)
}

// Get devuelve el primer match. Cero matches no es error: ok=false.
func (s *Service) Get(ctx context.Context, f Filter) (Pet, bool, error) {
	return s.repo.FindOne(ctx, f)
}
