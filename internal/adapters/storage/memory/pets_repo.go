package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-catalog/internal/domain/pets"
)

type petRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) FindOne(ctx context.Context, f pets.Filter) (pets.Pet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Primer match sobre el mismo orden que FindMany, así "primer
	// resultado" es estable entre ambas.
	for _, p := range r.sorted() {
		if f.Matches(p) {
			return p, true, nil
		}
	}
	return pets.Pet{}, false, nil
}

func (r *petRepo) FindMany(ctx context.Context, f pets.Filter) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.sorted() {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// sorted devuelve las mascotas por created_at asc, desempate por id.
// Orden definido por el store, no por el contrato.
func (r *petRepo) sorted() []pets.Pet {
	all := make([]pets.Pet, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all
}
