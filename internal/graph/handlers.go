package graph

import (
	"context"
	"time"

	"pet-catalog/internal/domain/pets"
	"pet-catalog/internal/domain/users"
	"pet-catalog/internal/schema"
)

type petPayload struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Img       string        `json:"img"`
	CreatedAt time.Time     `json:"createdAt"`
	Owner     *ownerPayload `json:"owner,omitempty"`
}

type ownerPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type userPayload struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	CreatedAt time.Time    `json:"createdAt"`
	Pets      []petPayload `json:"pets"`
}

func toFilter(in *schema.PetFilterInput) pets.Filter {
	if in == nil {
		return pets.Filter{}
	}
	return pets.Filter{ID: in.ID, Name: in.Name, Type: in.Type}
}

func (d *Dispatcher) listPets(petsSvc *pets.Service, usersSvc *users.Service) handlerFunc {
	return func(ctx context.Context, input any) (any, error) {
		f := toFilter(input.(*schema.PetFilterInput))

		items, err := petsSvc.List(ctx, f)
		if err != nil {
			return nil, err
		}

		out := make([]petPayload, 0, len(items))
		for _, p := range items {
			out = append(out, d.toPetPayload(ctx, usersSvc, p))
		}
		return out, nil
	}
}

func (d *Dispatcher) getPet(petsSvc *pets.Service, usersSvc *users.Service) handlerFunc {
	return func(ctx context.Context, input any) (any, error) {
		f := toFilter(input.(*schema.PetFilterInput))

		p, ok, err := petsSvc.Get(ctx, f)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Cero matches no es error: data null.
			return nil, nil
		}

		payload := d.toPetPayload(ctx, usersSvc, p)
		return &payload, nil
	}
}

func (d *Dispatcher) addPet(petsSvc *pets.Service, usersSvc *users.Service) handlerFunc {
	return func(ctx context.Context, input any) (any, error) {
		in := input.(*schema.NewPetInput)

		p, err := petsSvc.Create(ctx, pets.CreateInput{
			Name:    in.Name,
			Type:    in.Type,
			Img:     in.Img,
			OwnerID: in.OwnerID,
		})
		if err != nil {
			return nil, err
		}

		payload := d.toPetPayload(ctx, usersSvc, p)
		return &payload, nil
	}
}

func (d *Dispatcher) getUser(petsSvc *pets.Service, usersSvc *users.Service) handlerFunc {
	return func(ctx context.Context, input any) (any, error) {
		in := input.(*schema.UserFilterInput)

		u, ok, err := usersSvc.Get(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}

		owned, err := petsSvc.List(ctx, pets.Filter{OwnerID: u.ID})
		if err != nil {
			return nil, err
		}

		payload := userPayload{
			ID:        u.ID,
			Username:  u.Username,
			CreatedAt: u.CreatedAt,
			Pets:      make([]petPayload, 0, len(owned)),
		}
		for _, p := range owned {
			// Sin owner embebido: ya estamos dentro del user.
			payload.Pets = append(payload.Pets, petPayload{
				ID:        p.ID,
				Name:      p.Name,
				Type:      string(p.Type),
				Img:       p.Img,
				CreatedAt: p.CreatedAt,
			})
		}
		return &payload, nil
	}
}

func (d *Dispatcher) addUser(usersSvc *users.Service) handlerFunc {
	return func(ctx context.Context, input any) (any, error) {
		in := input.(*schema.NewUserInput)

		u, err := usersSvc.Create(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		return &userPayload{
			ID:        u.ID,
			Username:  u.Username,
			CreatedAt: u.CreatedAt,
			Pets:      []petPayload{},
		}, nil
	}
}

func (d *Dispatcher) toPetPayload(ctx context.Context, usersSvc *users.Service, p pets.Pet) petPayload {
	payload := petPayload{
		ID:        p.ID,
		Name:      p.Name,
		Type:      string(p.Type),
		Img:       p.Img,
		CreatedAt: p.CreatedAt,
	}

	if p.OwnerID != "" {
		u, ok, err := usersSvc.Get(ctx, p.OwnerID)
		if err == nil && ok {
			payload.Owner = &ownerPayload{ID: u.ID, Username: u.Username}
		} else if err != nil {
			// Owner irresoluble no tumba la lectura de la mascota.
			d.log.Warn("owner lookup failed", map[string]any{"pet": p.ID, "owner": p.OwnerID})
		}
	}

	return payload
}
