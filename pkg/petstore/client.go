package petstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-catalog/internal/domain/pets"
	"pet-catalog/internal/platform/httpclient"
	"pet-catalog/internal/platform/logger"

	"github.com/google/uuid"
)

type Options struct {
	// BaseURL del API (única config externa del cliente).
	BaseURL string

	// Timeout del transporte. 0 => default del httpclient.
	Timeout time.Duration

	// Delay inserta latencia artificial antes de cada request, para
	// poder ver los estados optimistas en el demo. 0 = sin delay.
	Delay time.Duration

	// Log opcional; nil => descartado.
	Log logger.Logger
}

// Client habla con el API del catálogo y mantiene su propio cache
// normalizado. Cada Client es dueño exclusivo de su Cache.
type Client struct {
	http      *httpclient.Client
	cache     *Cache
	log       logger.Logger
	delay     time.Duration
	newTempID func() string
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("petstore: base url is required")
	}

	hc, err := httpclient.NewWithBaseURL(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("petstore: %w", err)
	}

	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		http:      hc,
		cache:     NewCache(),
		log:       log,
		delay:     opts.Delay,
		newTempID: uuid.NewString,
	}, nil
}

// Cache expone el cache del cliente (lecturas locales y Watch).
func (c *Client) Cache() *Cache {
	return c.cache
}

// WatchPets observa la lista cacheada para un filtro.
func (c *Client) WatchPets(f Filter) *Watch {
	c.cache.MarkLoading(ListKey(f))
	return c.cache.Watch(ListKey(f))
}

// ListPets trae las mascotas que matchean el filtro y escribe el
// resultado en el cache. Si el ctx se canceló antes de resolver, el
// resultado se descarta sin tocar el cache.
func (c *Client) ListPets(ctx context.Context, f Filter) ([]Pet, error) {
	c.cache.MarkLoading(ListKey(f))

	var out []Pet
	if err := c.do(ctx, "pets", filterInput(f), &out); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.cache.WriteError(ListKey(f), err)
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	c.cache.WriteList(ListKey(f), out)
	return out, nil
}

// GetPet trae el primer match, o nil sin error si no hay ninguno.
func (c *Client) GetPet(ctx context.Context, f Filter) (*Pet, error) {
	c.cache.MarkLoading(GetKey(f))

	var out *Pet
	if err := c.do(ctx, "pet", filterInput(f), &out); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.cache.WriteError(GetKey(f), err)
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	c.cache.WriteOne(GetKey(f), out)
	return out, nil
}

// CreatePet aplica la mascota optimista al cache antes de emitir la
// mutación, reconcilia con la respuesta real al confirmar, y revierte
// ante cualquier falla. Nunca queda una entidad temporal colgada.
func (c *Client) CreatePet(ctx context.Context, in NewPet) (Pet, error) {
	tempID := c.newTempID()
	temp := Pet{
		ID:        tempID,
		Name:      strings.TrimSpace(in.Name),
		Type:      strings.TrimSpace(in.Type),
		Img:       in.Img,
		CreatedAt: time.Now(),
	}
	if temp.Img == "" {
		// Misma derivación que el server, así el placeholder no
		// "salta" cuando llega la respuesta real.
		temp.Img = pets.ImageFor(pets.PetType(temp.Type))
	}

	c.cache.ApplyOptimistic(tempID, temp)

	var out Pet
	if err := c.do(ctx, "addPet", in, &out); err != nil {
		c.cache.Rollback(tempID)
		c.log.Warn("create pet failed, optimistic entry rolled back", map[string]any{
			"temp_id": tempID,
			"err":     err.Error(),
		})
		return Pet{}, err
	}
	if ctx.Err() != nil {
		c.cache.Rollback(tempID)
		return Pet{}, ctx.Err()
	}

	c.cache.Reconcile(tempID, out)
	return out, nil
}

// ---------------------------------------------------------------

type envelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []APIError                 `json:"errors"`
}

// do emite una operación con el envelope {operation, input} y
// decodifica data[op] en out. Errores del envelope => *APIError.
func (c *Client) do(ctx context.Context, op string, input any, out any) error {
	if err := c.sleep(ctx); err != nil {
		return err
	}

	body := map[string]any{"operation": op}
	if input != nil {
		body["input"] = input
	}

	var env envelope
	if err := c.http.DoJSON(ctx, http.MethodPost, "/query", body, &env); err != nil {
		return err
	}

	if len(env.Errors) > 0 {
		e := env.Errors[0]
		return &e
	}

	raw, ok := env.Data[op]
	if !ok {
		return fmt.Errorf("petstore: response missing data for %q", op)
	}
	if out == nil || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("petstore: decode %q: %w", op, err)
	}
	return nil
}

// filterInput omite el filtro vacío (el API lo trata como "todos").
func filterInput(f Filter) any {
	if f == (Filter{}) {
		return nil
	}
	return f
}

// sleep aplica la latencia artificial respetando cancelación.
func (c *Client) sleep(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
