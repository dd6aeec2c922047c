package petstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeAPI implementa el endpoint /query con el envelope del catálogo.
type fakeAPI struct {
	mu       sync.Mutex
	pets     []Pet
	nextID   int
	failNext bool
	block    chan struct{} // si no es nil, addPet espera acá antes de responder
}

func (a *fakeAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Operation string          `json:"operation"`
			Input     json.RawMessage `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch req.Operation {
		case "pets":
			a.mu.Lock()
			out := append([]Pet(nil), a.pets...)
			a.mu.Unlock()
			writeData(w, "pets", out)

		case "pet":
			var f Filter
			if len(req.Input) > 0 {
				_ = json.Unmarshal(req.Input, &f)
			}
			a.mu.Lock()
			var match *Pet
			for i := range a.pets {
				if f.matches(a.pets[i]) {
					match = &a.pets[i]
					break
				}
			}
			a.mu.Unlock()
			writeData(w, "pet", match)

		case "addPet":
			if a.block != nil {
				<-a.block
			}

			a.mu.Lock()
			if a.failNext {
				a.failNext = false
				a.mu.Unlock()
				_ = json.NewEncoder(w).Encode(map[string]any{
					"errors": []APIError{{Message: "store operation failed", Code: "STORE_ERROR"}},
				})
				return
			}

			var in NewPet
			_ = json.Unmarshal(req.Input, &in)
			a.nextID++
			p := Pet{
				ID:        fmt.Sprintf("srv-%d", a.nextID),
				Name:      in.Name,
				Type:      in.Type,
				Img:       "https://placedog.net/300/300",
				CreatedAt: time.Now().UTC(),
			}
			a.pets = append(a.pets, p)
			a.mu.Unlock()
			writeData(w, "addPet", p)

		default:
			http.Error(w, "unknown operation", http.StatusBadRequest)
		}
	}
}

func writeData(w http.ResponseWriter, op string, v any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{op: v}})
}

func newTestClient(t *testing.T, api *fakeAPI) (*Client, *httptest.Server) {
	t.Helper()

	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)

	c, err := New(Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	n := 0
	c.newTempID = func() string {
		n++
		return fmt.Sprintf("tmp-%d", n)
	}
	return c, ts
}

func TestClient_ListPetsPopulatesCache(t *testing.T) {
	api := &fakeAPI{pets: []Pet{
		{ID: "srv-1", Name: "Rex", Type: "DOG"},
	}}
	c, _ := newTestClient(t, api)

	got, err := c.ListPets(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("ListPets error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "srv-1" {
		t.Fatalf("unexpected pets: %+v", got)
	}

	snap, ok := c.Cache().Read(ListKey(Filter{}))
	if !ok || snap.State != StateReady || len(snap.Pets) != 1 {
		t.Fatalf("expected cached ready result, got ok=%v %+v", ok, snap)
	}
}

func TestClient_CreatePet_OptimisticThenReconciled(t *testing.T) {
	api := &fakeAPI{
		pets:  []Pet{{ID: "srv-1", Name: "Rex", Type: "DOG"}},
		block: make(chan struct{}),
	}
	api.nextID = 1
	c, _ := newTestClient(t, api)

	if _, err := c.ListPets(context.Background(), Filter{}); err != nil {
		t.Fatalf("ListPets error: %v", err)
	}

	w := c.Cache().Watch(ListKey(Filter{}))
	defer w.Close()

	done := make(chan error, 1)
	go func() {
		_, err := c.CreatePet(context.Background(), NewPet{Name: "Milo", Type: "DOG"})
		done <- err
	}()

	// La vista ve la entrada optimista antes de que el server responda.
	waitNotify(t, w)
	snap := w.Snapshot()
	if len(snap.Pets) != 2 || snap.Pets[0].Name != "Milo" {
		t.Fatalf("expected optimistic Milo at position 0, got %+v", snap.Pets)
	}
	if snap.Pets[0].ID != "tmp-1" {
		t.Fatalf("expected temp identity before reconcile, got %s", snap.Pets[0].ID)
	}
	if snap.Pets[0].Img != "https://placedog.net/300/300" {
		t.Fatalf("expected derived placeholder on optimistic entry, got %s", snap.Pets[0].Img)
	}

	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("CreatePet error: %v", err)
	}

	// Misma posición, identidad real, una sola entrada.
	snap = w.Snapshot()
	if len(snap.Pets) != 2 {
		t.Fatalf("expected 2 pets after reconcile, got %+v", snap.Pets)
	}
	if snap.Pets[0].ID != "srv-2" || snap.Pets[0].Name != "Milo" {
		t.Fatalf("expected reconciled srv-2 at position 0, got %+v", snap.Pets[0])
	}
}

func TestClient_CreatePet_FailureRollsBack(t *testing.T) {
	api := &fakeAPI{pets: []Pet{{ID: "srv-1", Name: "Rex", Type: "DOG"}}}
	c, _ := newTestClient(t, api)

	if _, err := c.ListPets(context.Background(), Filter{}); err != nil {
		t.Fatalf("ListPets error: %v", err)
	}
	before, _ := c.Cache().Read(ListKey(Filter{}))

	api.failNext = true
	_, err := c.CreatePet(context.Background(), NewPet{Name: "Milo", Type: "DOG"})
	if err == nil {
		t.Fatalf("expected mutation failure")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "STORE_ERROR" {
		t.Fatalf("expected STORE_ERROR, got %v", err)
	}

	after, _ := c.Cache().Read(ListKey(Filter{}))
	if len(after.Pets) != len(before.Pets) {
		t.Fatalf("expected rollback to restore the list, got %+v", after.Pets)
	}
	for i := range before.Pets {
		if before.Pets[i] != after.Pets[i] {
			t.Fatalf("dangling temporary entity after rollback: %+v", after.Pets)
		}
	}
}

func TestClient_CanceledReadDoesNotTouchCache(t *testing.T) {
	api := &fakeAPI{pets: []Pet{{ID: "srv-1", Name: "Rex", Type: "DOG"}}}
	c, _ := newTestClient(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ListPets(ctx, Filter{}); err == nil {
		t.Fatalf("expected error from canceled context")
	}

	// La vista se descartó: el resultado no muta el cache.
	snap, _ := c.Cache().Read(ListKey(Filter{}))
	if snap.State != StateLoading {
		t.Fatalf("expected cache untouched (loading), got %+v", snap)
	}
}

func TestClient_GetPet_FirstMatchAndAbsent(t *testing.T) {
	api := &fakeAPI{pets: []Pet{{ID: "srv-1", Name: "Rex", Type: "DOG"}}}
	c, _ := newTestClient(t, api)

	p, err := c.GetPet(context.Background(), Filter{Name: "Rex"})
	if err != nil {
		t.Fatalf("GetPet error: %v", err)
	}
	if p == nil || p.ID != "srv-1" {
		t.Fatalf("expected Rex, got %+v", p)
	}

	p, err = c.GetPet(context.Background(), Filter{Name: "nadie"})
	if err != nil {
		t.Fatalf("absent pet must not be an error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil pet, got %+v", p)
	}

	snap, ok := c.Cache().Read(GetKey(Filter{Name: "nadie"}))
	if !ok || snap.State != StateReady || len(snap.Pets) != 0 {
		t.Fatalf("expected cached absent result, got ok=%v %+v", ok, snap)
	}
}
