package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-catalog/internal/router"
)

type envelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Field   string `json:"field"`
	} `json:"errors"`
}

type petResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Img       string    `json:"img"`
	CreatedAt time.Time `json:"createdAt"`
	Owner     *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"owner"`
}

func TestHTTP_EndToEnd_CatalogFlow(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	// 1) Catálogo vacío => lista vacía, no error
	{
		st, env := doOp(t, ts.URL, "pets", nil)
		if st != http.StatusOK || len(env.Errors) != 0 {
			t.Fatalf("expected clean 200 listing empty catalog, got %d %+v", st, env.Errors)
		}
		var items []petResp
		mustUnmarshal(t, env.Data["pets"], &items)
		if len(items) != 0 {
			t.Fatalf("expected empty list, got %d", len(items))
		}
	}

	// 2) Alta: el server asigna id/createdAt y deriva img del tipo
	var rex petResp
	{
		st, env := doOp(t, ts.URL, "addPet", map[string]any{"name": "Rex", "type": "DOG"})
		if st != http.StatusOK || len(env.Errors) != 0 {
			t.Fatalf("expected clean 200 creating pet, got %d %+v", st, env.Errors)
		}
		mustUnmarshal(t, env.Data["addPet"], &rex)
		if rex.ID == "" {
			t.Fatalf("expected assigned id")
		}
		if rex.CreatedAt.IsZero() {
			t.Fatalf("expected assigned createdAt")
		}
		if rex.Img != "https://placedog.net/300/300" {
			t.Fatalf("expected dog placeholder, got %s", rex.Img)
		}
	}

	// 3) Round-trip: aparece en la lista con los mismos valores
	{
		_, env := doOp(t, ts.URL, "pets", nil)
		var items []petResp
		mustUnmarshal(t, env.Data["pets"], &items)
		if len(items) != 1 {
			t.Fatalf("expected exactly 1 pet, got %d", len(items))
		}
		got := items[0]
		if got.ID != rex.ID || got.Name != "Rex" || got.Type != "DOG" || got.Img != rex.Img {
			t.Fatalf("round-trip mismatch: %+v", got)
		}
	}

	// 4) Single read con filtro
	{
		_, env := doOp(t, ts.URL, "pet", map[string]any{"name": "Rex"})
		var got petResp
		mustUnmarshal(t, env.Data["pet"], &got)
		if got.ID != rex.ID {
			t.Fatalf("expected Rex by name, got %+v", got)
		}
	}

	// 5) Sin match => data null, sin error
	{
		st, env := doOp(t, ts.URL, "pet", map[string]any{"name": "nadie"})
		if st != http.StatusOK || len(env.Errors) != 0 {
			t.Fatalf("absent pet must not be an error, got %d %+v", st, env.Errors)
		}
		if string(env.Data["pet"]) != "null" {
			t.Fatalf("expected data null, got %s", env.Data["pet"])
		}
	}
}

func TestHTTP_Ownership(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	// Alta de user
	var owner struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	{
		st, env := doOp(t, ts.URL, "addUser", map[string]any{"username": "fz"})
		if st != http.StatusOK || len(env.Errors) != 0 {
			t.Fatalf("expected clean 200 creating user, got %d %+v", st, env.Errors)
		}
		mustUnmarshal(t, env.Data["addUser"], &owner)
	}

	// Mascota con dueño
	{
		_, env := doOp(t, ts.URL, "addPet", map[string]any{"name": "Milo", "type": "CAT", "ownerId": owner.ID})
		if len(env.Errors) != 0 {
			t.Fatalf("expected owned pet to be created, got %+v", env.Errors)
		}
		var p petResp
		mustUnmarshal(t, env.Data["addPet"], &p)
		if p.Owner == nil || p.Owner.Username != "fz" {
			t.Fatalf("expected embedded owner, got %+v", p.Owner)
		}
	}

	// Dueño desconocido => validación
	{
		st, env := doOp(t, ts.URL, "addPet", map[string]any{"name": "Rex", "type": "DOG", "ownerId": "ghost"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 envelope, got %d", st)
		}
		if len(env.Errors) != 1 || env.Errors[0].Code != "VALIDATION_FAILED" {
			t.Fatalf("expected VALIDATION_FAILED, got %+v", env.Errors)
		}
	}

	// user query resuelve la relación pets
	{
		_, env := doOp(t, ts.URL, "user", map[string]any{"id": owner.ID})
		var u struct {
			Username string    `json:"username"`
			Pets     []petResp `json:"pets"`
		}
		mustUnmarshal(t, env.Data["user"], &u)
		if u.Username != "fz" || len(u.Pets) != 1 || u.Pets[0].Name != "Milo" {
			t.Fatalf("expected fz with 1 pet Milo, got %+v", u)
		}
	}
}

func TestHTTP_SchemaBoundary(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	// Campo requerido ausente => el error nombra el campo
	{
		st, env := doOp(t, ts.URL, "addPet", map[string]any{"name": "Rex"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 envelope, got %d", st)
		}
		if len(env.Errors) != 1 || env.Errors[0].Code != "VALIDATION_FAILED" || env.Errors[0].Field != "type" {
			t.Fatalf("expected VALIDATION_FAILED on field type, got %+v", env.Errors)
		}
	}

	// Shape desconocido => rechazado antes de llegar al service
	{
		_, env := doOp(t, ts.URL, "pets", map[string]any{"species": "DOG"})
		if len(env.Errors) != 1 || env.Errors[0].Field != "species" {
			t.Fatalf("expected rejection naming species, got %+v", env.Errors)
		}
	}

	// Operación desconocida => 400
	{
		st, env := doOp(t, ts.URL, "removePet", map[string]any{"id": "x"})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown operation, got %d", st)
		}
		if len(env.Errors) != 1 || env.Errors[0].Code != "UNKNOWN_OPERATION" {
			t.Fatalf("expected UNKNOWN_OPERATION, got %+v", env.Errors)
		}
	}

	// Envelope roto => 400
	{
		res, err := http.Post(ts.URL+"/query", "application/json", bytes.NewBufferString("{"))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed body, got %d", res.StatusCode)
		}
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}

// -------------------------
// Helpers
// -------------------------

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	h, err := router.NewRouter(router.Options{})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return httptest.NewServer(h)
}

func doOp(t *testing.T, baseURL, op string, input any) (int, envelope) {
	t.Helper()

	body := map[string]any{"operation": op}
	if input != nil {
		body["input"] = input
	}
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}

	res, err := http.Post(baseURL+"/query", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, string(raw))
	}
	return res.StatusCode, env
}

func mustUnmarshal(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal: %v raw=%s", err, string(raw))
	}
}
