package petstore

import (
	"fmt"
	"time"
)

// Pet es la vista wire de una mascota del catálogo.
type Pet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Img       string    `json:"img"`
	CreatedAt time.Time `json:"createdAt"`
	Owner     *Owner    `json:"owner,omitempty"`
}

type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Filter acota pets/pet. Campos vacíos se omiten; AND sobre los presentes.
type Filter struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

func (f Filter) matches(p Pet) bool {
	if f.ID != "" && f.ID != p.ID {
		return false
	}
	if f.Name != "" && f.Name != p.Name {
		return false
	}
	if f.Type != "" && f.Type != p.Type {
		return false
	}
	return true
}

// NewPet es el input de la mutación addPet.
type NewPet struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Img     string `json:"img,omitempty"`
	OwnerID string `json:"ownerId,omitempty"`
}

// EntityID distingue a nivel de tipos una identidad especulativa
// (Pending: id temporal generado por el cliente) de una confirmada
// por el store (Committed). La reconciliación es una transición
// Pending -> Committed, no una coincidencia de strings.
type EntityID struct {
	pending bool
	value   string
}

func PendingID(tempID string) EntityID {
	return EntityID{pending: true, value: tempID}
}

func CommittedID(id string) EntityID {
	return EntityID{pending: false, value: id}
}

func (e EntityID) Pending() bool { return e.pending }
func (e EntityID) Value() string { return e.value }

func (e EntityID) String() string {
	if e.pending {
		return "pending:" + e.value
	}
	return "committed:" + e.value
}

// QueryKey identifica el resultado cacheado de una lectura:
// operación + parámetros.
type QueryKey struct {
	Op     string
	Filter Filter
}

func ListKey(f Filter) QueryKey { return QueryKey{Op: "pets", Filter: f} }
func GetKey(f Filter) QueryKey  { return QueryKey{Op: "pet", Filter: f} }

func (k QueryKey) String() string {
	return fmt.Sprintf("%s{id=%s,name=%s,type=%s}", k.Op, k.Filter.ID, k.Filter.Name, k.Filter.Type)
}

// QueryState es el tri-estado observable de una query.
type QueryState int

const (
	StateLoading QueryState = iota // nunca se escribió un resultado
	StateError                     // el último intento falló
	StateReady                     // hay data
)

func (s QueryState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "ready"
	}
}

// Snapshot es el resultado materializado de una query cacheada.
// Para queries single, Pets tiene a lo sumo un elemento.
type Snapshot struct {
	State QueryState
	Err   error
	Pets  []Pet
}

// APIError es un error reportado por el server en el envelope.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error: code=%s field=%s %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("api error: code=%s %s", e.Code, e.Message)
}
