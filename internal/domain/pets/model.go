package pets

import "time"

// PetType define los tipos de mascota conocidos por el catálogo.
// El tipo llega como string libre desde el cliente; valores fuera
// de esta lista se aceptan y caen en la imagen por defecto.
type PetType string

const (
	TypeDog PetType = "DOG"
	TypeCat PetType = "CAT"
)

const (
	imgDog     = "https://placedog.net/300/300"
	imgDefault = "http://placekitten.com/300/300"
)

// ImageFor deriva la imagen placeholder a partir del tipo.
// Determinística y total: tipo desconocido => default, nunca error.
func ImageFor(t PetType) string {
	if t == TypeDog {
		return imgDog
	}
	return imgDefault
}

// Pet representa una mascota registrada en el catálogo.
type Pet struct {
	ID      string
	Name    string
	Type    PetType
	Img     string
	OwnerID string // opcional: vacío si la mascota no tiene dueño asignado

	CreatedAt time.Time
}

// Filter acota búsquedas. Campos vacíos se ignoran; los presentes
// se combinan con semántica AND.
type Filter struct {
	ID      string
	Name    string
	Type    string
	OwnerID string // uso interno (pets de un user); no viene del input
}

func (f Filter) IsEmpty() bool {
	return f.ID == "" && f.Name == "" && f.Type == "" && f.OwnerID == ""
}

func (f Filter) Matches(p Pet) bool {
	if f.ID != "" && f.ID != p.ID {
		return false
	}
	if f.Name != "" && f.Name != p.Name {
		return false
	}
	if f.Type != "" && PetType(f.Type) != p.Type {
		return false
	}
	if f.OwnerID != "" && f.OwnerID != p.OwnerID {
		return false
	}
	return true
}
