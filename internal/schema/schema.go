// Package schema declara el contrato de operaciones del catálogo:
// qué operaciones existen, con qué shape de input, y qué campos son
// obligatorios. Los requests se validan acá antes de llegar a los
// services; el dispatch table se chequea contra este contrato al
// arrancar el server.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

// Operation describe una operación declarada.
type Operation struct {
	Name string
	Kind Kind

	// NewInput devuelve un prototipo del input (puntero a struct con
	// tags json/validate). Nil => la operación no recibe input.
	NewInput func() any

	// InputRequired: si false, el input puede omitirse (queries con
	// filtro opcional).
	InputRequired bool
}

// ValidationError indica que el shape del request no cumple el
// contrato declarado. Nombra el campo ofensor cuando lo conoce.
type ValidationError struct {
	Op     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: operation %q: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("schema: operation %q: field %q %s", e.Op, e.Field, e.Reason)
}

// ---------------------------------------------------------------
// Inputs declarados (shape de wire, tags json + validate)
// ---------------------------------------------------------------

// PetFilterInput acota pets/pet. Todos los campos opcionales, AND.
type PetFilterInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewPetInput crea una mascota. id/createdAt los asigna el server.
type NewPetInput struct {
	Name    string `json:"name" validate:"required"`
	Type    string `json:"type" validate:"required"`
	Img     string `json:"img" validate:"omitempty,url"`
	OwnerID string `json:"ownerId"`
}

// UserFilterInput busca un user por id.
type UserFilterInput struct {
	ID string `json:"id" validate:"required"`
}

// NewUserInput registra un user.
type NewUserInput struct {
	Username string `json:"username" validate:"required"`
}

// ---------------------------------------------------------------

type Contract struct {
	ops      map[string]Operation
	validate *validator.Validate
}

// New arma el contrato del catálogo. El nombre canónico de la
// mutación de alta es addPet (el alias que usaba el cliente), no pet.
func New() *Contract {
	v := validator.New()

	// Reportar nombres json, no nombres de campo Go.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	c := &Contract{
		ops:      make(map[string]Operation),
		validate: v,
	}

	c.register(Operation{
		Name:     "pets",
		Kind:     KindQuery,
		NewInput: func() any { return &PetFilterInput{} },
	})
	c.register(Operation{
		Name:     "pet",
		Kind:     KindQuery,
		NewInput: func() any { return &PetFilterInput{} },
	})
	c.register(Operation{
		Name:          "addPet",
		Kind:          KindMutation,
		NewInput:      func() any { return &NewPetInput{} },
		InputRequired: true,
	})
	c.register(Operation{
		Name:          "user",
		Kind:          KindQuery,
		NewInput:      func() any { return &UserFilterInput{} },
		InputRequired: true,
	})
	c.register(Operation{
		Name:          "addUser",
		Kind:          KindMutation,
		NewInput:      func() any { return &NewUserInput{} },
		InputRequired: true,
	})

	return c
}

func (c *Contract) register(op Operation) {
	c.ops[op.Name] = op
}

func (c *Contract) Lookup(name string) (Operation, bool) {
	op, ok := c.ops[name]
	return op, ok
}

// DecodeInput decodifica y valida el input crudo de una operación.
// Campos desconocidos y violaciones de required/formato devuelven
// *ValidationError con el campo ofensor.
func (c *Contract) DecodeInput(opName string, raw json.RawMessage) (any, error) {
	op, ok := c.ops[opName]
	if !ok {
		return nil, &ValidationError{Op: opName, Reason: "not declared"}
	}

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if op.InputRequired {
			return nil, &ValidationError{Op: opName, Field: "input", Reason: "is required"}
		}
		if op.NewInput == nil {
			return nil, nil
		}
		return op.NewInput(), nil
	}

	if op.NewInput == nil {
		return nil, &ValidationError{Op: opName, Field: "input", Reason: "is not accepted"}
	}

	in := op.NewInput()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(in); err != nil {
		return nil, &ValidationError{Op: opName, Field: unknownField(err), Reason: "does not match the declared shape"}
	}

	if err := c.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return nil, &ValidationError{
				Op:     opName,
				Field:  e.Field(),
				Reason: fmt.Sprintf("failed on the %q rule", e.Tag()),
			}
		}
		return nil, &ValidationError{Op: opName, Reason: err.Error()}
	}

	return in, nil
}

// Check valida el dispatch table contra el contrato: toda operación
// declarada necesita handler y no puede haber handlers sin declarar.
// Se corre una vez, al construir el server.
func (c *Contract) Check(handlers []string) error {
	seen := make(map[string]bool, len(handlers))
	for _, name := range handlers {
		if _, ok := c.ops[name]; !ok {
			return fmt.Errorf("schema: handler %q has no declared operation", name)
		}
		if seen[name] {
			return fmt.Errorf("schema: duplicate handler for operation %q", name)
		}
		seen[name] = true
	}
	for name := range c.ops {
		if !seen[name] {
			return fmt.Errorf("schema: declared operation %q has no handler", name)
		}
	}
	return nil
}

// unknownField extrae el nombre de campo de los errores de
// DisallowUnknownFields ("json: unknown field \"x\"").
func unknownField(err error) string {
	msg := err.Error()
	const marker = `unknown field "`
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.Index(rest, `"`); j >= 0 {
		return rest[:j]
	}
	return ""
}
