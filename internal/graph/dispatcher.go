// Package graph expone el API del catálogo en un único endpoint
// estilo GraphQL: operaciones con nombre, envelope {data, errors}.
// El motor de queries queda fuera de alcance; en su lugar hay un
// dispatch table explícito operación -> handler tipado, validado
// contra el contrato de schema al construir el Dispatcher.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pet-catalog/internal/domain/pets"
	"pet-catalog/internal/domain/users"
	"pet-catalog/internal/platform/logger"
	"pet-catalog/internal/schema"
)

// Códigos de error del envelope.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnknownOperation = "UNKNOWN_OPERATION"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeStoreError       = "STORE_ERROR"
)

type request struct {
	Operation string          `json:"operation"`
	Input     json.RawMessage `json:"input,omitempty"`
}

type response struct {
	Data   map[string]any `json:"data,omitempty"`
	Errors []apiError     `json:"errors,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

// handlerFunc recibe el input ya decodificado y validado por schema.
type handlerFunc func(ctx context.Context, input any) (any, error)

type Dispatcher struct {
	contract *schema.Contract
	handlers map[string]handlerFunc
	log      logger.Logger
}

// NewDispatcher registra los handlers y los chequea contra el
// contrato. Un handler de más o una operación sin handler es un
// error de construcción, no de runtime.
func NewDispatcher(contract *schema.Contract, petsSvc *pets.Service, usersSvc *users.Service, log logger.Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		contract: contract,
		handlers: make(map[string]handlerFunc),
		log:      log,
	}

	d.handlers["pets"] = d.listPets(petsSvc, usersSvc)
	d.handlers["pet"] = d.getPet(petsSvc, usersSvc)
	d.handlers["addPet"] = d.addPet(petsSvc, usersSvc)
	d.handlers["user"] = d.getUser(petsSvc, usersSvc)
	d.handlers["addUser"] = d.addUser(usersSvc)

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	if err := contract.Check(names); err != nil {
		return nil, err
	}

	return d, nil
}

// Handle atiende POST /query.
// Envelope malformado => 400. Operación resuelta => 200, con errores
// (si los hay) dentro del envelope, estilo GraphQL.
func (d *Dispatcher) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, http.StatusBadRequest, response{Errors: []apiError{{
				Message: "invalid request body",
				Code:    CodeBadRequest,
			}}})
			return
		}
		if req.Operation == "" {
			writeEnvelope(w, http.StatusBadRequest, response{Errors: []apiError{{
				Message: "operation is required",
				Code:    CodeBadRequest,
				Field:   "operation",
			}}})
			return
		}

		h, ok := d.handlers[req.Operation]
		if !ok {
			writeEnvelope(w, http.StatusBadRequest, response{Errors: []apiError{{
				Message: "unknown operation " + req.Operation,
				Code:    CodeUnknownOperation,
				Field:   "operation",
			}}})
			return
		}

		input, err := d.contract.DecodeInput(req.Operation, req.Input)
		if err != nil {
			var verr *schema.ValidationError
			if errors.As(err, &verr) {
				d.log.Warn("request rejected at schema boundary", map[string]any{
					"op":    req.Operation,
					"field": verr.Field,
				})
				writeEnvelope(w, http.StatusOK, response{Errors: []apiError{{
					Message: verr.Error(),
					Code:    CodeValidationFailed,
					Field:   verr.Field,
				}}})
				return
			}
			writeEnvelope(w, http.StatusBadRequest, response{Errors: []apiError{{
				Message: err.Error(),
				Code:    CodeBadRequest,
			}}})
			return
		}

		out, err := h(r.Context(), input)
		if err != nil {
			writeEnvelope(w, http.StatusOK, response{Errors: []apiError{d.toAPIError(req.Operation, err)}})
			return
		}

		writeEnvelope(w, http.StatusOK, response{Data: map[string]any{req.Operation: out}})
	}
}

func (d *Dispatcher) toAPIError(op string, err error) apiError {
	if errors.Is(err, pets.ErrInvalidInput) || errors.Is(err, users.ErrInvalidInput) {
		return apiError{Message: err.Error(), Code: CodeValidationFailed}
	}

	// Todo lo demás se trata como falla del store: se propaga sin
	// retry ni recovery local.
	d.log.Error("operation failed", map[string]any{"op": op, "err": err.Error()})
	return apiError{Message: "store operation failed", Code: CodeStoreError}
}

func writeEnvelope(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
