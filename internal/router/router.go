package router

import (
	"database/sql"
	"net/http"

	mem "pet-catalog/internal/adapters/storage/memory"
	pg "pet-catalog/internal/adapters/storage/postgres"
	"pet-catalog/internal/domain/pets"
	"pet-catalog/internal/domain/users"
	"pet-catalog/internal/graph"
	"pet-catalog/internal/platform/logger"
	"pet-catalog/internal/schema"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: nil => logger descartado (tests).
	Log logger.Logger
}

// NewRouter arma el server completo: repos, services, contrato y
// dispatch. Devuelve error si el dispatch table no cierra contra el
// contrato declarado (eso es un bug de wiring, mejor fallar al boot).
func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		petRepo  pets.Repository
		userRepo users.Repository
	)

	if opts.DB != nil {
		petRepo = pg.NewPetsRepo(opts.DB)
		userRepo = pg.NewUsersRepo(opts.DB)
	} else {
		petRepo = mem.NewPetRepo()
		userRepo = mem.NewUserRepo()
	}

	usersSvc := users.NewService(userRepo)
	petsSvc := pets.NewService(petRepo, usersSvc)

	contract := schema.New()
	dispatcher, err := graph.NewDispatcher(contract, petsSvc, usersSvc, log)
	if err != nil {
		return nil, err
	}

	r.Post("/query", dispatcher.Handle())

	return r, nil
}
