package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-catalog/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, name, type, img, owner_user_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		p.ID,
		p.Name,
		string(p.Type),
		p.Img,
		toNullString(p.OwnerID),
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create pet: %w", err)
	}
	return nil
}

func (r *PetsRepo) FindOne(ctx context.Context, f pets.Filter) (pets.Pet, bool, error) {
	where, args := buildWhere(f)

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, img, owner_user_id, created_at
		FROM pets
		`+where+`
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, args...)

	p, err := scanPet(row)
	if err == sql.ErrNoRows {
		return pets.Pet{}, false, nil
	}
	if err != nil {
		return pets.Pet{}, false, fmt.Errorf("postgres: find pet: %w", err)
	}
	return p, true, nil
}

func (r *PetsRepo) FindMany(ctx context.Context, f pets.Filter) ([]pets.Pet, error) {
	where, args := buildWhere(f)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, img, owner_user_id, created_at
		FROM pets
		`+where+`
		ORDER BY created_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list pets: %w", err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: list pets: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var typ string
	var owner sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &typ, &p.Img, &owner, &p.CreatedAt); err != nil {
		return pets.Pet{}, err
	}
	p.Type = pets.PetType(typ)
	if owner.Valid {
		p.OwnerID = owner.String
	}
	return p, nil
}

// buildWhere arma el WHERE parametrizado a partir del filtro (AND
// sobre los campos presentes; filtro vacío => sin WHERE).
func buildWhere(f pets.Filter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)

	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	add("id", f.ID)
	add("name", f.Name)
	add("type", f.Type)
	add("owner_user_id", f.OwnerID)

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
