package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uprez/upgrade-engine/internal/model"
)

// ErrPropertyNotFound is returned when a property lookup fails.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyRepo provides read access to the property portfolio. The
// engine never writes properties; inventory tooling owns that table.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo constructs a PropertyRepo with the given DB handle.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

const propertyColumns = `id, name, location, beds, baths, list_nightly_rate, type, category, amenities, images, created_at, updated_at`

// scanProperty reads one property row, decoding the JSON array columns
// at this boundary so callers only ever see native slices.
func scanProperty(scan func(dest ...any) error) (*model.Property, error) {
	var p model.Property
	var typ, category, amenities, images sql.NullString
	if err := scan(
		&p.ID, &p.Name, &p.Location, &p.Beds, &p.Baths, &p.ListNightlyRate,
		&typ, &category, &amenities, &images, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Type = typ.String
	p.Category = category.String
	var err error
	if p.Amenities, err = decodeStrings(amenities); err != nil {
		return nil, err
	}
	if p.Images, err = decodeStrings(images); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a property by its ID. It returns
// ErrPropertyNotFound when no row exists.
func (r *PropertyRepo) GetByID(ctx context.Context, id string) (*model.Property, error) {
	const q = `SELECT ` + propertyColumns + ` FROM properties WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	p, err := scanProperty(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetAll returns the full portfolio ordered by ID. The ordering is
// what makes candidate iteration, and therefore tie-breaking between
// equally scored options, deterministic across invocations.
func (r *PropertyRepo) GetAll(ctx context.Context) ([]model.Property, error) {
	const q = `SELECT ` + propertyColumns + ` FROM properties ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
