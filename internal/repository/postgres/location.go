package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cardrip/cardrip/internal/models"
)

type LocationRepo struct {
	DB DBTX
}

const createLocation = `-- name: CreateLocation
INSERT INTO locations (id, name, kind)
VALUES ($1, $2, $3)
RETURNING id, name, kind, created_at
`

func (r *LocationRepo) CreateLocation(ctx context.Context, name string, kind string) (models.Location, error) {
	rows, _ := r.DB.Query(ctx, createLocation, uuid.New(), name, kind)
	loc, err := pgx.CollectOneRow(rows, rowToLocation)
	if err != nil {
		return loc, fmt.Errorf("db error: %w", err)
	}

	return loc, nil
}

const listLocations = `-- name: ListLocations
SELECT id, name, kind, created_at FROM locations
ORDER BY name
`

func (r *LocationRepo) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, _ := r.DB.Query(ctx, listLocations)
	locations, err := pgx.CollectRows(rows, rowToLocation)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return locations, nil
}

func rowToLocation(row pgx.CollectableRow) (models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.Name, &l.Kind, &l.CreatedAt)
	return l, err
}
