package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
)

type OperatorRepo struct {
	DB DBTX
}

const createOperator = `-- name: CreateOperator
INSERT INTO operators (id, username, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at, username, password_hash
`

func (r *OperatorRepo) CreateOperator(ctx context.Context, username string, hashedPassword string) (models.Operator, error) {
	rows, _ := r.DB.Query(ctx, createOperator, uuid.New(), username, hashedPassword)
	op, err := pgx.CollectOneRow(rows, rowToOperator)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return op, apperrors.ErrOperatorAlreadyExists
		}

		return op, fmt.Errorf("db error: %w", err)
	}

	return op, nil
}

const getOperatorByID = `-- name: GetOperatorByID
SELECT id, created_at, username, password_hash FROM operators
WHERE id = $1
`

func (r *OperatorRepo) GetOperatorByID(ctx context.Context, id uuid.UUID) (models.Operator, error) {
	rows, _ := r.DB.Query(ctx, getOperatorByID, id)
	return collectOneOperator(rows)
}

const getOperatorByUsername = `-- name: GetOperatorByUsername
SELECT id, created_at, username, password_hash FROM operators
WHERE username = $1
`

func (r *OperatorRepo) GetOperatorByUsername(ctx context.Context, username string) (models.Operator, error) {
	rows, _ := r.DB.Query(ctx, getOperatorByUsername, username)
	return collectOneOperator(rows)
}

func collectOneOperator(rows pgx.Rows) (models.Operator, error) {
	op, err := pgx.CollectOneRow(rows, rowToOperator)

	switch {
	case err == nil:
		return op, nil
	case errors.Is(err, pgx.ErrNoRows):
		return op, apperrors.ErrOperatorNotFound
	default:
		return op, fmt.Errorf("db error: %w", err)
	}
}

func rowToOperator(row pgx.CollectableRow) (models.Operator, error) {
	var op models.Operator
	err := row.Scan(&op.ID, &op.CreatedAt, &op.Username, &op.HashedPassword)
	return op, err
}
