package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvault/ledger/internal/domain"
)

// EntityRepository implements usecase.EntityRepository.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// Create creates a new entity.
func (r *EntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO entities (id, principal_id, name, treasury, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entity.ID,
		entity.PrincipalID,
		entity.Name,
		entity.Treasury,
		timeToPgTimestamptz(entity.CreatedAt),
	)

	return err
}

// GetByID retrieves an entity by ID.
func (r *EntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, principal_id, name, treasury, created_at
		FROM entities
		WHERE id = $1`, id)

	return scanEntity(row)
}

// ListByPrincipal retrieves all entities of a principal.
func (r *EntityRepository) ListByPrincipal(ctx context.Context, principalID string) ([]*domain.Entity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, principal_id, name, treasury, created_at
		FROM entities
		WHERE principal_id = $1
		ORDER BY created_at, id`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var (
		entity    domain.Entity
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&entity.ID, &entity.PrincipalID, &entity.Name, &entity.Treasury, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}

		return nil, err
	}

	entity.CreatedAt = createdAt.Time

	return &entity, nil
}
