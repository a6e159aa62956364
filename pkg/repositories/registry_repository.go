package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/database"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
)

// RegistryRepository provides access to the importer and producer reference
// registries. The registries are populated by separate ingestion feeds and
// are read-only from the classifier's perspective.
type RegistryRepository interface {
	LookupImporter(ctx context.Context, permit string) (*models.ImporterRecord, error)
	LookupProducer(ctx context.Context, registry models.ProducerRegistry, permit string) (*models.ProducerRecord, error)
	UpsertImporters(ctx context.Context, records []*models.ImporterRecord) (int, error)
	UpsertProducers(ctx context.Context, records []*models.ProducerRecord) (int, error)
}

type registryRepository struct {
	db *database.DB
}

// NewRegistryRepository creates a new RegistryRepository.
func NewRegistryRepository(db *database.DB) RegistryRepository {
	return &registryRepository{db: db}
}

var _ RegistryRepository = (*registryRepository)(nil)

func (r *registryRepository) LookupImporter(ctx context.Context, permit string) (*models.ImporterRecord, error) {
	var rec models.ImporterRecord
	err := r.db.Pool.QueryRow(ctx, `
		SELECT permit_number, owner_name, operating_name, street, city, state, zip, updated_at
		FROM importer_registry
		WHERE permit_number = $1`, permit,
	).Scan(
		&rec.PermitNumber, &rec.OwnerName, &rec.OperatingName,
		&rec.Street, &rec.City, &rec.State, &rec.Zip, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Importer not found
		}
		return nil, fmt.Errorf("failed to look up importer %q: %w", permit, err)
	}
	return &rec, nil
}

func (r *registryRepository) LookupProducer(ctx context.Context, registry models.ProducerRegistry, permit string) (*models.ProducerRecord, error) {
	var rec models.ProducerRecord
	err := r.db.Pool.QueryRow(ctx, `
		SELECT permit_number, registry_type, owner_name, operating_name, street, city, state, zip, updated_at
		FROM producer_registry
		WHERE permit_number = $1 AND registry_type = $2`, permit, string(registry),
	).Scan(
		&rec.PermitNumber, &rec.Registry, &rec.OwnerName, &rec.OperatingName,
		&rec.Street, &rec.City, &rec.State, &rec.Zip, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Producer not found
		}
		return nil, fmt.Errorf("failed to look up %s producer %q: %w", registry, permit, err)
	}
	return &rec, nil
}

func (r *registryRepository) UpsertImporters(ctx context.Context, records []*models.ImporterRecord) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin importer feed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	count := 0
	for _, rec := range records {
		if rec.PermitNumber == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO importer_registry (
				permit_number, owner_name, operating_name, street, city, state, zip, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (permit_number) DO UPDATE SET
				owner_name = EXCLUDED.owner_name,
				operating_name = EXCLUDED.operating_name,
				street = EXCLUDED.street,
				city = EXCLUDED.city,
				state = EXCLUDED.state,
				zip = EXCLUDED.zip,
				updated_at = EXCLUDED.updated_at`,
			rec.PermitNumber, rec.OwnerName, rec.OperatingName,
			rec.Street, rec.City, rec.State, rec.Zip, now,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert importer %q: %w", rec.PermitNumber, err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit importer feed: %w", err)
	}
	return count, nil
}

func (r *registryRepository) UpsertProducers(ctx context.Context, records []*models.ProducerRecord) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin producer feed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	count := 0
	for _, rec := range records {
		if rec.PermitNumber == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO producer_registry (
				permit_number, registry_type, owner_name, operating_name, street, city, state, zip, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (permit_number, registry_type) DO UPDATE SET
				owner_name = EXCLUDED.owner_name,
				operating_name = EXCLUDED.operating_name,
				street = EXCLUDED.street,
				city = EXCLUDED.city,
				state = EXCLUDED.state,
				zip = EXCLUDED.zip,
				updated_at = EXCLUDED.updated_at`,
			rec.PermitNumber, string(rec.Registry), rec.OwnerName, rec.OperatingName,
			rec.Street, rec.City, rec.State, rec.Zip, now,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert %s producer %q: %w", rec.Registry, rec.PermitNumber, err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit producer feed: %w", err)
	}
	return count, nil
}
