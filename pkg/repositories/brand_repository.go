package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/apperrors"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/database"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/jsonutil"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
)

// BrandRepository provides data access for the brand registry: brands plus
// the SKU filing rows they own. Every mutation runs as one short transaction;
// readers never see a partial multi-field update.
type BrandRepository interface {
	// UpsertPermitRecord creates the brand if absent, unions the record's
	// permit/country/class-type values into the brand's sets, applies the
	// classification to exactly one tier field, and creates or updates the
	// SKU row keyed by the record's TTB ID.
	UpsertPermitRecord(ctx context.Context, rec *models.IngestRecord, cls *models.Classification) (*models.UpsertResult, error)

	// Get returns the full brand projection including SKUs, or (nil, nil)
	// when the brand does not exist.
	Get(ctx context.Context, name string) (*models.Brand, error)

	// List returns every brand with its SKUs, ordered by name. Query and
	// ranking engines read through this on every request; there is no
	// process-wide cached snapshot.
	List(ctx context.Context) ([]*models.Brand, error)

	// UpdateEnrichment replaces the brand's enrichment payload wholesale.
	UpdateEnrichment(ctx context.Context, name string, payload models.Enrichment) error

	// ClearEnrichment nulls out the brand's enrichment payload.
	ClearEnrichment(ctx context.Context, name string) error

	// Consolidate merges the member brands into the canonical name in one
	// transaction: union-merge all fields, re-point member SKUs, delete
	// non-canonical member rows. All-or-nothing.
	Consolidate(ctx context.Context, canonical string, members []string) (*models.MergeSummary, error)

	// Reset destroys the whole registry: all brands and all SKUs.
	Reset(ctx context.Context) error

	// RepairImporterClassifications is a one-time migration for legacy rows:
	// importer entries whose stored key lacks the importer marker are folded
	// back into brand_permits. Returns the number of entries moved.
	RepairImporterClassifications(ctx context.Context) (int, error)
}

type brandRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBrandRepository creates a new BrandRepository.
func NewBrandRepository(db *database.DB, logger *zap.Logger) BrandRepository {
	return &brandRepository{
		db:     db,
		logger: logger.Named("brand-repository"),
	}
}

var _ BrandRepository = (*brandRepository)(nil)

const brandColumns = `name, created_at, updated_at, permit_numbers, countries,
	class_types, importers, producers, brand_permits, enrichment`

func (r *brandRepository) UpsertPermitRecord(ctx context.Context, rec *models.IngestRecord, cls *models.Classification) (*models.UpsertResult, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	result := &models.UpsertResult{}

	brand, err := r.lockBrand(ctx, tx, rec.BrandName)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		brand = models.NewBrand(rec.BrandName, now)
		if _, err := tx.Exec(ctx,
			`INSERT INTO brands (name, created_at, updated_at) VALUES ($1, $2, $2)`,
			brand.Name, now,
		); err != nil {
			return nil, fmt.Errorf("failed to create brand %q: %w", rec.BrandName, err)
		}
		result.BrandCreated = true
	}

	brand.AddPermitNumber(rec.PermitNumber)
	if cls != nil && cls.Permit != rec.PermitNumber {
		brand.AddPermitNumber(cls.Permit)
	}
	brand.AddCountry(rec.Country())
	brand.AddClassType(rec.ClassTypeValue())
	brand.ApplyClassification(cls)
	brand.UpdatedAt = now

	if err := r.writeBrandFields(ctx, tx, brand); err != nil {
		return nil, err
	}

	created, err := upsertSKU(ctx, tx, rec, now)
	if err != nil {
		return nil, err
	}
	if created {
		result.SKUCreated = true
	} else {
		result.SKUUpdated = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit upsert for brand %q: %w", rec.BrandName, err)
	}
	return result, nil
}

// lockBrand reads a brand row under FOR UPDATE, or nil when absent.
func (r *brandRepository) lockBrand(ctx context.Context, tx pgx.Tx, name string) (*models.Brand, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE name = $1 FOR UPDATE`, name)
	brand, err := r.scanBrand(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return brand, nil
}

func (r *brandRepository) writeBrandFields(ctx context.Context, tx pgx.Tx, brand *models.Brand) error {
	permits, countries, classTypes, importers, producers, brandPermits, enrichment, err := marshalBrandFields(brand)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE brands
		SET updated_at = $2, permit_numbers = $3, countries = $4, class_types = $5,
		    importers = $6, producers = $7, brand_permits = $8, enrichment = $9
		WHERE name = $1`,
		brand.Name, brand.UpdatedAt, permits, countries, classTypes,
		importers, producers, brandPermits, enrichment,
	)
	if err != nil {
		return fmt.Errorf("failed to update brand %q: %w", brand.Name, err)
	}
	return nil
}

// upsertSKU creates or updates the filing row keyed by the record's TTB ID,
// re-pointing it to the record's brand when ownership changed. The xmax trick
// distinguishes a fresh insert from a conflict update.
func upsertSKU(ctx context.Context, tx pgx.Tx, rec *models.IngestRecord, now time.Time) (created bool, err error) {
	err = tx.QueryRow(ctx, `
		INSERT INTO skus (
			ttb_id, brand_name, permit_number, serial_number, completion_date,
			fanciful_name, origin, origin_description, class_type,
			class_type_description, added_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (ttb_id) DO UPDATE SET
			brand_name = EXCLUDED.brand_name,
			permit_number = EXCLUDED.permit_number,
			serial_number = EXCLUDED.serial_number,
			completion_date = EXCLUDED.completion_date,
			fanciful_name = EXCLUDED.fanciful_name,
			origin = EXCLUDED.origin,
			origin_description = EXCLUDED.origin_description,
			class_type = EXCLUDED.class_type,
			class_type_description = EXCLUDED.class_type_description,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)`,
		rec.TTBID, rec.BrandName, rec.PermitNumber, rec.SerialNumber,
		rec.CompletionDate, rec.FancifulName, rec.Origin, rec.OriginDescription,
		rec.ClassType, rec.ClassTypeDescription, now,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert sku %q: %w", rec.TTBID, err)
	}
	return created, nil
}

func (r *brandRepository) Get(ctx context.Context, name string) (*models.Brand, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE name = $1`, name)
	brand, err := r.scanBrand(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Brand not found
		}
		return nil, err
	}

	skus, err := r.loadSKUs(ctx, name)
	if err != nil {
		return nil, err
	}
	brand.SKUs = skus
	return brand, nil
}

func (r *brandRepository) List(ctx context.Context) ([]*models.Brand, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+brandColumns+` FROM brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	var brands []*models.Brand
	index := make(map[string]*models.Brand)
	for rows.Next() {
		brand, err := r.scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, brand)
		index[brand.Name] = brand
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}

	skuRows, err := r.db.Pool.Query(ctx,
		`SELECT `+skuColumns+` FROM skus ORDER BY ttb_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query skus: %w", err)
	}
	defer skuRows.Close()

	for skuRows.Next() {
		sku, err := scanSKU(skuRows)
		if err != nil {
			return nil, err
		}
		if brand, ok := index[sku.BrandName]; ok {
			brand.SKUs = append(brand.SKUs, sku)
		}
	}
	if err := skuRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skus: %w", err)
	}

	return brands, nil
}

func (r *brandRepository) UpdateEnrichment(ctx context.Context, name string, payload models.Enrichment) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal enrichment payload: %w", err)
	}
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE brands SET enrichment = $2, updated_at = now() WHERE name = $1`,
		name, data)
	if err != nil {
		return fmt.Errorf("failed to update enrichment for %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *brandRepository) ClearEnrichment(ctx context.Context, name string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE brands SET enrichment = NULL, updated_at = now() WHERE name = $1`,
		name)
	if err != nil {
		return fmt.Errorf("failed to clear enrichment for %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *brandRepository) Consolidate(ctx context.Context, canonical string, members []string) (*models.MergeSummary, error) {
	if len(members) == 0 {
		return nil, apperrors.ErrNoMembers
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin consolidation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	// Lock and read every member in input order; merge order is input order.
	var found []*models.Brand
	var nonCanonical []string
	for _, name := range members {
		brand, err := r.lockBrand(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		if brand == nil {
			continue
		}
		found = append(found, brand)
		if name != canonical {
			nonCanonical = append(nonCanonical, name)
		}
	}
	if len(found) == 0 {
		return nil, apperrors.ErrNotFound
	}

	merged, summary := models.MergeBrands(canonical, found, now)
	merged.UpdatedAt = now

	permits, countries, classTypes, importers, producers, brandPermits, enrichment, err := marshalBrandFields(merged)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO brands (
			name, created_at, updated_at, permit_numbers, countries, class_types,
			importers, producers, brand_permits, enrichment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			permit_numbers = EXCLUDED.permit_numbers,
			countries = EXCLUDED.countries,
			class_types = EXCLUDED.class_types,
			importers = EXCLUDED.importers,
			producers = EXCLUDED.producers,
			brand_permits = EXCLUDED.brand_permits,
			enrichment = EXCLUDED.enrichment`,
		merged.Name, merged.CreatedAt, merged.UpdatedAt, permits, countries,
		classTypes, importers, producers, brandPermits, enrichment,
	); err != nil {
		return nil, fmt.Errorf("failed to write canonical brand %q: %w", canonical, err)
	}

	if len(nonCanonical) > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE skus SET brand_name = $1, updated_at = $2 WHERE brand_name = ANY($3)`,
			canonical, now, nonCanonical,
		); err != nil {
			return nil, fmt.Errorf("failed to re-point member SKUs to %q: %w", canonical, err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM brands WHERE name = ANY($1)`, nonCanonical,
		); err != nil {
			return nil, fmt.Errorf("failed to delete member brands: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit consolidation into %q: %w", canonical, err)
	}

	r.logger.Info("Consolidated brands",
		zap.String("canonical", canonical),
		zap.Int("members", summary.MergedBrands),
		zap.Int("permits", summary.MergedPermits))
	return summary, nil
}

func (r *brandRepository) Reset(ctx context.Context) error {
	r.logger.Warn("Resetting brand registry: all brands and SKUs will be deleted")

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE skus, brands`); err != nil {
		return fmt.Errorf("failed to truncate registry tables: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit registry reset: %w", err)
	}
	return nil
}

func (r *brandRepository) RepairImporterClassifications(ctx context.Context) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin repair transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT `+brandColumns+` FROM brands ORDER BY name FOR UPDATE`)
	if err != nil {
		return 0, fmt.Errorf("failed to query brands for repair: %w", err)
	}

	var dirty []*models.Brand
	for rows.Next() {
		brand, err := r.scanBrand(rows)
		if err != nil {
			rows.Close()
			return 0, err
		}
		dirty = append(dirty, brand)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating brands for repair: %w", err)
	}

	moved := 0
	for _, brand := range dirty {
		changed := false
		for permit := range brand.Importers {
			if models.IsImporterPermit(permit) {
				continue
			}
			delete(brand.Importers, permit)
			if !brand.HasClassifiedPermit(permit) {
				brand.BrandPermits = append(brand.BrandPermits, permit)
			}
			moved++
			changed = true
		}
		if !changed {
			continue
		}
		brand.UpdatedAt = time.Now()
		if err := r.writeBrandFields(ctx, tx, brand); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit classification repair: %w", err)
	}

	if moved > 0 {
		r.logger.Info("Repaired misclassified importer permits", zap.Int("moved", moved))
	}
	return moved, nil
}

// ============================================================================
// Scan / marshal helpers
// ============================================================================

const skuColumns = `ttb_id, brand_name, permit_number, serial_number,
	completion_date, fanciful_name, origin, origin_description, class_type,
	class_type_description, added_at, updated_at`

func (r *brandRepository) scanBrand(row pgx.Row) (*models.Brand, error) {
	var b models.Brand
	var permits, countries, classTypes, importers, producers, brandPermits, enrichment []byte

	err := row.Scan(
		&b.Name,
		&b.CreatedAt,
		&b.UpdatedAt,
		&permits,
		&countries,
		&classTypes,
		&importers,
		&producers,
		&brandPermits,
		&enrichment,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan brand: %w", err)
	}

	// Malformed stored content degrades to empty, never fails the read.
	var bad bool
	if b.PermitNumbers, bad = jsonutil.StringSlice(permits); bad {
		r.warnCorrupt(b.Name, "permit_numbers")
	}
	if b.Countries, bad = jsonutil.StringSlice(countries); bad {
		r.warnCorrupt(b.Name, "countries")
	}
	if b.ClassTypes, bad = jsonutil.StringSlice(classTypes); bad {
		r.warnCorrupt(b.Name, "class_types")
	}
	if b.Importers, bad = jsonutil.StringMap[models.ImporterDetail](importers); bad {
		r.warnCorrupt(b.Name, "importers")
	}
	if b.Producers, bad = jsonutil.StringMap[models.ProducerDetail](producers); bad {
		r.warnCorrupt(b.Name, "producers")
	}
	if b.BrandPermits, bad = jsonutil.StringSlice(brandPermits); bad {
		r.warnCorrupt(b.Name, "brand_permits")
	}
	if b.Importers == nil {
		b.Importers = make(map[string]models.ImporterDetail)
	}
	if b.Producers == nil {
		b.Producers = make(map[string]models.ProducerDetail)
	}

	payload, err := models.DecodeEnrichment(enrichment)
	if err != nil {
		r.warnCorrupt(b.Name, "enrichment")
	} else {
		b.Enrichment = payload
	}

	return &b, nil
}

func (r *brandRepository) warnCorrupt(brand, field string) {
	r.logger.Warn("Malformed stored field, degrading to empty",
		zap.String("brand", brand),
		zap.String("field", field))
}

func (r *brandRepository) loadSKUs(ctx context.Context, brand string) ([]*models.SKU, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+skuColumns+` FROM skus WHERE brand_name = $1 ORDER BY ttb_id`, brand)
	if err != nil {
		return nil, fmt.Errorf("failed to query skus for %q: %w", brand, err)
	}
	defer rows.Close()

	var skus []*models.SKU
	for rows.Next() {
		sku, err := scanSKU(rows)
		if err != nil {
			return nil, err
		}
		skus = append(skus, sku)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skus for %q: %w", brand, err)
	}
	return skus, nil
}

func scanSKU(row pgx.Row) (*models.SKU, error) {
	var s models.SKU
	err := row.Scan(
		&s.TTBID,
		&s.BrandName,
		&s.PermitNumber,
		&s.SerialNumber,
		&s.CompletionDate,
		&s.FancifulName,
		&s.Origin,
		&s.OriginDescription,
		&s.ClassType,
		&s.ClassTypeDescription,
		&s.AddedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sku: %w", err)
	}
	return &s, nil
}

func marshalBrandFields(b *models.Brand) (permits, countries, classTypes, importers, producers, brandPermits, enrichment []byte, err error) {
	marshal := func(v any, field string) []byte {
		if err != nil {
			return nil
		}
		var data []byte
		data, err = json.Marshal(v)
		if err != nil {
			err = fmt.Errorf("failed to marshal %s for %q: %w", field, b.Name, err)
		}
		return data
	}

	permits = marshal(emptySlice(b.PermitNumbers), "permit_numbers")
	countries = marshal(emptySlice(b.Countries), "countries")
	classTypes = marshal(emptySlice(b.ClassTypes), "class_types")
	importers = marshal(b.Importers, "importers")
	producers = marshal(b.Producers, "producers")
	brandPermits = marshal(emptySlice(b.BrandPermits), "brand_permits")
	if b.Enrichment != nil {
		enrichment = marshal(b.Enrichment, "enrichment")
	}
	return
}

// emptySlice keeps JSONB arrays as [] rather than null.
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
