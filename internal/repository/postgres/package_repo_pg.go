package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bhramann/marketplace-api/internal/domain"
)

const packageColumns = `id, status, bookings, rating, name, description, location,
        price_type, price_ranges, date_type, available_dates, specific_dates, quantity,
        main_photos, itinerary, inclusions, highlights, stays,
        created_by, created_at, updated_at`

type PackageRepository struct {
	db *sqlx.DB
}

func NewPackageRepo(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Create(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	const query = `
        INSERT INTO package (status, bookings, rating, name, description, location,
            price_type, price_ranges, date_type, available_dates, specific_dates, quantity,
            main_photos, itinerary, inclusions, highlights, stays, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING ` + packageColumns
	row := r.db.QueryRowxContext(ctx, query,
		pkg.Status, pkg.Bookings, pkg.Rating, pkg.Name, pkg.Description, pkg.Location,
		pkg.PriceType, pkg.PriceRanges, pkg.DateType, pkg.AvailableDates, pkg.SpecificDates, pkg.Quantity,
		pkg.MainPhotos, pkg.Itinerary, pkg.Inclusions, pkg.Highlights, pkg.Stays, pkg.CreatedBy,
	)
	var created domain.Package
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	const query = `SELECT ` + packageColumns + ` FROM package WHERE id = $1`
	var pkg domain.Package
	if err := r.db.GetContext(ctx, &pkg, query, id); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) ListActive(ctx context.Context, filter domain.PackageFilter) ([]domain.Package, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + packageColumns + ` FROM package WHERE status = 'active'`)

	args := make([]any, 0, 3)
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		args = append(args, "%"+loc+"%")
		sb.WriteString(` AND location ILIKE $` + strconv.Itoa(len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		sb.WriteString(` AND EXISTS (SELECT 1 FROM jsonb_array_elements(price_ranges) pr WHERE (pr->>'price')::numeric >= $` + strconv.Itoa(len(args)) + `)`)
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		sb.WriteString(` AND EXISTS (SELECT 1 FROM jsonb_array_elements(price_ranges) pr WHERE (pr->>'price')::numeric <= $` + strconv.Itoa(len(args)) + `)`)
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	packages := []domain.Package{}
	if err := r.db.SelectContext(ctx, &packages, sb.String(), args...); err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *PackageRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Package, error) {
	const query = `SELECT ` + packageColumns + ` FROM package WHERE created_by = $1 ORDER BY updated_at DESC`
	packages := []domain.Package{}
	if err := r.db.SelectContext(ctx, &packages, query, creatorID); err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *PackageRepository) Update(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	const query = `
        UPDATE package
        SET status = $2, bookings = $3, rating = $4, name = $5, description = $6, location = $7,
            price_type = $8, price_ranges = $9, date_type = $10, available_dates = $11,
            specific_dates = $12, quantity = $13, main_photos = $14, itinerary = $15,
            inclusions = $16, highlights = $17, stays = $18,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + packageColumns
	row := r.db.QueryRowxContext(ctx, query,
		pkg.ID, pkg.Status, pkg.Bookings, pkg.Rating, pkg.Name, pkg.Description, pkg.Location,
		pkg.PriceType, pkg.PriceRanges, pkg.DateType, pkg.AvailableDates,
		pkg.SpecificDates, pkg.Quantity, pkg.MainPhotos, pkg.Itinerary,
		pkg.Inclusions, pkg.Highlights, pkg.Stays,
	)
	var updated domain.Package
	if err := row.StructScan(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *PackageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM package WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
