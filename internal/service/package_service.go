package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bhramann/marketplace-api/internal/domain"
	"github.com/bhramann/marketplace-api/internal/repository/ports"
)

type PackageService struct {
	packages ports.PackageRepository
	assets   *AssetPipeline
}

func NewPackageService(packages ports.PackageRepository, assets *AssetPipeline) *PackageService {
	return &PackageService{packages: packages, assets: assets}
}

// Create resolves every inline image upload before the first persistence
// call, so the stored record is complete from its very first write and no
// reader can observe it without images.
func (s *PackageService) Create(ctx context.Context, creatorID uuid.UUID, pkg *domain.Package) (*domain.Package, error) {
	if err := validatePackage(pkg); err != nil {
		return nil, err
	}
	pkg.ID = uuid.Nil
	pkg.CreatedBy = creatorID
	applyPackageDefaults(pkg)

	if err := s.assets.Normalize(ctx, pkg); err != nil {
		return nil, err
	}
	return s.packages.Create(ctx, pkg)
}

// ListActive returns active packages for public browsing.
func (s *PackageService) ListActive(ctx context.Context, filter domain.PackageFilter) ([]domain.Package, error) {
	return s.packages.ListActive(ctx, filter)
}

// ListByCreator returns the creator's own packages, active and inactive.
func (s *PackageService) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Package, error) {
	return s.packages.ListByCreator(ctx, creatorID)
}

// GetActiveByID hides inactive packages from the public surface.
func (s *PackageService) GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if !pkg.IsActive() {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

// GetOwned loads a package for mutation, enforcing that only the creator may
// touch it.
func (s *PackageService) GetOwned(ctx context.Context, requesterID, id uuid.UUID) (*domain.Package, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if pkg.CreatedBy != requesterID {
		return nil, ErrPackageForbidden
	}
	return pkg, nil
}

// Update persists a merged package after re-checking ownership and
// normalizing any inline images the update introduced.
func (s *PackageService) Update(ctx context.Context, requesterID uuid.UUID, pkg *domain.Package) (*domain.Package, error) {
	current, err := s.GetOwned(ctx, requesterID, pkg.ID)
	if err != nil {
		return nil, err
	}
	if err := validatePackage(pkg); err != nil {
		return nil, err
	}
	// createdBy is immutable after creation.
	pkg.CreatedBy = current.CreatedBy
	pkg.CreatedAt = current.CreatedAt

	if err := s.assets.Normalize(ctx, pkg); err != nil {
		return nil, err
	}
	updated, err := s.packages.Update(ctx, pkg)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the record and then purges its blobs. Purging is
// best-effort by contract, so a stuck blob never resurrects the listing.
func (s *PackageService) Delete(ctx context.Context, requesterID, id uuid.UUID) error {
	pkg, err := s.GetOwned(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if err := s.packages.Delete(ctx, id); err != nil {
		return err
	}
	s.assets.Purge(ctx, pkg)
	return nil
}

func validatePackage(pkg *domain.Package) error {
	if strings.TrimSpace(pkg.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(pkg.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if strings.TrimSpace(pkg.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	switch pkg.Status {
	case "", domain.PackageStatusActive, domain.PackageStatusInactive:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, pkg.Status)
	}
	switch pkg.PriceType {
	case "", domain.PriceTypeFixed, domain.PriceTypeVariable:
	default:
		return fmt.Errorf("%w: unknown price type %q", ErrValidation, pkg.PriceType)
	}
	switch pkg.DateType {
	case "", domain.DateTypeRange, domain.DateTypeSeparate:
	default:
		return fmt.Errorf("%w: unknown date type %q", ErrValidation, pkg.DateType)
	}
	return nil
}

func applyPackageDefaults(pkg *domain.Package) {
	if pkg.Status == "" {
		pkg.Status = domain.PackageStatusActive
	}
	if pkg.PriceType == "" {
		pkg.PriceType = domain.PriceTypeVariable
	}
	if pkg.DateType == "" {
		pkg.DateType = domain.DateTypeRange
	}
}
