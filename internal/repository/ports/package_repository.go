package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/bhramann/marketplace-api/internal/domain"
)

type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.Package) (*domain.Package, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Package, error)
	ListActive(ctx context.Context, filter domain.PackageFilter) ([]domain.Package, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Package, error)
	Update(ctx context.Context, pkg *domain.Package) (*domain.Package, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
