package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	FindProduct(ctx context.Context, productID int) (domain.Product, error)
}
