package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"gopkg.in/yaml.v3"
)

//go:embed products.json
var defaultProducts []byte

// Catalog is a read-only product list loaded once at startup.
type Catalog struct {
	products []domain.Product
	byID     map[int]int
}

var _ port.ProductCatalog = (*Catalog)(nil)

// Load reads the catalog from path, or the embedded default when path is empty.
// JSON and YAML files are both accepted.
func Load(path string) (*Catalog, error) {
	data := defaultProducts

	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("os.ReadFile[%s]: %w", path, err)
		}
	}

	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var products []domain.Product

	// a JSON document is valid YAML
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	return New(products)
}

func New(products []domain.Product) (*Catalog, error) {
	byID := make(map[int]int, len(products))

	for idx, p := range products {
		if _, ok := byID[p.ID]; ok {
			return nil, fmt.Errorf("product[%d]: duplicate id", p.ID)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("product[%d]: name is empty", p.ID)
		}
		if _, err := p.Money(); err != nil {
			return nil, fmt.Errorf("product[%d]: %w", p.ID, err)
		}

		byID[p.ID] = idx
	}

	return &Catalog{
		products: products,
		byID:     byID,
	}, nil
}

func (c *Catalog) ListProducts(_ context.Context) ([]domain.Product, error) {
	result := make([]domain.Product, len(c.products))
	copy(result, c.products)
	return result, nil
}

func (c *Catalog) FindProduct(_ context.Context, productID int) (domain.Product, error) {
	idx, ok := c.byID[productID]
	if !ok {
		return domain.Product{}, &domain.NotFoundError{
			Resource: "product",
			ID:       strconv.Itoa(productID),
			Err:      domain.ErrProductNotFound,
		}
	}

	return c.products[idx], nil
}
