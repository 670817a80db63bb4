package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)

	products, err := c.ListProducts(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, products)

	// restartable: a second listing returns the same sequence
	again, err := c.ListProducts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, products, again)

	product, err := c.FindProduct(t.Context(), products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, products[0], product)
}

func TestFindProductNotFound(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)

	_, err = c.FindProduct(t.Context(), -42)
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "-42", notFound.ID)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantNames []string
		wantError string
	}{
		{
			name: "yaml file: ok",
			content: `
- id: 7
  name: Poster
  price: 12.5
  currency: USD
- id: 8
  name: Sticker
  price: "1.99"
  currency: USD
`,
			wantNames: []string{"Poster", "Sticker"},
		},
		{
			name:      "json file: ok",
			content:   `[{"id": 1, "name": "Mug", "price": 9.99, "currency": "EUR"}]`,
			wantNames: []string{"Mug"},
		},
		{
			name: "duplicate ids: fail",
			content: `[{"id": 1, "name": "Mug", "price": 9.99, "currency": "EUR"},
			           {"id": 1, "name": "Cup", "price": 4.99, "currency": "EUR"}]`,
			wantError: "product[1]: duplicate id",
		},
		{
			name:      "negative price: fail",
			content:   `[{"id": 2, "name": "Mug", "price": -1, "currency": "EUR"}]`,
			wantError: "product[2]: total: must be non-negative",
		},
		{
			name:      "missing name: fail",
			content:   `[{"id": 3, "price": 1, "currency": "EUR"}]`,
			wantError: "product[3]: name is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "products.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			c, err := catalog.Load(path)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			products, err := c.ListProducts(t.Context())
			require.NoError(t, err)

			var names []string
			for _, p := range products {
				names = append(names, p.Name)
				assert.False(t, p.Price.IsNegative())
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestProductOrderItem(t *testing.T) {
	p := domain.Product{ID: 1, Name: "Mug", SKU: "MUG-1", Price: decimal.RequireFromString("9.99"), Currency: "EUR"}

	item := p.OrderItem()
	assert.Equal(t, "Mug", item.ProductName)
	assert.Equal(t, "MUG-1", item.ProductSKU)
	assert.Equal(t, int32(1), item.Quantity)
	assert.True(t, item.TotalPrice.Equal(p.Price))
}
