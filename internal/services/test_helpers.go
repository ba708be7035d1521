package services

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/inventory"
	"storefront/internal/mocks"
	"storefront/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newMemoryService wires an OrderService against the in-memory stores so
// tests can observe real stock movement.
func newMemoryService(t *testing.T) (*OrderService, *memory.ProductRepo, *memory.OrderRepo) {
	t.Helper()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	logger := zap.NewNop()
	ledger := inventory.NewLedger(products, logger)

	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	return NewOrderService(orders, products, ledger, pub, logger), products, orders
}

func seedCatalog(t *testing.T, products *memory.ProductRepo, name string, price int64, sizes map[string]int64) uint64 {
	t.Helper()
	p := &domain.Product{Name: name, Image: "/img/" + name + ".png", Price: price}
	for size, stock := range sizes {
		p.Sizes = append(p.Sizes, domain.SizeStock{Size: size, Stock: stock})
	}
	require.NoError(t, products.Save(context.Background(), p))
	return p.ID
}

func validShipping() domain.ShippingAddress {
	return domain.ShippingAddress{
		Address:    "12 Main St",
		City:       "Dhaka",
		PostalCode: "1207",
		Country:    "Bangladesh",
		Phone:      "01712345678",
	}
}

func checkoutInput(items ...CartItem) PlaceOrderInput {
	return PlaceOrderInput{
		Buyer:           Buyer{UserID: 1, Name: "Alice Rahman", Email: "alice@example.com"},
		Items:           items,
		ShippingAddress: validShipping(),
		PaymentMethod:   domain.PaymentCashOnDelivery,
	}
}

func sizeStock(t *testing.T, products *memory.ProductRepo, productID uint64, size string) int64 {
	t.Helper()
	stock, err := products.SizeStock(context.Background(), productID, size)
	require.NoError(t, err)
	return stock
}
