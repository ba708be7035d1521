package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLedger(t *testing.T) (*Ledger, *memory.ProductRepo) {
	t.Helper()
	repo := memory.NewProductRepository()
	return NewLedger(repo, zap.NewNop()), repo
}

func seed(t *testing.T, repo *memory.ProductRepo, sizes map[string]int64) uint64 {
	t.Helper()
	p := &domain.Product{Name: "Hoodie", Price: 100}
	for size, stock := range sizes {
		p.Sizes = append(p.Sizes, domain.SizeStock{Size: size, Stock: stock})
	}
	require.NoError(t, repo.Save(context.Background(), p))
	return p.ID
}

func TestLedgerReserve(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t)
	id := seed(t, repo, map[string]int64{"M": 3, "L": 2})

	err := ledger.Reserve(ctx, []Reservation{
		{ProductID: id, Size: "M", Quantity: 2},
		{ProductID: id, Size: "L", Quantity: 1},
	})
	require.NoError(t, err)

	mStock, _ := repo.SizeStock(ctx, id, "M")
	lStock, _ := repo.SizeStock(ctx, id, "L")
	assert.Equal(t, int64(1), mStock)
	assert.Equal(t, int64(1), lStock)
}

func TestLedgerReserveAllOrNothing(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t)
	id := seed(t, repo, map[string]int64{"M": 5, "L": 1})

	err := ledger.Reserve(ctx, []Reservation{
		{ProductID: id, Size: "M", Quantity: 2},
		{ProductID: id, Size: "L", Quantity: 3},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	mStock, _ := repo.SizeStock(ctx, id, "M")
	lStock, _ := repo.SizeStock(ctx, id, "L")
	assert.Equal(t, int64(5), mStock, "valid item must be compensated")
	assert.Equal(t, int64(1), lStock)
}

func TestLedgerReserveUnknownProduct(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t)
	id := seed(t, repo, map[string]int64{"M": 5})

	err := ledger.Reserve(ctx, []Reservation{
		{ProductID: id, Size: "M", Quantity: 1},
		{ProductID: 999, Size: "M", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	mStock, _ := repo.SizeStock(ctx, id, "M")
	assert.Equal(t, int64(5), mStock)
}

func TestLedgerReserveEmptySet(t *testing.T) {
	ledger, _ := newTestLedger(t)
	assert.NoError(t, ledger.Reserve(context.Background(), nil))
}

func TestLedgerConcurrentReserveLastUnit(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t)
	id := seed(t, repo, map[string]int64{"M": 1})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Reserve(ctx, []Reservation{{ProductID: id, Size: "M", Quantity: 1}})
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one buyer wins the last unit")
	assert.Equal(t, 1, insufficient)

	stock, _ := repo.SizeStock(ctx, id, "M")
	assert.Equal(t, int64(0), stock)
}

func TestLedgerReleaseRestoresStock(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t)
	id := seed(t, repo, map[string]int64{"M": 3})

	require.NoError(t, ledger.Reserve(ctx, []Reservation{{ProductID: id, Size: "M", Quantity: 2}}))
	require.NoError(t, ledger.Release(ctx, id, "M", 2))

	stock, _ := repo.SizeStock(ctx, id, "M")
	assert.Equal(t, int64(3), stock)
}

func TestLedgerMarkSoldLeavesStockAlone(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t)
	id := seed(t, repo, map[string]int64{"M": 3})

	require.NoError(t, ledger.MarkSold(ctx, id, 2))

	p, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Sold)
	assert.Equal(t, int64(3), p.TotalStock())

	assert.ErrorIs(t, ledger.MarkSold(ctx, 999, 1), domain.ErrProductNotFound)
}

func TestLedgerReserveExpiredContext(t *testing.T) {
	ledger, repo := newTestLedger(t)
	id := seed(t, repo, map[string]int64{"M": 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ledger.Reserve(ctx, []Reservation{{ProductID: id, Size: "M", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrConflictRetryable)

	stock, _ := repo.SizeStock(context.Background(), id, "M")
	assert.Equal(t, int64(3), stock, "no partial effect on conflict")
}
