package memory

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrders(t *testing.T, repo *OrderRepo) {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{OrderCode: "ORD-AAA111", UserID: 1, BuyerName: "Alice Rahman", BuyerEmail: "alice@example.com", TotalPrice: 270, Status: domain.StatusPlaced, CreatedAt: base},
		{OrderCode: "ORD-BBB222", UserID: 2, BuyerName: "Bob Hossain", BuyerEmail: "bob@example.com", TotalPrice: 170, Status: domain.StatusShipped, CreatedAt: base.Add(time.Hour)},
		{OrderCode: "ORD-CCC333", UserID: 1, BuyerName: "Alice Rahman", BuyerEmail: "alice@example.com", TotalPrice: 570, Status: domain.StatusDelivered, CreatedAt: base.Add(2 * time.Hour)},
		{OrderCode: "ORD-DDD444", UserID: 3, BuyerName: "Charlie Akter", BuyerEmail: "charlie@example.com", TotalPrice: 70, Status: domain.StatusPlaced, CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range orders {
		require.NoError(t, repo.Save(context.Background(), &orders[i]))
	}
}

func TestOrderRepoListFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	seedOrders(t, repo)

	tests := []struct {
		name         string
		filter       repository.OrderFilter
		wantCodes    []string
		wantMatching int64
	}{
		{
			name:         "no filter returns all in storage order",
			filter:       repository.OrderFilter{},
			wantCodes:    []string{"ORD-AAA111", "ORD-BBB222", "ORD-CCC333", "ORD-DDD444"},
			wantMatching: 4,
		},
		{
			name:         "query matches buyer name case-insensitively",
			filter:       repository.OrderFilter{Query: "alice"},
			wantCodes:    []string{"ORD-AAA111", "ORD-CCC333"},
			wantMatching: 2,
		},
		{
			name:         "query matches email",
			filter:       repository.OrderFilter{Query: "BOB@example"},
			wantCodes:    []string{"ORD-BBB222"},
			wantMatching: 1,
		},
		{
			name:         "query matches order code",
			filter:       repository.OrderFilter{Query: "ddd444"},
			wantCodes:    []string{"ORD-DDD444"},
			wantMatching: 1,
		},
		{
			name:         "status filter",
			filter:       repository.OrderFilter{Status: domain.StatusPlaced},
			wantCodes:    []string{"ORD-AAA111", "ORD-DDD444"},
			wantMatching: 2,
		},
		{
			name:         "query and status combined",
			filter:       repository.OrderFilter{Query: "alice", Status: domain.StatusDelivered},
			wantCodes:    []string{"ORD-CCC333"},
			wantMatching: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, matching, all, err := repo.List(ctx, tt.filter, repository.OrderSort{}, repository.OrderPage{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatching, matching)
			assert.Equal(t, int64(4), all)
			codes := make([]string, len(orders))
			for i, o := range orders {
				codes[i] = o.OrderCode
			}
			assert.Equal(t, tt.wantCodes, codes)
		})
	}
}

func TestOrderRepoListSort(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	seedOrders(t, repo)

	orders, _, _, err := repo.List(ctx, repository.OrderFilter{},
		repository.OrderSort{By: repository.SortTotalPrice}, repository.OrderPage{})
	require.NoError(t, err)
	assert.Equal(t, int64(70), orders[0].TotalPrice)
	assert.Equal(t, int64(570), orders[3].TotalPrice)

	orders, _, _, err = repo.List(ctx, repository.OrderFilter{},
		repository.OrderSort{By: repository.SortCreatedAt, Desc: true}, repository.OrderPage{})
	require.NoError(t, err)
	assert.Equal(t, "ORD-DDD444", orders[0].OrderCode)
	assert.Equal(t, "ORD-AAA111", orders[3].OrderCode)
}

func TestOrderRepoListPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	seedOrders(t, repo)

	orders, matching, all, err := repo.List(ctx, repository.OrderFilter{},
		repository.OrderSort{}, repository.OrderPage{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), matching)
	assert.Equal(t, int64(4), all)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-BBB222", orders[0].OrderCode)
	assert.Equal(t, "ORD-CCC333", orders[1].OrderCode)

	orders, _, _, err = repo.List(ctx, repository.OrderFilter{},
		repository.OrderSort{}, repository.OrderPage{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepoFindByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	seedOrders(t, repo)

	orders, err := repo.FindByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-AAA111", orders[0].OrderCode)

	orders, err = repo.FindByUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepoDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	seedOrders(t, repo)

	require.NoError(t, repo.Delete(ctx, 1))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, repo.Delete(ctx, 1), domain.ErrOrderNotFound)

	_, _, all, err := repo.List(ctx, repository.OrderFilter{}, repository.OrderSort{}, repository.OrderPage{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)
}

func TestOrderRepoUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	seedOrders(t, repo)

	require.NoError(t, repo.UpdateStatus(ctx, 2, domain.StatusShipped, domain.StatusDelivered, true))

	got, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)
	assert.True(t, got.Paid)

	// The swap only lands when the stored status matches the expectation.
	err = repo.UpdateStatus(ctx, 2, domain.StatusShipped, domain.StatusCancelled, false)
	assert.ErrorIs(t, err, domain.ErrConflictRetryable)

	got, err = repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status, "lost swap must not overwrite")

	err = repo.UpdateStatus(ctx, 99, domain.StatusPlaced, domain.StatusShipped, false)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
