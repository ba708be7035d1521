package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/inventory"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CartItem struct {
	ProductID uint64
	Size      string
	Quantity  int64
}

type Buyer struct {
	UserID uint64
	Name   string
	Email  string
}

type PlaceOrderInput struct {
	Buyer           Buyer
	Items           []CartItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
}

type OrderPageResult struct {
	Orders        []domain.Order
	TotalMatching int64
	TotalAll      int64
}

type OrderService struct {
	orders          repository.OrderRepository
	products        repository.ProductRepository
	ledger          *inventory.Ledger
	publisher       rabbit.PublisherInterface
	redisClient     *redis.Client
	group           singleflight.Group
	logger          *zap.Logger
	releaseOnCancel bool
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger *inventory.Ledger,
	pub rabbit.PublisherInterface,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		ledger:    ledger,
		publisher: pub,
		logger:    logger,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// SetReleaseStockOnCancel makes cancellation restore reserved stock. Off by
// default: only explicit deletion compensates inventory.
func (s *OrderService) SetReleaseStockOnCancel(enabled bool) {
	s.releaseOnCancel = enabled
}

// PlaceOrder runs the whole checkout: validate shipping and cart, resolve
// every item against the catalog, reserve stock for the full set, then
// persist the order with a frozen price/name/image snapshot. Nothing is
// persisted and no stock is consumed unless every step succeeds.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", domain.ErrInvalidCart)
	}
	if !input.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidCart, input.PaymentMethod)
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidCart)
		}
	}

	lines := make([]domain.OrderLine, 0, len(input.Items))
	reservations := make([]inventory.Reservation, 0, len(input.Items))
	var total int64
	for _, item := range input.Items {
		// Checkout always reads the authoritative store, never the cache.
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, item.ProductID)
		}
		entry, ok := product.SizeEntry(item.Size)
		if !ok || entry.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: product %d size %s", domain.ErrInsufficientStock, item.ProductID, item.Size)
		}
		lineTotal := product.Price * item.Quantity
		total += lineTotal
		lines = append(lines, domain.OrderLine{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.Image,
			Size:         item.Size,
			Quantity:     item.Quantity,
			Price:        lineTotal,
		})
		reservations = append(reservations, inventory.Reservation{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}

	if err := s.ledger.Reserve(ctx, reservations); err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderCode:       newOrderCode(),
		UserID:          input.Buyer.UserID,
		BuyerName:       input.Buyer.Name,
		BuyerEmail:      input.Buyer.Email,
		Lines:           lines,
		TotalPrice:      total + domain.ShippingFee,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          domain.StatusPlaced,
		CreatedAt:       time.Now(),
	}

	if err := s.orders.Save(ctx, order); err != nil {
		// The reservation already hit the store; put it back so the failed
		// checkout leaves no trace.
		for _, rsv := range reservations {
			if relErr := s.ledger.Release(context.Background(), rsv.ProductID, rsv.Size, rsv.Quantity); relErr != nil {
				s.logger.Error("failed to release reservation after save failure",
					zap.Uint64("productId", rsv.ProductID),
					zap.String("size", rsv.Size),
					zap.Error(relErr))
			}
		}
		return nil, err
	}

	s.invalidateProductCache(ctx, reservations)
	go s.publish(context.Background(), "order.created", domain.OrderCreatedEvent{
		OrderID:    order.ID,
		OrderCode:  order.OrderCode,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	})
	return order, nil
}

// ChangeOrderStatus drives the lifecycle machine. Entering delivered credits
// each product's sold counter exactly once and marks the order paid;
// re-submitting the current terminal state is a no-op.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, id uint64, next domain.OrderStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, next)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", domain.ErrOrderNotFound, id)
	}
	if order.Status.Terminal() && order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}

	paid := order.Paid
	if next == domain.StatusDelivered {
		credited, err := s.creditSold(ctx, order.Lines)
		if err != nil {
			return nil, err
		}
		// The status write is a compare-and-swap on the status we read; a
		// concurrent transition that got there first loses us the swap, and
		// the credits are undone so delivery never double-counts sold.
		if err := s.orders.UpdateStatus(ctx, id, order.Status, next, true); err != nil {
			s.undoSoldCredits(credited)
			if errors.Is(err, domain.ErrConflictRetryable) {
				return s.resolveStatusConflict(ctx, id, next)
			}
			return nil, err
		}
		paid = true
	} else {
		if err := s.orders.UpdateStatus(ctx, id, order.Status, next, paid); err != nil {
			if errors.Is(err, domain.ErrConflictRetryable) {
				return s.resolveStatusConflict(ctx, id, next)
			}
			return nil, err
		}
		// Stock moves only after the cancellation has committed, so a failed
		// or lost status write cannot inflate inventory.
		if next == domain.StatusCancelled && s.releaseOnCancel {
			s.releaseLines(ctx, order.Lines)
		}
	}

	from := order.Status
	order.Status = next
	order.Paid = paid
	go s.publish(context.Background(), "order.status_changed", domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		OrderCode: order.OrderCode,
		From:      from,
		To:        next,
		ChangedAt: time.Now(),
	})
	return order, nil
}

// DeleteOrder releases the stock of every line back to the catalog and
// removes the order. Sold counters are left alone even for delivered orders.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint64) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order %d", domain.ErrOrderNotFound, id)
	}

	// Claim the record first: the delete's not-found result singles out the
	// winner among concurrent deleters, so stock is released exactly once.
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	for _, line := range order.Lines {
		err := s.ledger.Release(ctx, line.ProductID, line.Size, line.Quantity)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrProductNotFound) {
			// Product left the catalog; there is no stock row to restore.
			s.logger.Warn("skipping stock release for missing product",
				zap.Uint64("orderId", id), zap.Uint64("productId", line.ProductID))
			continue
		}
		return err
	}
	s.invalidateProductCacheForLines(ctx, order.Lines)
	go s.publish(context.Background(), "order.deleted", domain.OrderDeletedEvent{
		OrderID:   order.ID,
		OrderCode: order.OrderCode,
		DeletedAt: time.Now(),
	})
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", domain.ErrOrderNotFound, id)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter, sort repository.OrderSort, page repository.OrderPage) (*OrderPageResult, error) {
	orders, matching, all, err := s.orders.List(ctx, filter, sort, page)
	if err != nil {
		return nil, err
	}
	return &OrderPageResult{Orders: orders, TotalMatching: matching, TotalAll: all}, nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// GetProduct serves catalog reads through the redis cache. Concurrent misses
// for the same product collapse into one store lookup.
func (s *OrderService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	cacheKey := productCacheKey(id)
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var p domain.Product
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		product, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, id)
		}
		if s.redisClient != nil {
			if data, err := json.Marshal(product); err == nil {
				s.redisClient.Set(ctx, cacheKey, data, time.Minute)
			}
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *OrderService) WarmupProductCache(ctx context.Context, productIDs []uint64) error {
	if s.redisClient == nil {
		return nil
	}
	for _, id := range productIDs {
		product, err := s.products.FindByID(ctx, id)
		if err != nil || product == nil {
			s.logger.Warn("cache warmup skipped product", zap.Uint64("productId", id), zap.Error(err))
			continue
		}
		if data, err := json.Marshal(product); err == nil {
			s.redisClient.Set(ctx, productCacheKey(id), data, 5*time.Minute)
		}
	}
	return nil
}

func (s *OrderService) creditSold(ctx context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	credited := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		if err := s.ledger.MarkSold(ctx, line.ProductID, line.Quantity); err != nil {
			s.undoSoldCredits(credited)
			return nil, err
		}
		credited = append(credited, line)
	}
	return credited, nil
}

func (s *OrderService) undoSoldCredits(credited []domain.OrderLine) {
	for _, line := range credited {
		if err := s.products.IncrementSold(context.Background(), line.ProductID, -line.Quantity); err != nil {
			s.logger.Error("failed to undo sold credit",
				zap.Uint64("productId", line.ProductID), zap.Error(err))
		}
	}
}

// resolveStatusConflict re-reads an order after losing a status
// compare-and-swap. A duplicate request for the terminal state the winner
// already reached is absorbed as a no-op; anything else is an illegal
// transition from where the order actually is.
func (s *OrderService) resolveStatusConflict(ctx context.Context, id uint64, next domain.OrderStatus) (*domain.Order, error) {
	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: order %d", domain.ErrOrderNotFound, id)
	}
	if current.Status == next && next.Terminal() {
		return current, nil
	}
	return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next)
}

func (s *OrderService) releaseLines(ctx context.Context, lines []domain.OrderLine) {
	for _, line := range lines {
		if err := s.ledger.Release(ctx, line.ProductID, line.Size, line.Quantity); err != nil {
			s.logger.Error("failed to release stock on cancellation",
				zap.Uint64("productId", line.ProductID),
				zap.String("size", line.Size),
				zap.Error(err))
		}
	}
	s.invalidateProductCacheForLines(ctx, lines)
}

func (s *OrderService) invalidateProductCache(ctx context.Context, reservations []inventory.Reservation) {
	if s.redisClient == nil {
		return
	}
	for _, rsv := range reservations {
		s.redisClient.Del(ctx, productCacheKey(rsv.ProductID))
	}
}

func (s *OrderService) invalidateProductCacheForLines(ctx context.Context, lines []domain.OrderLine) {
	if s.redisClient == nil {
		return
	}
	for _, line := range lines {
		s.redisClient.Del(ctx, productCacheKey(line.ProductID))
	}
}

func (s *OrderService) publish(ctx context.Context, routingKey string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.logger.Error("failed to publish event", zap.String("routingKey", routingKey), zap.Error(err))
	}
}

func productCacheKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

func newOrderCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:12])
}
