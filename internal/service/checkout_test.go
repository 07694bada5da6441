package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/apperrors"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/repository"
)

type checkoutFixture struct {
	svc     *CheckoutService
	catalog *fakeCatalog
	ledger  *fakeLedger
	orders  *fakeOrderStore
	guard   *fakeGuard
	events  *fakeEvents
	cfg     *config.Config
}

func newCheckoutFixture() *checkoutFixture {
	catalog := testCatalog()
	ledger := newFakeLedger()
	orders := newFakeOrderStore(map[string]int{
		"prod_chips":   10,
		"prod_cookie":  10,
		"prod_premium": 10,
	})
	guard := newFakeGuard()
	events := &fakeEvents{}

	cfg := &config.Config{
		Pricing:   testPricingConfig(),
		RateLimit: testRateLimitConfig(),
		Features: config.FeatureFlags{
			EnableOrderEvents:      true,
			EnableIdempotencyGuard: true,
		},
	}

	limiter := NewRateLimiter(
		repository.NewLocalRateLimitStore(),
		repository.NewLocalRateLimitStore(),
		cfg.RateLimit,
	)
	pricing := NewPriceValidator(catalog, ledger, cfg.Pricing)

	svc := NewCheckoutService(orders, ledger, pricing, limiter, guard, nil, nil, events, nil, cfg)

	return &checkoutFixture{
		svc:     svc,
		catalog: catalog,
		ledger:  ledger,
		orders:  orders,
		guard:   guard,
		events:  events,
		cfg:     cfg,
	}
}

func checkoutRequest(clientTotal float64, lines ...models.CartLine) *models.CheckoutRequest {
	return &models.CheckoutRequest{
		Contact: models.DeliveryContact{
			Name:    "Asha Rao",
			Phone:   "9876543210",
			Address: "14 MG Road, Indiranagar",
			Pincode: "560001",
		},
		PaymentMethod: models.PaymentMethodQR,
		ClientTotal:   clientTotal,
		Items:         lines,
	}
}

func TestPlaceOrder_Completed(t *testing.T) {
	f := newCheckoutFixture()

	// 2x40 + 1x20 = 100; +10 delivery +6 convenience = 116.
	req := checkoutRequest(116,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 2},
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_cookie", Quantity: 1},
	)

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutCompleted {
		t.Fatalf("Expected completed, got %s: %s", result.State, result.Message)
	}
	if !result.Success {
		t.Error("Expected Success on a completed checkout")
	}
	if !strings.HasPrefix(result.OrderID, "ord_") {
		t.Errorf("Expected ord_ prefixed order id, got %q", result.OrderID)
	}
	if result.Total != 116 {
		t.Errorf("Expected total 116, got %.2f", result.Total)
	}

	order := f.orders.get(result.OrderID)
	if order == nil {
		t.Fatal("Expected the order to be persisted")
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("Expected payment status pending, got %s", order.PaymentStatus)
	}
	if order.Total.Amount != 11600 {
		t.Errorf("Expected total 11600 paise, got %d", order.Total.Amount)
	}
	if len(order.Items) != 2 {
		t.Errorf("Expected 2 snapshot items, got %d", len(order.Items))
	}
	if got := f.orders.stockOf("prod_chips"); got != 8 {
		t.Errorf("Expected stock 8 after reservation, got %d", got)
	}
	if f.events.createdCount() != 1 {
		t.Errorf("Expected one order created event, got %d", f.events.createdCount())
	}
}

func TestPlaceOrder_ValidationFailedHasNoSideEffects(t *testing.T) {
	f := newCheckoutFixture()

	req := checkoutRequest(116,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 2},
	)
	req.Contact.Phone = "12345"

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutValidationFailed {
		t.Fatalf("Expected validation_failed, got %s", result.State)
	}
	if len(result.FieldErrors) == 0 {
		t.Error("Expected itemized field errors")
	}
	if f.orders.count() != 0 {
		t.Error("Expected no order to be persisted")
	}
	if got := f.orders.stockOf("prod_chips"); got != 10 {
		t.Errorf("Expected stock untouched, got %d", got)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newCheckoutFixture()

	req := checkoutRequest(50,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_ghost", Quantity: 1},
	)

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutValidationFailed {
		t.Fatalf("Expected validation_failed, got %s", result.State)
	}
	found := false
	for _, fe := range result.FieldErrors {
		if strings.Contains(fe.Message, "not_found") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a not_found line failure, got %v", result.FieldErrors)
	}
}

func TestPlaceOrder_PriceMismatch(t *testing.T) {
	f := newCheckoutFixture()

	// Authoritative total is 56; the client claims 20.
	req := checkoutRequest(20,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutPriceMismatch {
		t.Fatalf("Expected price_mismatch, got %s", result.State)
	}
	if result.Pricing == nil || result.Pricing.Total != 56 {
		t.Error("Expected the authoritative breakdown on the rejection")
	}
	if f.orders.count() != 0 {
		t.Error("Expected no order to be persisted")
	}
	if got := f.orders.stockOf("prod_chips"); got != 10 {
		t.Errorf("Expected stock untouched, got %d", got)
	}
	if f.events.mismatchCount() != 1 {
		t.Errorf("Expected one security event, got %d", f.events.mismatchCount())
	}
}

func TestPlaceOrder_TamperTolerance(t *testing.T) {
	tests := []struct {
		name        string
		clientTotal float64
		state       models.CheckoutState
	}{
		{"off by exactly the tolerance", 55, models.CheckoutCompleted},
		{"off by more than the tolerance", 54.5, models.CheckoutPriceMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			req := checkoutRequest(tt.clientTotal,
				models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
			)

			result := f.svc.PlaceOrder(context.Background(), "user_1", req)
			if result.State != tt.state {
				t.Errorf("Expected %s, got %s", tt.state, result.State)
			}
		})
	}
}

func TestPlaceOrder_StockInsufficient(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.setStock("prod_chips", 1)

	req := checkoutRequest(96,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 2},
	)

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutStockInsufficient {
		t.Fatalf("Expected stock_insufficient, got %s: %s", result.State, result.Message)
	}
	if len(result.StockFailures) != 1 {
		t.Fatalf("Expected one stock failure, got %d", len(result.StockFailures))
	}
	failure := result.StockFailures[0]
	if failure.Requested != 2 || failure.Available != 1 {
		t.Errorf("Expected requested 2 / available 1, got %d / %d", failure.Requested, failure.Available)
	}
	if f.orders.count() != 0 {
		t.Error("Expected no order to be persisted")
	}
	if got := f.orders.stockOf("prod_chips"); got != 1 {
		t.Errorf("Expected the failed reservation to roll back, got stock %d", got)
	}
}

func TestPlaceOrder_RateLimited(t *testing.T) {
	f := newCheckoutFixture()
	f.cfg.RateLimit.OrderCreate.MaxRequests = 2
	// Rebuild the limiter with the tightened policy.
	f.svc.limiter = NewRateLimiter(
		repository.NewLocalRateLimitStore(),
		repository.NewLocalRateLimitStore(),
		f.cfg.RateLimit,
	)

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)

	for i := 0; i < 2; i++ {
		if result := f.svc.PlaceOrder(context.Background(), "user_1", req); result.State != models.CheckoutCompleted {
			t.Fatalf("Expected attempt %d to complete, got %s", i+1, result.State)
		}
	}

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutRateLimited {
		t.Fatalf("Expected rate_limited, got %s", result.State)
	}
	if result.RetryAfter == nil || !result.RetryAfter.After(time.Now()) {
		t.Error("Expected a future retry-after timestamp")
	}
	if f.orders.count() != 2 {
		t.Errorf("Expected the rejected attempt to create nothing, got %d orders", f.orders.count())
	}
}

func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	f := newCheckoutFixture()

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)
	req.RequestID = "req_abc123"

	first := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if first.State != models.CheckoutCompleted {
		t.Fatalf("Expected first submission to complete, got %s", first.State)
	}

	second := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if second.State != models.CheckoutCompleted {
		t.Fatalf("Expected replay to report completed, got %s", second.State)
	}
	if !second.Duplicate {
		t.Error("Expected the replay to be flagged duplicate")
	}
	if second.OrderID != first.OrderID {
		t.Errorf("Expected the original order id %s, got %s", first.OrderID, second.OrderID)
	}
	if f.orders.count() != 1 {
		t.Errorf("Expected exactly one order, got %d", f.orders.count())
	}
	if got := f.orders.stockOf("prod_chips"); got != 9 {
		t.Errorf("Expected stock decremented once, got %d", got)
	}
}

func TestPlaceOrder_InFlightDuplicate(t *testing.T) {
	f := newCheckoutFixture()
	f.guard.markPending("req_inflight")

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)
	req.RequestID = "req_inflight"

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutProcessingFailed {
		t.Fatalf("Expected processing_failed for an in-flight duplicate, got %s", result.State)
	}
	if f.orders.count() != 0 {
		t.Error("Expected no order to be created")
	}
}

func TestPlaceOrder_FailureReleasesRequestID(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.setStock("prod_chips", 0)

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)
	req.RequestID = "req_retry"

	if result := f.svc.PlaceOrder(context.Background(), "user_1", req); result.State != models.CheckoutStockInsufficient {
		t.Fatalf("Expected stock_insufficient, got %s", result.State)
	}

	// After the failure the request id must be retryable.
	f.orders.setStock("prod_chips", 5)

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutCompleted {
		t.Fatalf("Expected the retry to complete, got %s", result.State)
	}
	if result.Duplicate {
		t.Error("Expected a fresh order, not a duplicate replay")
	}
}

func TestPlaceOrder_GuardOutageDegrades(t *testing.T) {
	f := newCheckoutFixture()
	f.guard.err = errors.New("connection refused")

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)
	req.RequestID = "req_degraded"

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutCompleted {
		t.Fatalf("Expected checkout to proceed without the guard, got %s", result.State)
	}
}

func TestPlaceOrder_PersistenceFailureFailsClosed(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.createErr = errors.New("connection refused")

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)

	result := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if result.State != models.CheckoutProcessingFailed {
		t.Fatalf("Expected processing_failed, got %s", result.State)
	}
	if result.Success {
		t.Error("Expected an unsuccessful result")
	}
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.setStock("prod_chips", 1)

	results := make([]*models.CheckoutResult, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := checkoutRequest(56,
				models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
			)
			results[i] = f.svc.PlaceOrder(context.Background(), "user_1", req)
		}(i)
	}
	wg.Wait()

	completed, insufficient := 0, 0
	for _, r := range results {
		switch r.State {
		case models.CheckoutCompleted:
			completed++
		case models.CheckoutStockInsufficient:
			insufficient++
		}
	}
	if completed != 1 || insufficient != 1 {
		t.Errorf("Expected exactly one winner, got %d completed / %d insufficient", completed, insufficient)
	}
	if got := f.orders.stockOf("prod_chips"); got != 0 {
		t.Errorf("Expected stock 0 and never negative, got %d", got)
	}
	if f.orders.count() != 1 {
		t.Errorf("Expected exactly one order, got %d", f.orders.count())
	}
}

func TestPlaceOrder_ConcurrentCouponLastUse(t *testing.T) {
	f := newCheckoutFixture()
	f.ledger.add(&models.Coupon{
		ID: 7, Code: "LAST10", DiscountType: models.DiscountTypeFixed,
		DiscountValue: 10, RemainingUses: 1, Active: true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	})

	results := make([]*models.CheckoutResult, 2)
	users := []string{"user_1", "user_2"}
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// 40 + 10 + 6 - 10 = 46.
			req := checkoutRequest(46,
				models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
			)
			req.CouponCode = "LAST10"
			results[i] = f.svc.PlaceOrder(context.Background(), users[i], req)
		}(i)
	}
	wg.Wait()

	// Both orders stand; the conditional decrement lets exactly one usage
	// row through.
	for i, r := range results {
		if r.State != models.CheckoutCompleted {
			t.Errorf("Expected order %d to complete, got %s", i, r.State)
		}
	}
	if got := f.ledger.usageCount(); got != 1 {
		t.Errorf("Expected exactly one coupon usage, got %d", got)
	}
}

func TestGetOrder_OwnerOnly(t *testing.T) {
	f := newCheckoutFixture()

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)
	placed := f.svc.PlaceOrder(context.Background(), "user_1", req)
	if placed.State != models.CheckoutCompleted {
		t.Fatalf("Setup checkout failed: %s", placed.State)
	}

	if _, err := f.svc.GetOrder(context.Background(), "user_1", placed.OrderID); err != nil {
		t.Errorf("Expected the owner to read the order, got %v", err)
	}

	_, err := f.svc.GetOrder(context.Background(), "user_2", placed.OrderID)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected not-found for a non-owner, got %v", err)
	}
}

func TestListOrders_ClampsPagination(t *testing.T) {
	f := newCheckoutFixture()

	if _, _, err := f.svc.ListOrders(context.Background(), "user_1", 0, -5); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if f.orders.lastLimit != 20 || f.orders.lastOffset != 0 {
		t.Errorf("Expected defaults 20/0, got %d/%d", f.orders.lastLimit, f.orders.lastOffset)
	}

	if _, _, err := f.svc.ListOrders(context.Background(), "user_1", 500, 10); err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if f.orders.lastLimit != 100 {
		t.Errorf("Expected limit capped at 100, got %d", f.orders.lastLimit)
	}
}

func TestMarkOrderPaid(t *testing.T) {
	f := newCheckoutFixture()

	req := checkoutRequest(56,
		models.CartLine{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 1},
	)
	placed := f.svc.PlaceOrder(context.Background(), "user_1", req)

	if err := f.svc.MarkOrderPaid(context.Background(), placed.OrderID); err != nil {
		t.Fatalf("MarkOrderPaid failed: %v", err)
	}
	if order := f.orders.get(placed.OrderID); order.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("Expected status paid, got %s", order.PaymentStatus)
	}

	// The transition is pending -> paid only; a second confirmation is an
	// error, not a rewrite.
	if err := f.svc.MarkOrderPaid(context.Background(), placed.OrderID); err == nil {
		t.Error("Expected an error on double confirmation")
	}

	if err := f.svc.MarkOrderPaid(context.Background(), "ord_missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected not-found for an unknown order, got %v", err)
	}
}

func TestCheckCoupon(t *testing.T) {
	f := newCheckoutFixture()
	f.ledger.add(&models.Coupon{
		ID: 9, Code: "SAVE20", DiscountType: models.DiscountTypePercentage,
		DiscountValue: 20, RemainingUses: 3, Active: true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	})

	lines := []models.CartLine{
		{Kind: models.LineKindProduct, ProductID: "prod_chips", Quantity: 2},
		{Kind: models.LineKindProduct, ProductID: "prod_cookie", Quantity: 1},
	}

	result, err := f.svc.CheckCoupon(context.Background(), "user_1", lines, "SAVE20")
	if err != nil {
		t.Fatalf("CheckCoupon failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("Expected a valid coupon, got %q", result.Message)
	}
	// The discount is computed from the authoritative subtotal (100), not
	// anything client-supplied.
	if result.DiscountAmount != 20 {
		t.Errorf("Expected discount 20, got %.2f", result.DiscountAmount)
	}

	badCart := []models.CartLine{
		{Kind: models.LineKindProduct, ProductID: "prod_ghost", Quantity: 1},
	}
	result, err = f.svc.CheckCoupon(context.Background(), "user_1", badCart, "SAVE20")
	if err != nil {
		t.Fatalf("CheckCoupon failed: %v", err)
	}
	if result.Valid {
		t.Error("Expected rejection when the cart itself is invalid")
	}
}

// fakeOrderStore mimics the transactional create: either every reservation
// applies and the order is stored, or nothing changes.
type fakeOrderStore struct {
	mu         sync.Mutex
	stock      map[string]int
	orders     map[string]*models.Order
	createErr  error
	lastLimit  int
	lastOffset int
}

func newFakeOrderStore(stock map[string]int) *fakeOrderStore {
	return &fakeOrderStore{
		stock:  stock,
		orders: make(map[string]*models.Order),
	}
}

func (f *fakeOrderStore) CreateWithReservation(ctx context.Context, order *models.Order, reservations []repository.StockReservation) ([]models.StockFailure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}

	var failures []models.StockFailure
	for _, r := range reservations {
		available, ok := f.stock[r.ProductID]
		if !ok {
			failures = append(failures, models.StockFailure{
				ProductID: r.ProductID,
				Reason:    "not_found",
				Requested: r.Quantity,
			})
			continue
		}
		if available < r.Quantity {
			failures = append(failures, models.StockFailure{
				ProductID: r.ProductID,
				Reason:    "insufficient_stock",
				Requested: r.Quantity,
				Available: available,
			})
		}
	}
	if len(failures) > 0 {
		return failures, nil
	}

	for _, r := range reservations {
		f.stock[r.ProductID] -= r.Quantity
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil, nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastLimit = limit
	f.lastOffset = offset

	var orders []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			copied := *o
			orders = append(orders, &copied)
		}
	}
	return orders, len(orders), nil
}

func (f *fakeOrderStore) MarkPaid(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok || order.PaymentStatus != models.PaymentStatusPending {
		return apperrors.ErrNotFound
	}
	order.PaymentStatus = models.PaymentStatusPaid
	return nil
}

func (f *fakeOrderStore) get(id string) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id]
}

func (f *fakeOrderStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeOrderStore) stockOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[id]
}

func (f *fakeOrderStore) setStock(id string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[id] = n
}

const pendingClaim = "\x00pending"

// fakeGuard is an in-memory idempotency guard.
type fakeGuard struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{entries: make(map[string]string)}
}

func (f *fakeGuard) Reserve(ctx context.Context, requestID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", false, f.err
	}
	if existing, ok := f.entries[requestID]; ok {
		if existing == pendingClaim {
			return "", false, nil
		}
		return existing, false, nil
	}
	f.entries[requestID] = pendingClaim
	return "", true, nil
}

func (f *fakeGuard) Complete(ctx context.Context, requestID, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[requestID] = orderID
	return nil
}

func (f *fakeGuard) Release(ctx context.Context, requestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, requestID)
	return nil
}

func (f *fakeGuard) markPending(requestID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[requestID] = pendingClaim
}

// fakeEvents records published events.
type fakeEvents struct {
	mu         sync.Mutex
	created    []string
	mismatches int
}

func (f *fakeEvents) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, order.ID)
	return nil
}

func (f *fakeEvents) PublishPriceMismatch(ctx context.Context, userID string, clientTotal, serverTotal float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mismatches++
	return nil
}

func (f *fakeEvents) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeEvents) mismatchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mismatches
}
