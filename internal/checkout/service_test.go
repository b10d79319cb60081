package checkout

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/internal/cart"
	"github.com/kinaskak/storefront-backend/internal/catalog"
	"github.com/kinaskak/storefront-backend/internal/notifications"
	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
	"github.com/kinaskak/storefront-backend/pkg/outbox"
	"github.com/kinaskak/storefront-backend/pkg/rapyd"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, variant_id)
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  handle TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  base_price NUMERIC NOT NULL DEFAULT 0,
  is_available INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_adjustment NUMERIC,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS checkouts (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  merchant_reference_id TEXT NOT NULL UNIQUE,
  provider_checkout_id TEXT NOT NULL DEFAULT '',
  amount NUMERIC NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'ISK',
  email TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  kennitala TEXT NOT NULL,
  address TEXT NOT NULL,
  apartment TEXT,
  city TEXT NOT NULL,
  save_info INTEGER NOT NULL DEFAULT 0,
  marketing_opt_in INTEGER NOT NULL DEFAULT 0,
  payment_method_types TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NOT NULL DEFAULT ''
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeProvider struct {
	calls      int
	lastParams rapyd.CreateCheckoutParams
	err        error
}

func (f *fakeProvider) CreateCheckout(_ context.Context, params rapyd.CreateCheckoutParams) (*rapyd.Checkout, error) {
	f.calls++
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &rapyd.Checkout{
		ID:          "checkout_" + uuid.NewString(),
		RedirectURL: "https://sandboxcheckout.rapyd.net/?token=chk_abc",
		Status:      "NEW",
	}, nil
}

type fakeNotifier struct {
	orders []notifications.Order
	err    error
}

func (f *fakeNotifier) OrderCreated(_ context.Context, order notifications.Order) error {
	f.orders = append(f.orders, order)
	return f.err
}

type checkoutFixture struct {
	db       *gorm.DB
	svc      Service
	provider *fakeProvider
	notifier *fakeNotifier
	cartSvc  cart.Service
	product  *models.Product
	variant  *models.ProductVariant
}

func validShipping() ShippingDetails {
	return ShippingDetails{
		Email:     "anna@example.is",
		FirstName: "Anna",
		LastName:  "Jónsdóttir",
		Kennitala: "0101902989",
		Address:   "Laugavegur 1",
		City:      "Reykjavík",
	}
}

func setupCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard})

	catalogSvc, err := catalog.NewService(catalog.NewRepository(db), logg)
	require.NoError(t, err)

	cartStore := cart.NewRepository(db)
	cartSvc, err := cart.NewService(cartStore, catalogSvc, "ISK", logg)
	require.NoError(t, err)

	provider := &fakeProvider{}
	notifier := &fakeNotifier{}
	outboxSvc := outbox.NewService(outbox.NewRepository(db), logg)

	cfg := config.CheckoutConfig{
		BaseURL:  "shop.example.is",
		Currency: "ISK",
		Country:  "IS",
	}

	svc, err := NewService(
		testTxRunner{db: db},
		NewRepository(db),
		cartStore,
		catalogSvc,
		provider,
		notifier,
		outboxSvc,
		cfg,
		logg,
	)
	require.NoError(t, err)

	product := &models.Product{
		ID:          uuid.New(),
		Handle:      "wool-sweater",
		Name:        "Lopapeysa",
		BasePrice:   decimal.RequireFromString("2000.00"),
		IsAvailable: true,
	}
	require.NoError(t, db.Create(product).Error)

	variant := &models.ProductVariant{
		ID:          uuid.New(),
		ProductID:   product.ID,
		Name:        "Medium",
		IsAvailable: true,
	}
	require.NoError(t, db.Create(variant).Error)

	return &checkoutFixture{
		db:       db,
		svc:      svc,
		provider: provider,
		notifier: notifier,
		cartSvc:  cartSvc,
		product:  product,
		variant:  variant,
	}
}

func (f *checkoutFixture) seedCart(t *testing.T, quantity int) uuid.UUID {
	t.Helper()
	dto, err := f.cartSvc.AddItem(context.Background(), nil, f.product.ID, f.variant.ID, quantity)
	require.NoError(t, err)
	require.NotNil(t, dto.ID)
	return *dto.ID
}

func TestStartRejectsInvalidKennitala(t *testing.T) {
	f := setupCheckoutFixture(t)
	cartID := f.seedCart(t, 1)

	shipping := validShipping()
	shipping.Kennitala = "12345"

	_, err := f.svc.Start(context.Background(), &cartID, shipping)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	fields, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Kennitala verður að vera 10 tölustafir", fields["kennitala"])

	assert.Zero(t, f.provider.calls, "provider must not be contacted on validation failure")
}

func TestStartRejectsEmptyCart(t *testing.T) {
	f := setupCheckoutFixture(t)

	_, err := f.svc.Start(context.Background(), nil, validShipping())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	stale := uuid.New()
	_, err = f.svc.Start(context.Background(), &stale, validShipping())
	require.Error(t, err)
	assert.Zero(t, f.provider.calls)
}

func TestStartRegistersCheckout(t *testing.T) {
	f := setupCheckoutFixture(t)
	ctx := context.Background()
	cartID := f.seedCart(t, 1)

	result, err := f.svc.Start(ctx, &cartID, validShipping())
	require.NoError(t, err)

	assert.Equal(t, 1, f.provider.calls)
	assert.Equal(t, "ISK", f.provider.lastParams.Currency)
	assert.Equal(t, "IS", f.provider.lastParams.Country)
	assert.Equal(t, "https://shop.example.is/checkout/complete", f.provider.lastParams.CompleteCheckoutURL)
	assert.Equal(t, "https://shop.example.is/checkout/cancel", f.provider.lastParams.CancelCheckoutURL)
	assert.Equal(t, "2000.00", f.provider.lastParams.Amount.StringFixed(2))

	assert.True(t, strings.Contains(result.RedirectURL, "checkoutId="+result.CheckoutID.String()))
	assert.True(t, strings.HasPrefix(result.RedirectURL, "https://sandboxcheckout.rapyd.net/"))

	var record models.CheckoutRecord
	require.NoError(t, f.db.First(&record, "id = ?", result.CheckoutID).Error)
	assert.Equal(t, enums.CheckoutStatusPending, record.Status)
	assert.Equal(t, cartID, record.CartID)
	assert.Equal(t, "2000.00", record.Amount.StringFixed(2))
	assert.NotEmpty(t, record.MerchantReferenceID)

	var converted models.Cart
	require.NoError(t, f.db.First(&converted, "id = ?", cartID).Error)
	assert.Equal(t, enums.CartStatusConverted, converted.Status)

	var events []models.OutboxEvent
	require.NoError(t, f.db.Where("event_type = ?", enums.OutboxEventCheckoutCreated).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, result.CheckoutID, events[0].AggregateID)

	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, "anna@example.is", f.notifier.orders[0].Email)
}

func TestStartFreshMerchantReferencePerAttempt(t *testing.T) {
	f := setupCheckoutFixture(t)
	ctx := context.Background()

	firstCart := f.seedCart(t, 1)
	first, err := f.svc.Start(ctx, &firstCart, validShipping())
	require.NoError(t, err)

	secondCart := f.seedCart(t, 2)
	second, err := f.svc.Start(ctx, &secondCart, validShipping())
	require.NoError(t, err)

	var records []models.CheckoutRecord
	require.NoError(t, f.db.Find(&records).Error)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].MerchantReferenceID, records[1].MerchantReferenceID)
	assert.NotEqual(t, first.CheckoutID, second.CheckoutID)
}

func TestStartSurvivesNotifierFailure(t *testing.T) {
	f := setupCheckoutFixture(t)
	f.notifier.err = errors.New("smtp down")
	cartID := f.seedCart(t, 1)

	result, err := f.svc.Start(context.Background(), &cartID, validShipping())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.CheckoutID)
}

func TestStartPropagatesProviderError(t *testing.T) {
	f := setupCheckoutFixture(t)
	f.provider.err = pkgerrors.New(pkgerrors.CodeDependency, "provider unavailable")
	cartID := f.seedCart(t, 1)

	_, err := f.svc.Start(context.Background(), &cartID, validShipping())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	var count int64
	require.NoError(t, f.db.Model(&models.CheckoutRecord{}).Count(&count).Error)
	assert.Zero(t, count, "no record persisted when the provider call fails")
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := setupCheckoutFixture(t)
	ctx := context.Background()
	cartID := f.seedCart(t, 1)

	result, err := f.svc.Start(ctx, &cartID, validShipping())
	require.NoError(t, err)

	dto, err := f.svc.UpdateStatus(ctx, result.CheckoutID, enums.CheckoutStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusCompleted, dto.Status)

	// repeating the same transition is idempotent
	dto, err = f.svc.UpdateStatus(ctx, result.CheckoutID, enums.CheckoutStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusCompleted, dto.Status)

	// crossing terminal states is a conflict
	_, err = f.svc.UpdateStatus(ctx, result.CheckoutID, enums.CheckoutStatusCancelled)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	var events []models.OutboxEvent
	require.NoError(t, f.db.Where("event_type = ?", enums.OutboxEventCheckoutStatusChanged).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestUpdateStatusRejectsNonTerminalTarget(t *testing.T) {
	f := setupCheckoutFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), enums.CheckoutStatusPending)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateStatusUnknownCheckout(t *testing.T) {
	f := setupCheckoutFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), enums.CheckoutStatusCompleted)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetStatus(t *testing.T) {
	f := setupCheckoutFixture(t)
	ctx := context.Background()
	cartID := f.seedCart(t, 1)

	result, err := f.svc.Start(ctx, &cartID, validShipping())
	require.NoError(t, err)

	dto, err := f.svc.GetStatus(ctx, result.CheckoutID)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusPending, dto.Status)
	assert.Equal(t, "2000.00", dto.Amount)
}
