package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/internal/cart"
	"github.com/kinaskak/storefront-backend/internal/catalog"
	"github.com/kinaskak/storefront-backend/internal/notifications"
	"github.com/kinaskak/storefront-backend/internal/pricing"
	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
	"github.com/kinaskak/storefront-backend/pkg/outbox"
	"github.com/kinaskak/storefront-backend/pkg/rapyd"
)

// defaultPaymentMethods is the hosted page's payment method allowlist for the
// Icelandic storefront.
var defaultPaymentMethods = []string{"is_visa_card", "is_mastercard_card"}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type providerClient interface {
	CreateCheckout(ctx context.Context, params rapyd.CreateCheckoutParams) (*rapyd.Checkout, error)
}

// Service drives the checkout handoff and the record's status lifecycle.
type Service interface {
	Start(ctx context.Context, cartID *uuid.UUID, details ShippingDetails) (*StartResult, error)
	UpdateStatus(ctx context.Context, checkoutID uuid.UUID, status enums.CheckoutStatus) (*StatusDTO, error)
	GetStatus(ctx context.Context, checkoutID uuid.UUID) (*StatusDTO, error)
}

type service struct {
	runner    txRunner
	repo      *Repository
	cartStore cart.Store
	catalog   catalog.Service
	provider  providerClient
	notifier  notifications.Notifier
	outbox    *outbox.Service
	cfg       config.CheckoutConfig
	logg      *logger.Logger
}

// NewService constructs the checkout service.
func NewService(
	runner txRunner,
	repo *Repository,
	cartStore cart.Store,
	catalogSvc catalog.Service,
	provider providerClient,
	notifier notifications.Notifier,
	outboxSvc *outbox.Service,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.RedirectBaseURL() == "" {
		return nil, fmt.Errorf("checkout base URL is required")
	}
	return &service{
		runner:    runner,
		repo:      repo,
		cartStore: cartStore,
		catalog:   catalogSvc,
		provider:  provider,
		notifier:  notifier,
		outbox:    outboxSvc,
		cfg:       cfg,
		logg:      logg,
	}, nil
}

// Start validates the shipping form, prices the cart, registers a hosted
// checkout session with the provider, and persists the attempt. The cart is
// marked converted in the same transaction as the record insert.
func (s *service) Start(ctx context.Context, cartID *uuid.UUID, details ShippingDetails) (*StartResult, error) {
	if err := ValidateShipping(details); err != nil {
		return nil, err
	}

	resolved, err := s.loadCartLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]pricing.Line, 0, len(resolved))
	for _, line := range resolved {
		lines = append(lines, line.PricingLine())
	}
	totals := pricing.Compute(lines)

	merchantReference := uuid.NewString()
	base := s.cfg.RedirectBaseURL()

	ctx = s.logg.WithFields(ctx, map[string]any{
		"cart_id":               cartID.String(),
		"merchant_reference_id": merchantReference,
		"amount":                pricing.FormatAmount(totals.Total),
	})

	session, err := s.provider.CreateCheckout(ctx, rapyd.CreateCheckoutParams{
		Amount:              totals.Total,
		MerchantReferenceID: merchantReference,
		CompleteCheckoutURL: base + "/checkout/complete",
		CancelCheckoutURL:   base + "/checkout/cancel",
		Country:             s.cfg.Country,
		Currency:            s.cfg.Currency,
		PaymentMethodTypes:  defaultPaymentMethods,
		CustomElements:      rapyd.CustomElements{BillingAddressCollect: true},
		Metadata: map[string]any{
			"merchant_reference_id": merchantReference,
			"cart_id":               cartID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	record := &models.CheckoutRecord{
		ID:                  uuid.New(),
		CartID:              *cartID,
		MerchantReferenceID: merchantReference,
		ProviderCheckoutID:  session.ID,
		Amount:              totals.Total,
		Currency:            enums.Currency(s.cfg.Currency),
		Email:               details.Email,
		FirstName:           details.FirstName,
		LastName:            details.LastName,
		Kennitala:           details.Kennitala,
		Address:             details.Address,
		Apartment:           details.Apartment,
		City:                details.City,
		SaveInfo:            details.SaveInfo,
		MarketingOptIn:      details.MarketingOptIn,
		PaymentMethodTypes:  pq.StringArray(defaultPaymentMethods),
		Status:              enums.CheckoutStatusPending,
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert checkout record")
		}
		if err := s.emitCreated(ctx, tx, record); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartStore.UpdateStatus(ctx, *cartID, enums.CartStatusConverted); err != nil {
		// The record exists and the provider session is live; a stuck active
		// cart only risks a duplicate attempt, so log and continue.
		s.logg.Error(ctx, "failed to mark cart converted", err)
	}

	s.notify(ctx, record, resolved)

	ctx = s.logg.WithCheckoutID(ctx, record.ID.String())
	s.logg.Info(ctx, "checkout registered")

	return &StartResult{
		CheckoutID:  record.ID,
		RedirectURL: appendCheckoutID(session.RedirectURL, record.ID),
	}, nil
}

// UpdateStatus transitions the record out of pending. Repeating a transition
// is idempotent; crossing terminal states is a conflict.
func (s *service) UpdateStatus(ctx context.Context, checkoutID uuid.UUID, status enums.CheckoutStatus) (*StatusDTO, error) {
	if !status.IsValid() || !status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout status").WithDetails(map[string]string{
			"status": fmt.Sprintf("must be one of completed, cancelled, failed; got %q", status),
		})
	}

	record, err := s.repo.FindByID(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load checkout record")
	}

	if record.Status == status {
		return toStatusDTO(*record), nil
	}
	if record.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already finalized")
	}

	previous := record.Status
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, checkoutID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update checkout status")
		}
		if s.outbox == nil {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.OutboxEventCheckoutStatusChanged,
			AggregateID: checkoutID,
			Data: checkoutStatusChangedPayload{
				CheckoutID: checkoutID,
				From:       previous,
				To:         status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	record.Status = status
	ctx = s.logg.WithCheckoutID(ctx, checkoutID.String())
	s.logg.Info(ctx, "checkout status updated")
	return toStatusDTO(*record), nil
}

func (s *service) GetStatus(ctx context.Context, checkoutID uuid.UUID) (*StatusDTO, error) {
	record, err := s.repo.FindByID(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load checkout record")
	}
	return toStatusDTO(*record), nil
}

func (s *service) loadCartLines(ctx context.Context, cartID *uuid.UUID) ([]catalog.ResolvedLine, error) {
	if cartID == nil {
		return nil, nil
	}
	found, err := s.cartStore.FindCart(ctx, *cartID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	if !found.Status.IsOpen() {
		return nil, nil
	}
	items, err := s.cartStore.GetItems(ctx, *cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart items")
	}
	refs := make([]catalog.LineRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, catalog.LineRef{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return s.catalog.ResolveLines(ctx, refs)
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, record *models.CheckoutRecord) error {
	if s.outbox == nil {
		return nil
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:   enums.OutboxEventCheckoutCreated,
		AggregateID: record.ID,
		Data: checkoutCreatedPayload{
			CheckoutID:          record.ID,
			CartID:              record.CartID,
			MerchantReferenceID: record.MerchantReferenceID,
			Amount:              pricing.FormatAmount(record.Amount),
			Currency:            record.Currency.String(),
		},
	})
}

// notify is best-effort: mail failures are logged and never fail the checkout.
func (s *service) notify(ctx context.Context, record *models.CheckoutRecord, resolved []catalog.ResolvedLine) {
	if s.notifier == nil {
		return
	}
	orderLines := make([]notifications.OrderLine, 0, len(resolved))
	for _, line := range resolved {
		orderLines = append(orderLines, notifications.OrderLine{
			ProductName: line.ProductName,
			VariantName: line.VariantName,
			Quantity:    line.Quantity,
			LineTotal:   pricing.FormatAmount(line.PricingLine().LineTotal()),
		})
	}
	order := notifications.Order{
		CheckoutID: record.ID,
		Email:      record.Email,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		Amount:     pricing.FormatAmount(record.Amount),
		Currency:   record.Currency.String(),
		Lines:      orderLines,
	}
	if err := s.notifier.OrderCreated(ctx, order); err != nil {
		s.logg.Error(ctx, "order notification failed", err)
	}
}

func appendCheckoutID(redirectURL string, checkoutID uuid.UUID) string {
	separator := "?"
	if strings.Contains(redirectURL, "?") {
		separator = "&"
	}
	return redirectURL + separator + "checkoutId=" + checkoutID.String()
}
