package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
)

// MemoryStore is the ephemeral cart store. Carts live for the process lifetime
// only; it backs local development and tests that run without Postgres.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*memoryCart
}

type memoryCart struct {
	cart  models.Cart
	items map[uuid.UUID]models.CartItem // keyed by variant id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[uuid.UUID]*memoryCart{}}
}

func (s *MemoryStore) CreateCart(_ context.Context) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cart := models.Cart{
		ID:        uuid.New(),
		Status:    enums.CartStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.carts[cart.ID] = &memoryCart{
		cart:  cart,
		items: map[uuid.UUID]models.CartItem{},
	}
	return &cart, nil
}

func (s *MemoryStore) FindCart(_ context.Context, id uuid.UUID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	cart := entry.cart
	return &cart, nil
}

func (s *MemoryStore) GetItems(_ context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[cartID]
	if !ok {
		return nil, nil
	}
	items := make([]models.CartItem, 0, len(entry.items))
	for _, item := range entry.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *MemoryStore) AddItem(_ context.Context, cartID, productID, variantID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	now := time.Now()
	if existing, found := entry.items[variantID]; found {
		existing.Quantity += quantity
		existing.UpdatedAt = now
		entry.items[variantID] = existing
		return nil
	}
	entry.items[variantID] = models.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (s *MemoryStore) SetItemQuantity(_ context.Context, cartID, variantID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[cartID]
	if !ok {
		return nil
	}
	if quantity <= 0 {
		delete(entry.items, variantID)
		return nil
	}
	item, found := entry.items[variantID]
	if !found {
		return nil
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	entry.items[variantID] = item
	return nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, cartID, variantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.carts[cartID]; ok {
		delete(entry.items, variantID)
	}
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, cartID uuid.UUID, status enums.CartStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	entry.cart.Status = status
	entry.cart.UpdatedAt = time.Now()
	return nil
}
