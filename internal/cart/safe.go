package cart

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/storefront-cart/internal/catalog"
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/pricing"
	"github.com/noah-isme/storefront-cart/internal/shipping"
)

// Safe serialises access to a Cart so it can be shared between goroutines,
// e.g. one cart per session behind concurrent requests.
type Safe struct {
	mu   sync.RWMutex
	cart *Cart
}

// NewSafe wraps c. The caller must stop using c directly afterwards.
// Mutations hold the lock while cart events are delivered, so a notifier on
// the cart's bus must not call back into the same Safe or it deadlocks.
func NewSafe(c *Cart) *Safe {
	return &Safe{cart: c}
}

// ID returns the wrapped cart identifier.
func (s *Safe) ID() uuid.UUID {
	return s.cart.ID()
}

// AddItem is Cart.AddItem under the write lock.
func (s *Safe) AddItem(p catalog.Product, qty int) (LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.AddItem(p, qty)
}

// UpdateQuantity is Cart.UpdateQuantity under the write lock.
func (s *Safe) UpdateQuantity(productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantity(productID, qty)
}

// RemoveItem is Cart.RemoveItem under the write lock.
func (s *Safe) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.RemoveItem(productID)
}

// Clear is Cart.Clear under the write lock.
func (s *Safe) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
}

// ApplyDiscount is Cart.ApplyDiscount under the write lock.
func (s *Safe) ApplyDiscount(d discount.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ApplyDiscount(d)
}

// RemoveDiscount is Cart.RemoveDiscount under the write lock.
func (s *Safe) RemoveDiscount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveDiscount()
}

// Discount returns the active discount.
func (s *Safe) Discount() (discount.Discount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Discount()
}

// Items returns a copy of the current lines.
func (s *Safe) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Items()
}

// ItemCount sums the quantities of all lines.
func (s *Safe) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemCount()
}

// IsEmpty reports whether the cart has no lines.
func (s *Safe) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.IsEmpty()
}

// Subtotal returns the unrounded pre-discount subtotal.
func (s *Safe) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Subtotal()
}

// Totals derives the cart totals under the read lock.
func (s *Safe) Totals() pricing.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Totals()
}

// ShippingQuote is Cart.ShippingQuote under the read lock.
func (s *Safe) ShippingQuote(lookup *shipping.Lookup, country string) shipping.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ShippingQuote(lookup, country)
}

// WriteSummary renders the receipt under the read lock.
func (s *Safe) WriteSummary(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.WriteSummary(w)
}
