package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/storefront-cart/internal/catalog"
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/events"
	"github.com/noah-isme/storefront-cart/internal/pricing"
	"github.com/noah-isme/storefront-cart/internal/shipping"
)

var (
	// ErrInvalidQuantity is returned when a quantity below one is added.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInsufficientStock indicates the requested quantity exceeds the product stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUnavailable is returned for products that are neither available nor on preorder.
	ErrUnavailable = errors.New("product not available")
	// ErrItemNotFound indicates no line item exists for the product id.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrInvalidProduct is returned when the product fails its structural checks, e.g. a negative price.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrCurrencyMismatch is returned when currency checks are enabled and the product is priced differently.
	ErrCurrencyMismatch = errors.New("product currency does not match cart currency")
)

// LineItem is a product snapshot with its quantity. Items are replaced, never mutated.
type LineItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"addedAt"`
}

// Total returns unit price times quantity, unrounded.
func (li LineItem) Total() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Option customises a Cart at construction time.
type Option func(*Cart)

// WithID fixes the cart identifier instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(c *Cart) { c.id = id }
}

// WithClock overrides the time source used for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cart) { c.now = now }
}

// WithLogger attaches a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cart) { c.log = l }
}

// WithEvents publishes cart events to the bus.
func WithEvents(bus *events.Bus) Option {
	return func(c *Cart) { c.bus = bus }
}

// WithCurrencyCheck rejects products priced in a currency other than the cart's.
func WithCurrencyCheck() Option {
	return func(c *Cart) { c.strictCurrency = true }
}

// Cart owns line items and at most one discount. It is not safe for
// concurrent mutation; wrap it in Safe when shared.
type Cart struct {
	id             uuid.UUID
	cfg            Config
	items          []LineItem
	discount       *discount.Discount
	now            func() time.Time
	log            zerolog.Logger
	bus            *events.Bus
	strictCurrency bool
}

// New validates the configuration and returns an empty cart.
func New(cfg Config, opts ...Option) (*Cart, error) {
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	c := &Cart{
		id:  uuid.New(),
		cfg: cfg,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.log = c.log.With().Str("cart_id", c.id.String()).Logger()
	return c, nil
}

// ID returns the cart identifier.
func (c *Cart) ID() uuid.UUID {
	return c.id
}

// Config returns a copy of the cart configuration with every amount set.
func (c *Cart) Config() Config {
	return c.cfg.withDefaults()
}

// AddItem inserts a line for the product or increments the existing one.
func (c *Cart) AddItem(p catalog.Product, qty int) (LineItem, error) {
	if err := p.Validate(); err != nil {
		return LineItem{}, c.rejectItem("add", p.ID, fmt.Errorf("%w: %v", ErrInvalidProduct, err))
	}
	if qty <= 0 {
		return LineItem{}, c.rejectItem("add", p.ID, ErrInvalidQuantity)
	}
	if !p.Status.Purchasable() {
		return LineItem{}, c.rejectItem("add", p.ID, ErrUnavailable)
	}
	if p.Stock < qty {
		return LineItem{}, c.rejectItem("add", p.ID, ErrInsufficientStock)
	}
	if c.strictCurrency && !p.SameCurrency(c.cfg.Currency) {
		return LineItem{}, c.rejectItem("add", p.ID, ErrCurrencyMismatch)
	}

	if idx := c.indexOf(p.ID); idx >= 0 {
		existing := c.items[idx]
		newQty := existing.Quantity + qty
		if newQty > p.Stock {
			return LineItem{}, c.rejectItem("add", p.ID, ErrInsufficientStock)
		}
		updated := LineItem{Product: existing.Product, Quantity: newQty, AddedAt: existing.AddedAt}
		c.items[idx] = updated
		c.log.Debug().Str("product_id", p.ID).Int("qty", newQty).Msg("cart item incremented")
		c.emit(events.TopicItemUpdated, map[string]any{"op": "add", "productId": p.ID, "quantity": newQty})
		return updated, nil
	}

	item := LineItem{Product: p, Quantity: qty, AddedAt: c.now()}
	c.items = append(c.items, item)
	c.log.Debug().Str("product_id", p.ID).Int("qty", qty).Msg("cart item added")
	c.emit(events.TopicItemAdded, map[string]any{"op": "add", "productId": p.ID, "quantity": qty})
	return item, nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return c.rejectItem("update", productID, ErrItemNotFound)
	}
	if qty <= 0 {
		c.removeAt(idx)
		return nil
	}
	existing := c.items[idx]
	if qty > existing.Product.Stock {
		return c.rejectItem("update", productID, ErrInsufficientStock)
	}
	c.items[idx] = LineItem{Product: existing.Product, Quantity: qty, AddedAt: existing.AddedAt}
	c.log.Debug().Str("product_id", productID).Int("qty", qty).Msg("cart item updated")
	c.emit(events.TopicItemUpdated, map[string]any{"op": "update", "productId": productID, "quantity": qty})
	return nil
}

// RemoveItem deletes the line for the product.
func (c *Cart) RemoveItem(productID string) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return c.rejectItem("remove", productID, ErrItemNotFound)
	}
	c.removeAt(idx)
	return nil
}

// Clear drops every line and the active discount. Configuration is kept.
func (c *Cart) Clear() {
	c.items = nil
	c.discount = nil
	c.log.Debug().Msg("cart cleared")
	c.emit(events.TopicCleared, nil)
}

// Items returns a copy of the current lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// ItemCount sums the quantities of all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ApplyDiscount validates the discount against the current subtotal and, on
// success, replaces any previously active discount.
func (c *Cart) ApplyDiscount(d discount.Discount) error {
	if err := d.Validate(c.now(), c.Subtotal()); err != nil {
		c.log.Info().Str("code", d.Code).Str("kind", string(d.Kind)).Str("reason", err.Error()).Msg("discount rejected")
		c.emit(events.TopicDiscountRejected, map[string]any{"code": d.Code, "kind": string(d.Kind), "reason": err.Error()})
		return fmt.Errorf("apply discount %q: %w", d.Code, err)
	}
	applied := d
	c.discount = &applied
	c.log.Debug().Str("code", d.Code).Str("kind", string(d.Kind)).Msg("discount applied")
	c.emit(events.TopicDiscountApplied, map[string]any{"code": d.Code, "kind": string(d.Kind)})
	return nil
}

// RemoveDiscount clears the active discount, if any.
func (c *Cart) RemoveDiscount() {
	if c.discount == nil {
		return
	}
	code, kind := c.discount.Code, string(c.discount.Kind)
	c.discount = nil
	c.emit(events.TopicDiscountRemoved, map[string]any{"code": code, "kind": kind})
}

// Discount returns the active discount.
func (c *Cart) Discount() (discount.Discount, bool) {
	if c.discount == nil {
		return discount.Discount{}, false
	}
	return *c.discount, true
}

// Subtotal returns the unrounded sum of line totals before discount.
func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.lines())
}

// Totals derives subtotal, discount, shipping, tax and total from the current state.
func (c *Cart) Totals() pricing.Totals {
	return pricing.Compute(c.lines(), c.discount, c.cfg.policy())
}

// ShippingQuote asks the lookup for options to country using the
// post-discount subtotal and the cart's free-shipping threshold. An active
// free_shipping discount counts as reaching the threshold, so the quote is
// eligible with nothing remaining, matching Totals.
func (c *Cart) ShippingQuote(lookup *shipping.Lookup, country string) shipping.Quote {
	amount := c.Subtotal()
	threshold := *c.cfg.FreeShippingThreshold
	if c.discount != nil {
		amount = amount.Sub(c.discount.Amount(amount))
		if c.discount.FreeShipping() {
			threshold = decimal.Zero
		}
	}
	return lookup.Options(country, amount, threshold)
}

func (c *Cart) lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, pricing.Line{Qty: it.Quantity, UnitPrice: it.Product.Price})
	}
	return lines
}

func (c *Cart) indexOf(productID string) int {
	for i, it := range c.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	productID := c.items[idx].Product.ID
	items := make([]LineItem, 0, len(c.items)-1)
	items = append(items, c.items[:idx]...)
	items = append(items, c.items[idx+1:]...)
	c.items = items
	c.log.Debug().Str("product_id", productID).Msg("cart item removed")
	c.emit(events.TopicItemRemoved, map[string]any{"op": "remove", "productId": productID})
}

func (c *Cart) rejectItem(op, productID string, reason error) error {
	c.log.Info().Str("op", op).Str("product_id", productID).Str("reason", reason.Error()).Msg("cart mutation rejected")
	c.emit(events.TopicItemRejected, map[string]any{"op": op, "productId": productID, "reason": reason.Error()})
	return fmt.Errorf("%s item %q: %w", op, productID, reason)
}

func (c *Cart) emit(topic string, payload any) {
	if c.bus == nil {
		return
	}
	if _, err := c.bus.Emit(context.Background(), topic, c.id, payload); err != nil {
		c.log.Warn().Err(err).Str("topic", topic).Msg("cart event delivery failed")
	}
}
