package cart_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storefront-cart/internal/cart"
	"github.com/noah-isme/storefront-cart/internal/catalog"
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/events"
	"github.com/noah-isme/storefront-cart/internal/shipping"
)

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func mug() catalog.Product {
	return catalog.Product{
		ID:       "mug",
		Name:     "Enamel mug",
		Price:    dec("29.90"),
		Currency: "EUR",
		Status:   catalog.StatusAvailable,
		Stock:    5,
	}
}

func newCart(t *testing.T, opts ...cart.Option) *cart.Cart {
	t.Helper()
	opts = append([]cart.Option{cart.WithClock(func() time.Time { return fixedNow })}, opts...)
	c, err := cart.New(cart.NewConfig("EUR"), opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := cart.New(cart.Config{})
	require.Error(t, err)

	cfg := cart.NewConfig("EUR")
	cfg.ShippingCost = cart.Amount(dec("-1"))
	_, err = cart.New(cfg)
	require.Error(t, err)

	c, err := cart.New(cart.NewConfig(" eur "))
	require.NoError(t, err)
	require.Equal(t, "EUR", c.Config().Currency)
	requireDec(t, "20", *c.Config().TaxRate)
	requireDec(t, "50", *c.Config().FreeShippingThreshold)
	requireDec(t, "4.90", *c.Config().ShippingCost)
}

func TestNewFillsDefaultsForCurrencyOnlyConfig(t *testing.T) {
	t.Parallel()

	c, err := cart.New(cart.Config{Currency: "EUR"})
	require.NoError(t, err)
	requireDec(t, "20", *c.Config().TaxRate)
	requireDec(t, "50", *c.Config().FreeShippingThreshold)
	requireDec(t, "4.90", *c.Config().ShippingCost)

	_, err = c.AddItem(mug(), 1)
	require.NoError(t, err)
	totals := c.Totals()
	requireDec(t, "4.90", totals.Shipping)
	requireDec(t, "6.96", totals.TaxAmount)
	requireDec(t, "41.76", totals.Total)
}

func TestNewKeepsExplicitZeroAmounts(t *testing.T) {
	t.Parallel()

	cfg := cart.Config{Currency: "EUR", TaxRate: cart.Amount(decimal.Zero), ShippingCost: cart.Amount(decimal.Zero)}
	c, err := cart.New(cfg)
	require.NoError(t, err)

	*cfg.TaxRate = dec("99")
	requireDec(t, "0", *c.Config().TaxRate)
	requireDec(t, "50", *c.Config().FreeShippingThreshold)

	_, err = c.AddItem(mug(), 1)
	require.NoError(t, err)
	totals := c.Totals()
	requireDec(t, "0", totals.Shipping)
	requireDec(t, "0", totals.TaxAmount)
	requireDec(t, "29.90", totals.Total)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	for _, qty := range []int{0, -1, -10} {
		_, err := c.AddItem(mug(), qty)
		require.ErrorIs(t, err, cart.ErrInvalidQuantity)
	}
	require.True(t, c.IsEmpty())
}

func TestAddItemRejectsUnavailableProducts(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	for _, status := range []catalog.Status{catalog.StatusOutOfStock, catalog.StatusDiscontinued} {
		p := mug()
		p.Status = status
		_, err := c.AddItem(p, 1)
		require.ErrorIs(t, err, cart.ErrUnavailable)
	}
	require.True(t, c.IsEmpty())

	pre := mug()
	pre.Status = catalog.StatusPreorder
	_, err := c.AddItem(pre, 1)
	require.NoError(t, err)
}

func TestAddItemRejectsInvalidProduct(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	negative := mug()
	negative.Price = dec("-10")
	_, err := c.AddItem(negative, 1)
	require.ErrorIs(t, err, cart.ErrInvalidProduct)

	noID := mug()
	noID.ID = ""
	_, err = c.AddItem(noID, 1)
	require.ErrorIs(t, err, cart.ErrInvalidProduct)

	require.True(t, c.IsEmpty())
	requireDec(t, "0", c.Totals().Subtotal)
}

func TestAddItemAccumulatesWithinStock(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	first, err := c.AddItem(mug(), 2)
	require.NoError(t, err)
	require.Equal(t, fixedNow, first.AddedAt)

	item, err := c.AddItem(mug(), 3)
	require.NoError(t, err)
	require.Equal(t, 5, item.Quantity)
	require.Len(t, c.Items(), 1)
	require.Equal(t, 5, c.ItemCount())

	_, err = c.AddItem(mug(), 1)
	require.ErrorIs(t, err, cart.ErrInsufficientStock)
	require.Equal(t, 5, c.ItemCount())

	_, err = c.AddItem(catalog.Product{ID: "x", Price: dec("1"), Currency: "EUR", Status: catalog.StatusAvailable, Stock: 1}, 2)
	require.ErrorIs(t, err, cart.ErrInsufficientStock)
	require.Len(t, c.Items(), 1)
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	require.ErrorIs(t, c.UpdateQuantity("missing", 1), cart.ErrItemNotFound)

	_, err := c.AddItem(mug(), 1)
	require.NoError(t, err)

	require.NoError(t, c.UpdateQuantity("mug", 4))
	require.Equal(t, 4, c.ItemCount())

	require.ErrorIs(t, c.UpdateQuantity("mug", 6), cart.ErrInsufficientStock)
	require.Equal(t, 4, c.ItemCount())

	require.NoError(t, c.UpdateQuantity("mug", 0))
	require.True(t, c.IsEmpty())

	_, err = c.AddItem(mug(), 2)
	require.NoError(t, err)
	require.NoError(t, c.UpdateQuantity("mug", -3))
	require.True(t, c.IsEmpty())
	require.ErrorIs(t, c.UpdateQuantity("mug", -3), cart.ErrItemNotFound)
}

func TestRemoveItemPreservesOrder(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	for _, id := range []string{"a", "b", "c"} {
		p := mug()
		p.ID = id
		_, err := c.AddItem(p, 1)
		require.NoError(t, err)
	}
	require.ErrorIs(t, c.RemoveItem("zzz"), cart.ErrItemNotFound)
	require.NoError(t, c.RemoveItem("b"))

	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].Product.ID)
	require.Equal(t, "c", items[1].Product.ID)
}

func TestItemsIsDefensiveCopy(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 1)
	require.NoError(t, err)

	items := c.Items()
	items[0].Quantity = 99
	items[0].Product.Price = dec("0")
	require.Equal(t, 1, c.ItemCount())
	requireDec(t, "29.90", c.Subtotal())
}

func TestClearResetsItemsAndDiscount(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 2)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "TEN", Kind: discount.KindPercentage, Value: dec("10"), Active: true}))

	c.Clear()
	require.True(t, c.IsEmpty())
	require.Zero(t, c.ItemCount())
	_, ok := c.Discount()
	require.False(t, ok)
	require.Equal(t, "EUR", c.Totals().Currency)

	c.Clear()
	require.True(t, c.IsEmpty())
}

func TestTotalsScenarioTwoMugs(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 2)
	require.NoError(t, err)

	totals := c.Totals()
	requireDec(t, "59.80", totals.Subtotal)
	requireDec(t, "0", totals.DiscountAmount)
	requireDec(t, "0", totals.Shipping)
	requireDec(t, "11.96", totals.TaxAmount)
	requireDec(t, "71.76", totals.Total)
	require.Equal(t, 2, totals.ItemCount)
	require.Equal(t, "EUR", totals.Currency)
	require.Equal(t, totals, c.Totals())
}

func TestTotalsScenarioPercentageDiscount(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 2)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "TEN", Kind: discount.KindPercentage, Value: dec("10"), Active: true}))

	totals := c.Totals()
	requireDec(t, "5.98", totals.DiscountAmount)
	requireDec(t, "0", totals.Shipping)
	requireDec(t, "10.76", totals.TaxAmount)
	requireDec(t, "64.58", totals.Total)
}

func TestTotalsScenarioFlatShipping(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 1)
	require.NoError(t, err)

	totals := c.Totals()
	requireDec(t, "4.90", totals.Shipping)
	requireDec(t, "41.76", totals.Total)
}

func TestTotalsScenarioFreeShippingDiscount(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 1)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "SHIPFREE", Kind: discount.KindFreeShipping, Active: true}))

	totals := c.Totals()
	requireDec(t, "0", totals.Shipping)
	requireDec(t, "35.88", totals.Total)
}

func TestApplyDiscountMinimumNotMet(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 1)
	require.NoError(t, err)

	minimum := dec("1000")
	err = c.ApplyDiscount(discount.Discount{Code: "BIG", Kind: discount.KindFixedAmount, Value: dec("50"), MinOrderAmount: &minimum, Active: true})
	require.ErrorIs(t, err, discount.ErrMinimumSpendUnmet)
	_, ok := c.Discount()
	require.False(t, ok)
}

func TestApplyDiscountRejectionKeepsPrevious(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 2)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "TEN", Kind: discount.KindPercentage, Value: dec("10"), Active: true}))

	expired := fixedNow.Add(-time.Minute)
	require.ErrorIs(t, c.ApplyDiscount(discount.Discount{Code: "OLD", Kind: discount.KindPercentage, Value: dec("50"), ExpiresAt: &expired, Active: true}), discount.ErrExpired)
	require.ErrorIs(t, c.ApplyDiscount(discount.Discount{Code: "OFF", Kind: discount.KindPercentage, Value: dec("50")}), discount.ErrInactive)

	active, ok := c.Discount()
	require.True(t, ok)
	require.Equal(t, "TEN", active.Code)

	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "FIVE", Kind: discount.KindFixedAmount, Value: dec("5"), Active: true}))
	active, _ = c.Discount()
	require.Equal(t, "FIVE", active.Code)
	requireDec(t, "5", c.Totals().DiscountAmount)

	c.RemoveDiscount()
	_, ok = c.Discount()
	require.False(t, ok)
}

func TestDiscountKeptWhenSubtotalDrops(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 2)
	require.NoError(t, err)
	minimum := dec("50")
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "MIN50", Kind: discount.KindFixedAmount, Value: dec("5"), MinOrderAmount: &minimum, Active: true}))

	require.NoError(t, c.UpdateQuantity("mug", 1))
	requireDec(t, "5", c.Totals().DiscountAmount)
}

func TestCurrencyCheck(t *testing.T) {
	t.Parallel()

	usd := mug()
	usd.Currency = "USD"

	lenient := newCart(t)
	_, err := lenient.AddItem(usd, 1)
	require.NoError(t, err)

	strict := newCart(t, cart.WithCurrencyCheck())
	_, err = strict.AddItem(usd, 1)
	require.ErrorIs(t, err, cart.ErrCurrencyMismatch)
	require.True(t, strict.IsEmpty())
}

func TestEventsEmitted(t *testing.T) {
	t.Parallel()

	cartID := uuid.MustParse("5d0c3b9e-8a57-4f43-9c3e-0a1f2b3c4d5e")
	var topics []string
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.NotifierFunc(func(_ context.Context, ev events.Event) error {
			if ev.CartID != cartID {
				t.Errorf("event %s carried cart %s, want %s", ev.Topic, ev.CartID, cartID)
			}
			topics = append(topics, ev.Topic)
			return nil
		}),
	}}
	c := newCart(t, cart.WithEvents(bus), cart.WithID(cartID))
	require.Equal(t, cartID, c.ID())

	_, err := c.AddItem(mug(), 1)
	require.NoError(t, err)
	_, err = c.AddItem(mug(), 1)
	require.NoError(t, err)
	_, err = c.AddItem(mug(), 0)
	require.Error(t, err)
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "S", Kind: discount.KindFreeShipping, Active: true}))
	require.Error(t, c.ApplyDiscount(discount.Discount{Code: "X", Kind: discount.KindFreeShipping}))
	c.RemoveDiscount()
	require.NoError(t, c.RemoveItem("mug"))
	c.Clear()

	require.Equal(t, []string{
		events.TopicItemAdded,
		events.TopicItemUpdated,
		events.TopicItemRejected,
		events.TopicDiscountApplied,
		events.TopicDiscountRejected,
		events.TopicDiscountRemoved,
		events.TopicItemRemoved,
		events.TopicCleared,
	}, topics)
}

func TestShippingQuoteUsesPostDiscountSubtotal(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	p := mug()
	p.Price = dec("55")
	_, err := c.AddItem(p, 1)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "TEN", Kind: discount.KindFixedAmount, Value: dec("10"), Active: true}))

	quote := c.ShippingQuote(shipping.NewLookup(shipping.DefaultZones()), "FR")
	require.True(t, quote.Available)
	require.False(t, quote.FreeShippingEligible)
	requireDec(t, "5", quote.AmountRemainingForFreeShipping)
}

func TestShippingQuoteHonoursFreeShippingDiscount(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	_, err := c.AddItem(mug(), 1)
	require.NoError(t, err)
	lookup := shipping.NewLookup(shipping.DefaultZones())

	before := c.ShippingQuote(lookup, "FR")
	require.False(t, before.FreeShippingEligible)
	requireDec(t, "20.10", before.AmountRemainingForFreeShipping)

	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "SHIPFREE", Kind: discount.KindFreeShipping, Active: true}))
	quote := c.ShippingQuote(lookup, "FR")
	require.True(t, quote.FreeShippingEligible)
	require.True(t, quote.AmountRemainingForFreeShipping.IsZero())
	require.True(t, quote.Cheapest.Price.IsZero())
	requireDec(t, "0", c.Totals().Shipping)
}

func TestSummaryRendersTotals(t *testing.T) {
	t.Parallel()

	c := newCart(t)
	require.Contains(t, c.Summary(), "(empty)")

	_, err := c.AddItem(mug(), 2)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(discount.Discount{Code: "TEN", Kind: discount.KindPercentage, Value: dec("10"), Active: true}))

	out := c.Summary()
	require.Contains(t, out, "2 x Enamel mug @ 29.90")
	require.Contains(t, out, "59.80")
	require.Contains(t, out, "Discount (TEN)")
	require.Contains(t, out, "-5.98")
	require.Contains(t, out, "64.58 EUR")
}

func TestSafeConcurrentAdds(t *testing.T) {
	t.Parallel()

	p := mug()
	p.Stock = 1000
	safe := cart.NewSafe(newCart(t))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = safe.AddItem(p, 2)
			_ = safe.Totals()
		}()
	}
	wg.Wait()

	require.Equal(t, 100, safe.ItemCount())
	require.Len(t, safe.Items(), 1)
	requireDec(t, "2990", safe.Subtotal())
}
