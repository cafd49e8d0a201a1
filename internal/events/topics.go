package events

// Topic constants for domain events emitted by carts.
const (
	TopicItemAdded        = "cart.item_added"
	TopicItemUpdated      = "cart.item_updated"
	TopicItemRemoved      = "cart.item_removed"
	TopicItemRejected     = "cart.item_rejected"
	TopicCleared          = "cart.cleared"
	TopicDiscountApplied  = "cart.discount_applied"
	TopicDiscountRejected = "cart.discount_rejected"
	TopicDiscountRemoved  = "cart.discount_removed"
)

// DefaultTopics returns the canonical list of cart topics.
func DefaultTopics() []string {
	return []string{
		TopicItemAdded,
		TopicItemUpdated,
		TopicItemRemoved,
		TopicItemRejected,
		TopicCleared,
		TopicDiscountApplied,
		TopicDiscountRejected,
		TopicDiscountRemoved,
	}
}
