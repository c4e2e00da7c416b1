package events

// Topic constants for domain events emitted by the checkout flow.
const (
	TopicOrderPaid     = "order.paid"
	TopicPaymentFailed = "payment.failed"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicOrderPaid,
		TopicPaymentFailed,
	}
}
