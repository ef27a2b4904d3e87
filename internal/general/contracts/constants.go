package contracts

// Exchanges
const (
	ExchangeNotificationTopic = "notification_topic"
)

// Queues
const (
	QueueNotifications = "notifications"
)

// Routing patterns
const (
	RouteNotificationPrefix = "notification." // {type}
)

// Producers
const (
	ProducerBookingService = "booking-service"
)
