package contracts

// Broadcast broker channel shared by every API process.
const BroadcastChannel = "caby.broadcast"

// Exchanges
const (
	ExchangeRideTopic = "ride_topic"
)

// Queues
const (
	QueueReceiptEmails = "receipt_emails"
)

// Routing keys
const (
	RouteReceiptRequested = "ride.receipt.requested"
)

// WebSocket / broadcast event names
const (
	EventRideStatus     = "ride_status"
	EventNewRideRequest = "new_ride_request"
)

// RideRoom returns the room key subscribers join for one ride's events.
func RideRoom(rideID string) string {
	return "ride_" + rideID
}
