package enums

// NotificationType classifies persisted notification rows. Delivery
// (push/email/SMS) happens outside this service.
type NotificationType string

const (
	NotificationRentalRequested  NotificationType = "rental_requested"
	NotificationRentalApproved   NotificationType = "rental_approved"
	NotificationRentalRejected   NotificationType = "rental_rejected"
	NotificationPaymentReceived  NotificationType = "payment_received"
	NotificationPaymentFailed    NotificationType = "payment_failed"
	NotificationHandoverComplete NotificationType = "handover_complete"
	NotificationRentalCompleted  NotificationType = "rental_completed"
	NotificationDisputeOpened    NotificationType = "dispute_opened"
	NotificationDisputeResolved  NotificationType = "dispute_resolved"
)
