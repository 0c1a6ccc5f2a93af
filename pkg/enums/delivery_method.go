package enums

import "fmt"

// DeliveryMethod is how the item changes hands at handover.
type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "pickup"
	DeliveryMethodDelivery DeliveryMethod = "delivery"
)

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	return d == DeliveryMethodPickup || d == DeliveryMethodDelivery
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	switch DeliveryMethod(value) {
	case DeliveryMethodPickup:
		return DeliveryMethodPickup, nil
	case DeliveryMethodDelivery:
		return DeliveryMethodDelivery, nil
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
