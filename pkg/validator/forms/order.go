package forms

import (
	"regexp"

	"katydid-storefront/pkg/validator"
)

var (
	orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{3,}$`)
	customerIDPattern  = regexp.MustCompile(`(?i)^CUST-\d+$`)
	trackingPattern    = regexp.MustCompile(`(?i)^[A-Z0-9]{5,30}$`)
)

// OrderStatuses 订单状态
var OrderStatuses = []string{"pending", "processing", "completed", "cancelled", "failed", "refunded"}

// PaymentStatuses 支付状态
var PaymentStatuses = []string{"pending", "paid", "failed", "refunded", "partial"}

// NewOrder 订单摘要表单（后台订单编辑）
func NewOrder(opts ...Option) *validator.Orchestrator {
	c := newConfig(opts)

	return c.form(Order,
		validator.Required("orderNumber", "Order number"),
		validator.Pattern("orderNumber", "Order number", orderNumberPattern,
			"Order number must be in format: ORD-YYYYMMDD-###"),

		validator.Enum("orderStatus", "Order status", OrderStatuses...).
			WithMessage(validator.TagRequired, "Order status is required"),
		validator.Enum("paymentStatus", "Payment status", PaymentStatuses...),

		validator.Numeric("totalAmount", "Order total", 0, 999999999, validator.ExclusiveMin()).
			WithMessage(validator.TagNumber, "Order total must be a number").
			WithMessage(validator.TagMax, "Order total cannot exceed 999,999,999"),

		validator.DateRange("orderDate", "Order date", validator.NotAfterNow(), validator.WithClock(c.clock)),

		validator.Pattern("customerId", "Customer ID", customerIDPattern, "Invalid customer ID format"),

		validator.Numeric("itemCount", "Item count", 1, 999, validator.IntegerOnly()).
			WithMessage(validator.TagNumber, "Item count must be a number").
			WithMessage(validator.TagMin, "Order must have at least 1 item").
			WithMessage(validator.TagMax, "Order cannot have more than 999 items"),

		validator.Length("shippingAddress", "Shipping address", 10, 500).
			WithMessage(validator.TagMax, "Shipping address cannot exceed 500 characters"),

		validator.Pattern("trackingNumber", "Tracking number", trackingPattern,
			"Tracking number must be 5-30 alphanumeric characters").
			AsOptional(),
	)
}
