package forms

import (
	"regexp"
	"strings"

	"katydid-storefront/pkg/validator"
)

// 促销类型
const (
	PromotionPercentage   = "percentage"
	PromotionFixedAmount  = "fixed-amount"
	PromotionBuyOneGetOne = "buy-one-get-one"
	PromotionFreeShipping = "free-shipping"
)

var (
	promotionNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-&(),.']+$`)
	// 代码在比较前统一转为大写，因此小写输入同样合法
	promotionCodePattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
)

// NewPromotion 促销活动表单
func NewPromotion(opts ...Option) *validator.Orchestrator {
	c := newConfig(opts)

	return c.form(Promotion,
		validator.Length("promotionName", "Promotion name", 3, 100).
			WithMessage(validator.TagMax, "Promotion name cannot exceed 100 characters"),
		validator.Pattern("promotionName", "Promotion name", promotionNamePattern, "Promotion name contains invalid characters"),

		validator.Length("promotionCode", "Promotion code", 3, 20).
			WithMessage(validator.TagMax, "Promotion code cannot exceed 20 characters"),
		validator.Pattern("promotionCode", "Promotion code", promotionCodePattern,
			"Promotion code must contain only uppercase letters, numbers, dash, and underscore"),

		validator.Enum("promotionType", "Promotion type",
			PromotionPercentage, PromotionFixedAmount, PromotionBuyOneGetOne, PromotionFreeShipping),

		discountRule(),

		validator.DateRange("startDate", "Start date", validator.NotBeforeToday(), validator.WithClock(c.clock)),
		validator.DateRange("endDate", "End date", validator.After("startDate", "Start date"), validator.WithClock(c.clock)),

		validator.Numeric("minPurchase", "Minimum purchase", 0, 9999999, validator.ExclusiveMin(), validator.MaxDecimals(2)).
			WithMessage(validator.TagMax, "Minimum purchase cannot exceed 9,999,999").
			AsOptional(),

		validator.Numeric("maxUsage", "Maximum usage", 1, 999999, validator.IntegerOnly()).
			WithMessage(validator.TagMax, "Maximum usage cannot exceed 999,999").
			AsOptional(),

		validator.Length("description", "Description", 0, 500).
			WithMessage(validator.TagMax, "Description cannot exceed 500 characters").
			AsOptional(),
	)
}

// discountByType 每种促销类型的折扣取值范围
var discountByType = map[string]validator.FieldRule{
	PromotionPercentage: bounded(
		validator.Numeric("discountValue", "Discount value", 0, 99, validator.ExclusiveMin(), validator.MaxDecimals(2)),
		"Percentage discount must be between 1 and 99").
		WithMessage(validator.TagDecimals, "Percentage can have maximum 2 decimal places"),
	PromotionFixedAmount: bounded(
		validator.Numeric("discountValue", "Discount value", 0, 9999999, validator.ExclusiveMin(), validator.MaxDecimals(2)),
		"Fixed amount must be between 1 and 9,999,999").
		WithMessage(validator.TagDecimals, "Fixed amount can have maximum 2 decimal places"),
	PromotionBuyOneGetOne: bounded(
		validator.Numeric("discountValue", "Discount value", 0, 100, validator.ExclusiveMin()),
		"Buy-One-Get-One discount must be between 1 and 100%"),
	PromotionFreeShipping: validator.Numeric("discountValue", "Discount value", 0, 0, validator.ExclusiveMin(), validator.NoMax()).
		WithMessage(validator.TagMin, "Minimum purchase for free shipping must be greater than 0"),
}

// discountRule 折扣值的范围取决于同一表单中的促销类型
func discountRule() validator.FieldRule {
	required := validator.Required("discountValue", "Discount value")

	return validator.Cross("discountValue", "Discount value", func(value any, values validator.Values) (bool, string) {
		if res := required.Validate(value, values); !res.IsValid {
			return false, res.Message
		}
		rule, ok := discountByType[strings.ToLower(strings.TrimSpace(values.String("promotionType")))]
		if !ok {
			return false, "Invalid promotion type"
		}
		res := rule.WithMessage(validator.TagNumber, "Discount must be a valid number").Validate(value, values)
		return res.IsValid, res.Message
	})
}
