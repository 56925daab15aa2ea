package forms

import (
	"strings"
	"unicode"

	"katydid-storefront/pkg/validator"
)

const passwordSpecials = "@$!%*?&"

// NewCustomer 客户资料表单（后台新建/编辑客户）
func NewCustomer(opts ...Option) *validator.Orchestrator {
	c := newConfig(opts)

	return c.form(Customer,
		validator.Format("email", "Email", "email", "Invalid email format"),
		validator.Format("phone", "Phone", "id_phone", "Invalid phone format. Use format: 08XXXXXXXXX or +62XXXXXXXXX").
			AsOptional(),

		validator.Length("fullName", "Full name", 3, 100).
			WithMessage(validator.TagMax, "Full name must not exceed 100 characters"),

		validator.Length("password", "Password", 6, 50).
			WithMessage(validator.TagMax, "Password must not exceed 50 characters").
			InScenes(validator.SceneCreate),
		validator.Cross("password", "Password", strongPassword).
			InScenes(validator.SceneCreate),
		validator.Cross("confirmPassword", "Password confirmation", passwordsMatch).
			InScenes(validator.SceneCreate),

		validator.Length("address", "Address", 10, 500).
			WithMessage(validator.TagMax, "Address must not exceed 500 characters").
			AsOptional(),
		validator.Length("city", "City", 2, 50).
			WithMessage(validator.TagMin, "City name must be at least 2 characters").
			WithMessage(validator.TagMax, "City name must not exceed 50 characters"),
		validator.Length("country", "Country", 2, 50).
			WithMessage(validator.TagMin, "Country name must be at least 2 characters").
			WithMessage(validator.TagMax, "Country name must not exceed 50 characters"),

		validator.Numeric("loyaltyPoints", "Loyalty points", 0, 999999, validator.IntegerOnly()).
			WithMessage(validator.TagNumber, "Loyalty points must be a number").
			WithMessage(validator.TagMin, "Loyalty points cannot be negative").
			WithMessage(validator.TagMax, "Loyalty points cannot exceed 999,999").
			AsOptional(),

		validator.Enum("status", "Customer status", "active", "inactive"),
	)
}

// strongPassword 至少包含大写、小写、数字和一个特殊字符，且只允许这些字符
func strongPassword(value any, _ validator.Values) (bool, string) {
	const message = "Password must contain uppercase, lowercase, number, and special character"

	password, _ := value.(string)
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			upper = true
		case unicode.IsLower(r) && r < unicode.MaxASCII:
			lower = true
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false, message
		}
	}
	if !(upper && lower && digit && special) {
		return false, message
	}
	return true, ""
}

func passwordsMatch(value any, values validator.Values) (bool, string) {
	confirm, _ := value.(string)
	if confirm == "" {
		return false, "Password confirmation is required"
	}
	if confirm != values.String("password") {
		return false, "Passwords do not match"
	}
	return true, ""
}
