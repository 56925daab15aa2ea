package forms

import (
	"regexp"

	"katydid-storefront/pkg/validator"
)

var (
	productNamePattern = regexp.MustCompile(`^[^<>{}\[\]]*$`)
	skuPattern         = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// NewProduct 商品表单
func NewProduct(opts ...Option) *validator.Orchestrator {
	c := newConfig(opts)

	images := validator.File("productImages", "Image", 5<<20,
		[]string{"image/jpeg", "image/png", "image/gif"}, "jpg", "jpeg", "png", "gif").
		WithMessage(validator.TagRequired, "At least one image is required").
		WithMessage(validator.TagFileType, "Invalid image format. Allowed: JPG, PNG, GIF")

	return c.form(Product,
		validator.Length("productName", "Product name", 3, 100).
			WithMessage(validator.TagMax, "Product name cannot exceed 100 characters"),
		validator.Pattern("productName", "Product name", productNamePattern, "Product name contains invalid characters"),

		validator.Numeric("price", "Price", 0, 999999999, validator.ExclusiveMin(), validator.MaxDecimals(2)).
			WithMessage(validator.TagMax, "Price cannot exceed 999,999,999"),

		validator.Numeric("stock", "Stock", 0, 999999, validator.IntegerOnly()).
			WithMessage(validator.TagMin, "Stock cannot be negative").
			WithMessage(validator.TagMax, "Stock cannot exceed 999,999"),

		validator.Length("description", "Description", 10, 1000).
			WithMessage(validator.TagMax, "Description cannot exceed 1000 characters"),

		validator.Required("category", "Category"),

		images.InScenes(validator.SceneCreate),
		images.AsOptional().InScenes(validator.SceneUpdate),

		validator.Length("sku", "SKU", 3, 50).
			WithMessage(validator.TagMax, "SKU cannot exceed 50 characters"),
		validator.Pattern("sku", "SKU", skuPattern, "SKU can only contain letters, numbers, dash, and underscore"),

		validator.Numeric("weight", "Weight", 0, 100, validator.ExclusiveMin()).
			WithMessage(validator.TagMax, "Weight cannot exceed 100 kg").
			AsOptional(),

		bounded(validator.Numeric("discount", "Discount", 0, 99), "Discount must be between 0 and 99 percent").
			AsOptional(),
	)
}
