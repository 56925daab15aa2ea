package forms

import "katydid-storefront/pkg/validator"

// NewCategory 商品分类表单
//
// 图片在新建时必填，编辑时可以不重新上传。描述超长只给出 warning 样式的提示。
func NewCategory(opts ...Option) *validator.Orchestrator {
	c := newConfig(opts)

	image := validator.File("categoryImage", "Category image", 2<<20, imageTypes).
		WithMessage(validator.TagFileType, "Please upload a valid image file (JPG, PNG, or GIF)").
		WithMessage(validator.TagFileSize, "Image size must be less than 2MB").
		WithSuccess("Image uploaded successfully!")

	return c.form(Category,
		validator.Length("categoryName", "Category name", 1, 100).
			WithSuccess("Category name looks good!"),
		validator.Length("categoryDescription", "Description", 0, 500).
			WithSeverity(validator.SeverityWarning),
		image.InScenes(validator.SceneCreate),
		image.AsOptional().InScenes(validator.SceneUpdate),
	)
}
