package forms

import (
	"time"

	"katydid-storefront/pkg/validator"
)

// maxReportSpan 报表日期范围上限
const maxReportSpan = 365 * 24 * time.Hour

var (
	// ReportTypes 报表类型
	ReportTypes = []string{"sales", "orders", "customers", "products", "inventory", "revenue", "top-products", "top-customers"}
	// ReportFormats 导出格式
	ReportFormats = []string{"pdf", "csv", "excel", "json"}

	reportCategories = []string{"shirtblouse", "dresses", "accessories", "outerwear", "shoes", "activewear"}
	reportStatuses   = []string{"all", "pending", "processing", "completed", "cancelled", "failed", "refunded"}
)

// NewReport 报表筛选表单，默认使用查询场景
func NewReport(opts ...Option) *validator.Orchestrator {
	c := newConfig(append([]Option{WithScene(validator.SceneQuery)}, opts...))

	return c.form(Report,
		validator.DateRange("startDate", "Start date", validator.WithClock(c.clock)),
		validator.DateRange("endDate", "End date",
			validator.After("startDate", "Start date"),
			validator.MaxSpan(maxReportSpan),
			validator.WithClock(c.clock)),

		validator.Enum("reportType", "Report type", ReportTypes...),
		validator.Enum("format", "Format", ReportFormats...),
		validator.Enum("category", "Category", reportCategories...).AsOptional(),
		validator.Enum("status", "Status", reportStatuses...).AsOptional(),

		validator.Numeric("minValue", "Minimum value", 0, 0, validator.NoMax()).
			WithMessage(validator.TagNumber, "Minimum value must be a number").
			WithMessage(validator.TagMin, "Minimum value cannot be negative").
			AsOptional(),
		bounded(validator.Numeric("limit", "Limit", 1, 1000, validator.IntegerOnly()), "Limit must be between 1 and 1000").
			WithMessage(validator.TagNumber, "Limit must be a number").
			AsOptional(),
	)
}
