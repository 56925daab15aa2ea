package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryForm(scene ValidateScene) *Orchestrator {
	return NewOrchestrator("category",
		WithScene(scene),
		WithRules(
			Length("categoryName", "Category name", 1, 100).WithSuccess("Category name looks good!"),
			Length("categoryDescription", "Description", 0, 500).WithSeverity(SeverityWarning),
			File("categoryImage", "Image", 2<<20, []string{"image/jpeg", "image/png"}).InScenes(SceneCreate),
		),
	)
}

func TestOrchestrator_ValidateField(t *testing.T) {
	form := newCategoryForm(SceneAll)

	res := form.ValidateField("categoryName", "")
	assert.False(t, res.IsValid)
	assert.Equal(t, "Category name is required", res.Message)

	res = form.ValidateField("categoryName", "Shoes")
	assert.True(t, res.IsValid)
	assert.Equal(t, "Category name looks good!", res.Message)
	assert.Equal(t, SeveritySuccess, res.Severity)
}

func TestOrchestrator_MissingRuleIsValid(t *testing.T) {
	form := newCategoryForm(SceneAll)
	res := form.ValidateField("notRegistered", "anything")
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Message)
	assert.Equal(t, "notRegistered", res.Field)
}

func TestOrchestrator_FirstFailureShortCircuits(t *testing.T) {
	calls := 0
	counting := Cross("code", "Code", func(any, Values) (bool, string) {
		calls++
		return false, "second rule"
	})

	form := NewOrchestrator("promo", WithRules(
		Length("code", "Code", 3, 20),
		counting,
	))

	res := form.ValidateField("code", "ab")
	assert.False(t, res.IsValid)
	assert.Equal(t, "Code must be at least 3 characters", res.Message)
	assert.Equal(t, 0, calls, "后续规则不应执行")

	res = form.ValidateField("code", "ABC")
	assert.Equal(t, "second rule", res.Message)
	assert.Equal(t, 1, calls)
}

func TestOrchestrator_ValidateForm(t *testing.T) {
	form := newCategoryForm(SceneAll)

	tests := []struct {
		name   string
		values Values
		valid  bool
		errors []string
	}{
		{
			name: "全部通过",
			values: Values{
				"categoryName":  "Shoes",
				"categoryImage": &FileInfo{Name: "a.png", Size: 1024, ContentType: "image/png"},
			},
			valid: true,
		},
		{
			name:   "名称为空且缺少图片",
			values: Values{"categoryName": "  "},
			errors: []string{"categoryName", "categoryImage"},
		},
		{
			name: "警告也使表单无效",
			values: Values{
				"categoryName":        "Shoes",
				"categoryDescription": string(make([]byte, 501)),
				"categoryImage":       &FileInfo{Name: "a.png", Size: 1024, ContentType: "image/png"},
			},
			errors: []string{"categoryDescription"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := form.ValidateForm(tt.values)
			assert.Equal(t, tt.valid, report.IsValid)
			assert.Equal(t, []string{"categoryName", "categoryDescription", "categoryImage"}, report.Fields)

			var failed []string
			for _, res := range report.Errors() {
				failed = append(failed, res.Field)
			}
			assert.Equal(t, tt.errors, failed)

			if tt.valid {
				assert.NoError(t, report.Err())
				return
			}
			err := report.Err()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormInvalid)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.errors[0], fe.Result.Field)

			first, ok := report.FirstError()
			assert.True(t, ok)
			assert.Equal(t, tt.errors[0], first.Field)
		})
	}
}

func TestOrchestrator_IsValidIsAndOfResults(t *testing.T) {
	form := newCategoryForm(SceneAll)
	inputs := []Values{
		{},
		{"categoryName": "x"},
		{"categoryName": "x", "categoryImage": FileInfo{Name: "a.jpg", Size: 10, ContentType: "image/jpeg"}},
		{"categoryName": "x", "categoryImage": FileInfo{Name: "a.gif", Size: 10, ContentType: "image/gif"}},
	}
	for _, values := range inputs {
		report := form.ValidateForm(values)
		want := true
		for _, res := range report.FieldResults {
			want = want && res.IsValid
		}
		assert.Equal(t, want, report.IsValid)
	}
}

func TestOrchestrator_Scenes(t *testing.T) {
	create := newCategoryForm(SceneCreate)
	update := create.InScene(SceneUpdate)

	values := Values{"categoryName": "Shoes"}
	assert.False(t, create.ValidateForm(values).IsValid, "新建时图片必填")
	assert.True(t, update.ValidateForm(values).IsValid, "编辑时图片规则不生效")
	assert.Equal(t, SceneCreate, create.Scene())
}

func TestOrchestrator_CrossFieldReadsCurrentValues(t *testing.T) {
	form := NewOrchestrator("promotion", WithRules(
		DateRange("startDate", "Start date"),
		DateRange("endDate", "End date", After("startDate", "Start date")),
	))

	values := Values{"startDate": "2030-01-10", "endDate": "2030-01-15"}
	assert.True(t, form.ValidateForm(values).IsValid)

	// 用户在填写结束日期之后又修改了开始日期
	values["startDate"] = "2030-01-20"
	report := form.ValidateForm(values)
	assert.False(t, report.IsValid)
	assert.Equal(t, "End date must be after start date", report.Result("endDate").Message)

	res := form.ValidateFieldIn("endDate", values)
	assert.False(t, res.IsValid)
	// 单字段校验没有上下文时跳过关联检查
	assert.True(t, form.ValidateField("endDate", "2030-01-15").IsValid)
}

func TestOrchestrator_RegisterRejectsInvalidRule(t *testing.T) {
	form := NewOrchestrator("broken")
	err := form.Register(Required("ok", "OK"), Length("bad", "Bad", 3, 1))
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.Empty(t, form.Fields(), "非法批次不应部分注册")

	assert.Panics(t, func() {
		NewOrchestrator("broken", WithRules(Enum("e", "E")))
	})
}

func TestReport_SummaryAndJSON(t *testing.T) {
	form := newCategoryForm(SceneUpdate)
	report := form.ValidateForm(Values{"categoryName": ""})
	assert.Equal(t, "field 'categoryName': Category name is required", report.Summary())

	data, err := report.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"is_valid":false`)

	ok := form.ValidateForm(Values{"categoryName": "Bags"})
	assert.Equal(t, "category: 3 field(s) valid", ok.Summary())
}

func TestScene(t *testing.T) {
	tests := []struct {
		name   string
		scene  ValidateScene
		target ValidateScene
		want   bool
	}{
		{name: "未限定场景匹配一切", scene: SceneNone, target: SceneUpdate, want: true},
		{name: "相同场景", scene: SceneCreate, target: SceneCreate, want: true},
		{name: "不同场景", scene: SceneCreate, target: SceneUpdate, want: false},
		{name: "组合场景", scene: SceneCreate | SceneUpdate, target: SceneUpdate, want: true},
		{name: "全部场景", scene: SceneAll, target: SceneQuery, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scene.Has(tt.target))
		})
	}

	s, ok := ParseScene("edit")
	assert.True(t, ok)
	assert.Equal(t, SceneUpdate, s)
	_, ok = ParseScene("delete")
	assert.False(t, ok)
	assert.Equal(t, "create|update", (SceneCreate | SceneUpdate).String())
}
