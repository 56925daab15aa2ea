package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrchestrator_UnknownFields(t *testing.T) {
	form := newCategoryForm(SceneUpdate)

	tests := []struct {
		name   string
		values Values
		want   []string
	}{
		{name: "全部已知", values: Values{"categoryName": "Shoes", "categoryDescription": ""}, want: nil},
		{name: "场景外字段仍已知", values: Values{"categoryImage": nil}, want: nil},
		{name: "未知字段排序", values: Values{"zeta": 1, "categoryName": "x", "alpha": 2}, want: []string{"alpha", "zeta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, form.UnknownFields(tt.values))
		})
	}

	assert.NoError(t, form.CheckKeys(Values{"categoryName": "Shoes"}))
	err := form.CheckKeys(Values{"discount": 10})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "discount")
}
