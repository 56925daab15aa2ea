package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_DecodeJSON(t *testing.T) {
	form := NewOrchestrator("product", WithRules(
		Length("productName", "Product name", 3, 100),
		Numeric("price", "Price", 0, 999999999, ExclusiveMin(), MaxDecimals(2)),
		File("productImages", "Image", 5<<20, []string{"image/png"}),
	))

	values, err := form.DecodeJSON([]byte(`{
		"productName": "Running Shoes",
		"price": 19.99,
		"productImages": [{"name": "a.png", "size": 1024, "content_type": "image/png"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, json.Number("19.99"), values["price"])
	assert.Equal(t, []FileInfo{{Name: "a.png", Size: 1024, ContentType: "image/png"}}, values["productImages"])
	assert.True(t, form.ValidateForm(values).IsValid)

	t.Run("单个文件对象", func(t *testing.T) {
		values, err := form.DecodeJSON([]byte(`{"productImages": {"name": "b.png", "size": 1, "content_type": "image/png"}}`))
		require.NoError(t, err)
		assert.Len(t, values["productImages"], 1)
	})

	t.Run("null 文件视为空", func(t *testing.T) {
		values, err := form.DecodeJSON([]byte(`{"productImages": null}`))
		require.NoError(t, err)
		assert.False(t, form.ValidateFieldIn("productImages", values).IsValid)
	})

	t.Run("高精度数值不丢失", func(t *testing.T) {
		values, err := form.DecodeJSON([]byte(`{"price": 10.123}`))
		require.NoError(t, err)
		res := form.ValidateFieldIn("price", values)
		assert.False(t, res.IsValid)
	})

	t.Run("非法输入", func(t *testing.T) {
		_, err := form.DecodeJSON([]byte(`[1, 2]`))
		assert.ErrorIs(t, err, ErrInvalidValues)

		_, err = form.DecodeJSON([]byte(`{"productImages": "a.png"}`))
		assert.ErrorIs(t, err, ErrInvalidValues)
	})
}
