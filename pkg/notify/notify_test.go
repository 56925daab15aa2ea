package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_ShowMessage(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, nil)

	term.ShowMessage("Product added to cart", LevelSuccess)
	term.ShowMessage("Something went wrong. Please try again.", LevelError)
	term.ShowMessage("unknown level", Level("debug"))

	text := out.String()
	assert.Contains(t, text, "Product added to cart")
	assert.Contains(t, text, "Something went wrong. Please try again.")
	assert.Contains(t, text, "i unknown level")
	assert.Len(t, strings.Split(strings.TrimSpace(text), "\n"), 3)
}

func TestTerminal_ShowModal(t *testing.T) {
	var out bytes.Buffer
	NewTerminal(&out, nil).ShowModal(ModalLogin)
	assert.Contains(t, out.String(), "Login required")
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "y", input: "y\n", want: true},
		{name: "YES 大写", input: "YES\n", want: true},
		{name: "直接回车", input: "\n", want: false},
		{name: "no", input: "no\n", want: false},
		{name: "没有换行", input: "y", want: true},
		{name: "无输入", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(&out, strings.NewReader(tt.input))
			assert.Equal(t, tt.want, term.Confirm("Remove this item?"))
			assert.Contains(t, out.String(), "Remove this item? [y/N]")
		})
	}

	var out bytes.Buffer
	assert.False(t, NewTerminal(&out, nil).Confirm("Remove?"))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(true)
	_, ok := r.Last()
	assert.False(t, ok)

	r.ShowMessage("a", LevelInfo)
	r.ShowMessage("b", LevelError)
	r.ShowModal(ModalLogin)
	assert.True(t, r.Confirm("sure?"))
	r.SetAnswer(false)
	assert.False(t, r.Confirm("really?"))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, Message{Text: "b", Level: LevelError}, last)
	assert.Len(t, r.Messages(), 2)
	assert.Equal(t, []string{ModalLogin}, r.Modals())
	assert.Equal(t, []string{"sure?", "really?"}, r.Prompts())
}
