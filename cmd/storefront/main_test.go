package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/validator"
)

func TestParseFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    validator.FileInfo
		wantErr bool
	}{
		{name: "完整", input: "categoryImage=cover.png:204800:image/png", want: validator.FileInfo{Name: "cover.png", Size: 204800, ContentType: "image/png"}},
		{name: "缺少类型", input: "categoryImage=cover.png:204800", wantErr: true},
		{name: "大小非数字", input: "categoryImage=cover.png:big:image/png", wantErr: true},
		{name: "缺少字段名", input: "=cover.png:1:image/png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, got, err := parseFile(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "categoryImage", field)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductArg(t *testing.T) {
	addName, addPrice, addAttrs = "Canvas Tote", "50000", []string{"color=navy"}
	defer func() { addName, addPrice, addAttrs = "", "", nil }()

	p, err := productArg(money.IDR, "7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, money.Amount(50000), p.UnitPrice)
	v, _ := p.Attributes.Get("color")
	assert.Equal(t, "navy", v)

	_, err = productArg(money.IDR, "abc")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		want    string
	}{
		{
			name: "编辑场景通过",
			args: []string{"validate", "category", "--scene", "update", "--set", "categoryName=Summer Collection", "--env-file", ""},
			want: "category: 3 field(s) valid",
		},
		{
			name:    "新建缺少图片",
			args:    []string{"validate", "category", "--scene", "create", "--set", "categoryName=Summer Collection", "--env-file", ""},
			wantErr: validator.ErrFormInvalid,
			want:    "categoryImage",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formSets, formFiles, formJSON = nil, nil, ""
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(tt.args)

			err := rootCmd.Execute()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.want)
		})
	}
}
