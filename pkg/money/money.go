// Package money 金额类型
//
// 金额一律以货币最小单位的整数保存（IDR 没有辅币，最小单位即 1 卢比），
// 单价 × 数量、合计等运算全部是整数运算，不经过浮点数。
// 只有在解析用户输入/服务端 JSON 与展示时才与十进制数互转。
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrInvalidAmount 无法解析的金额
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount 金额为负
	ErrNegativeAmount = errors.New("negative amount")
)

// Currency 货币定义
type Currency struct {
	Code     string
	Symbol   string
	Exponent int32 // 最小单位的小数位数
	Locale   language.Tag
	// DecimalSep 小数点，千位分隔符由 Locale 决定
	DecimalSep string
}

// 内置货币
var (
	IDR = Currency{Code: "IDR", Symbol: "Rp", Exponent: 0, Locale: language.Indonesian, DecimalSep: ","}
	USD = Currency{Code: "USD", Symbol: "$", Exponent: 2, Locale: language.AmericanEnglish, DecimalSep: "."}
)

var currencies = map[string]Currency{
	IDR.Code: IDR,
	USD.Code: USD,
}

// Default 店铺默认货币
var Default = IDR

// LookupCurrency 按 ISO 代码查找货币
func LookupCurrency(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Amount 以最小单位计的金额
type Amount int64

// Zero 零金额
const Zero Amount = 0

// FromDecimal 按货币精度四舍五入为最小单位
func FromDecimal(d decimal.Decimal, c Currency) Amount {
	return Amount(d.Shift(c.Exponent).Round(0).IntPart())
}

// Parse 解析十进制字符串（"50000"、"12.50"），不接受负数
func Parse(s string, c Currency) (Amount, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Zero, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	return FromDecimal(d, c), nil
}

// MustParse 同 Parse，出错时 panic
func MustParse(s string, c Currency) Amount {
	a, err := Parse(s, c)
	if err != nil {
		panic(err)
	}
	return a
}

// Mul 单价 × 数量
func (a Amount) Mul(quantity int) Amount {
	return a * Amount(quantity)
}

// Decimal 转为主单位的十进制数
func (a Amount) Decimal(c Currency) decimal.Decimal {
	return decimal.New(int64(a), -c.Exponent)
}

// Format 按货币的本地化习惯格式化，如 IDR 150000 -> "Rp 150.000"
func (a Amount) Format(c Currency) string {
	p := message.NewPrinter(c.Locale)

	sign := ""
	n := int64(a)
	if n < 0 {
		sign = "-"
		n = -n
	}

	if c.Exponent == 0 {
		return fmt.Sprintf("%s%s %s", sign, c.Symbol, p.Sprintf("%d", n))
	}

	unit := int64(1)
	for i := int32(0); i < c.Exponent; i++ {
		unit *= 10
	}
	return fmt.Sprintf("%s%s %s%s%0*d", sign, c.Symbol, p.Sprintf("%d", n/unit), c.DecimalSep, int(c.Exponent), n%unit)
}

// String 使用默认货币格式化
func (a Amount) String() string {
	return a.Format(Default)
}

// Sum 求和
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
