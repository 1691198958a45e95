package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Code 顯示幣別；金額一律以 FCFA 儲存。
type Code string

const (
	CodeFCFA Code = "FCFA"
	CodeEUR  Code = "EUR"
)

// Mode 數字呈現方式。
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeCompact  Mode = "compact"
)

// DefaultEURRate FCFA 對歐元固定匯率。
const DefaultEURRate = 655.957

// ParseCode 解析幣別字串，接受 ISO 代碼 XOF。
func ParseCode(s string) (Code, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "FCFA", "XOF", "CFA":
		return CodeFCFA, nil
	case "EUR":
		return CodeEUR, nil
	default:
		return "", fmt.Errorf("unsupported currency %q", s)
	}
}

// ParseMode 解析呈現方式，空字串為 standard。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return ModeStandard, nil
	case "compact":
		return ModeCompact, nil
	default:
		return "", fmt.Errorf("unsupported format mode %q", s)
	}
}

// CurrencyFormatter 以法語慣例格式化金額。
type CurrencyFormatter struct {
	eurRate decimal.Decimal
	printer *message.Printer
	symbols map[Code]string
}

func NewCurrencyFormatter(eurRate float64) *CurrencyFormatter {
	if eurRate <= 0 {
		eurRate = DefaultEURRate
	}
	return &CurrencyFormatter{
		eurRate: decimal.NewFromFloat(eurRate),
		printer: message.NewPrinter(language.French),
		symbols: map[Code]string{
			CodeFCFA: fcfaSymbol(),
			CodeEUR:  fmt.Sprint(currency.Symbol(currency.EUR)),
		},
	}
}

// fcfaSymbol 取 XOF 的符號並去掉 "CFA"，只留 "F"。
func fcfaSymbol() string {
	sym := fmt.Sprint(currency.Symbol(currency.MustParseISO("XOF")))
	sym = strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(sym), "CFA", ""))
	if sym == "" || sym == "XOF" {
		return "F"
	}
	return sym
}

// Convert 將 FCFA 金額換算為目標幣別。
func (f *CurrencyFormatter) Convert(value float64, code Code) decimal.Decimal {
	d := decimal.NewFromFloat(value)
	if code == CodeEUR {
		return d.Div(f.eurRate)
	}
	return d
}

// Format 將 FCFA 金額換算並格式化。NaN / Inf 視為 0。
func (f *CurrencyFormatter) Format(value float64, code Code, mode Mode) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	amount := f.Convert(value, code)
	symbol := f.symbols[code]

	if mode == ModeCompact {
		scaled, suffix := compact(amount)
		text := f.printer.Sprint(number.Decimal(scaled.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
		if suffix != "" {
			text += " " + suffix
		}
		return text + " " + symbol
	}

	places := int32(0)
	if code == CodeEUR {
		places = 2
	}
	rounded := amount.Round(places).InexactFloat64()
	text := f.printer.Sprint(number.Decimal(rounded,
		number.MinFractionDigits(int(places)),
		number.MaxFractionDigits(int(places)),
	))
	return text + " " + symbol
}

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// compact 依量級縮寫：k、M、Md（milliard）。
func compact(d decimal.Decimal) (decimal.Decimal, string) {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(billion):
		return d.Div(billion), "Md"
	case abs.GreaterThanOrEqual(million):
		return d.Div(million), "M"
	case abs.GreaterThanOrEqual(thousand):
		return d.Div(thousand), "k"
	default:
		return d, ""
	}
}
