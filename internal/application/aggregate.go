package application

import (
	"math/big"
	"strings"

	"txdash/internal/domain"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the exponent between base units and the display unit.
const NativeDecimals = 18

// MaxDecimals bounds the configurable display exponent.
const MaxDecimals = 36

var (
	valuePalette = []string{"#3B82F6", "#60A5FA", "#93C5FD", "#BFDBFE", "#DBEAFE"}
	gasPalette   = []string{"#10B981", "#34D399", "#6EE7B7"}
	typePalette  = []string{"#F59E0B", "#FBBF24", "#FCD34D"}

	gasMediumFloor = decimal.RequireFromString("0.33")
	gasHighFloor   = decimal.RequireFromString("0.66")
)

// Value bucket keys, in chart order.
const (
	ValueZero   = "zero"
	ValueMicro  = "micro"
	ValueSmall  = "small"
	ValueMedium = "medium"
	ValueLarge  = "large"
)

// Gas bucket keys, in chart order.
const (
	GasLow    = "Low"
	GasMedium = "Medium"
	GasHigh   = "High"
)

type valueRange struct {
	key   string
	label string
	upper decimal.Decimal
}

// Aggregator turns a fetched transaction list into chart buckets.
type Aggregator struct {
	symbol   string
	decimals int32
	ranges   []valueRange
}

// NewAggregator labels buckets with symbol and scales values by 10^decimals.
// Decimals outside 1..MaxDecimals fall back to NativeDecimals.
func NewAggregator(symbol string, decimals int) Aggregator {
	if symbol == "" {
		symbol = "CFX"
	}
	if decimals <= 0 || decimals > MaxDecimals {
		decimals = NativeDecimals
	}
	return Aggregator{
		symbol:   symbol,
		decimals: int32(decimals),
		ranges: []valueRange{
			{key: ValueMicro, label: "0-0.1 " + symbol, upper: decimal.New(1, -1)},
			{key: ValueSmall, label: "0.1-1 " + symbol, upper: decimal.New(1, 0)},
			{key: ValueMedium, label: "1-10 " + symbol, upper: decimal.New(10, 0)},
		},
	}
}

// Summarize runs all three distributions over txs.
func (a Aggregator) Summarize(txs []domain.Transaction) domain.Summary {
	return domain.Summary{
		Value: a.ValueDistribution(txs),
		Gas:   a.GasDistribution(txs),
		Type:  a.TypeDistribution(txs),
	}
}

// ValueDistribution buckets transactions by their value in display units.
func (a Aggregator) ValueDistribution(txs []domain.Transaction) []domain.ChartBucket {
	keys := []string{ValueZero}
	labels := []string{"0 " + a.symbol}
	for _, r := range a.ranges {
		keys = append(keys, r.key)
		labels = append(labels, r.label)
	}
	keys = append(keys, ValueLarge)
	labels = append(labels, "10+ "+a.symbol)

	counts := make(map[string]int, len(keys))
	for _, tx := range txs {
		counts[a.valueBucket(tx.Value)]++
	}
	return buildBuckets(keys, labels, counts, valuePalette)
}

func (a Aggregator) valueBucket(raw string) string {
	value, ok := ToDisplayUnits(raw, a.decimals)
	if !ok {
		// Unparseable values fail every range test and land in the open-ended bucket.
		return ValueLarge
	}
	if value.IsZero() {
		return ValueZero
	}
	for _, r := range a.ranges {
		if value.LessThanOrEqual(r.upper) {
			return r.key
		}
	}
	return ValueLarge
}

// GasDistribution buckets transactions by gas price normalized to the
// observed min/max of the set. A set with a single distinct price is all Low,
// and so is any set holding an unparseable price.
func (a Aggregator) GasDistribution(txs []domain.Transaction) []domain.ChartBucket {
	keys := []string{GasLow, GasMedium, GasHigh}
	counts := make(map[string]int, len(keys))

	prices := make([]decimal.Decimal, len(txs))
	var minPrice, maxPrice decimal.Decimal
	poisoned := false
	for i, tx := range txs {
		price, ok := ParseBaseUnits(tx.GasPrice)
		if !ok {
			poisoned = true
			continue
		}
		prices[i] = price
		if i == 0 {
			minPrice, maxPrice = price, price
			continue
		}
		minPrice = decimal.Min(minPrice, price)
		maxPrice = decimal.Max(maxPrice, price)
	}
	spread := maxPrice.Sub(minPrice)
	if poisoned {
		spread = decimal.Zero
	}

	for _, price := range prices {
		normalized := decimal.Zero
		if spread.IsPositive() {
			normalized = price.Sub(minPrice).Div(spread)
		}
		switch {
		case normalized.LessThan(gasMediumFloor):
			counts[GasLow]++
		case normalized.LessThan(gasHighFloor):
			counts[GasMedium]++
		default:
			counts[GasHigh]++
		}
	}
	return buildBuckets(keys, keys, counts, gasPalette)
}

// TypeDistribution buckets transactions by Classify.
func (a Aggregator) TypeDistribution(txs []domain.Transaction) []domain.ChartBucket {
	kinds := []domain.TxKind{domain.KindContractCall, domain.KindValueTransfer, domain.KindFailed}
	keys := make([]string, len(kinds))
	for i, kind := range kinds {
		keys[i] = kind.String()
	}
	counts := make(map[string]int, len(keys))
	for _, tx := range txs {
		counts[Classify(tx).String()]++
	}
	return buildBuckets(keys, keys, counts, typePalette)
}

type kindRule struct {
	kind  domain.TxKind
	match func(domain.Transaction) bool
}

// kindRules is evaluated in order; the first match wins.
var kindRules = []kindRule{
	{kind: domain.KindFailed, match: domain.Transaction.Failed},
	{kind: domain.KindContractCall, match: domain.Transaction.HasPayload},
	{kind: domain.KindValueTransfer, match: func(domain.Transaction) bool { return true }},
}

// Classify returns the transaction kind by the first matching rule.
func Classify(tx domain.Transaction) domain.TxKind {
	for _, rule := range kindRules {
		if rule.match(tx) {
			return rule.kind
		}
	}
	return domain.KindValueTransfer
}

// ToDisplayUnits converts a base-unit integer string into display units.
func ToDisplayUnits(raw string, decimals int32) (decimal.Decimal, bool) {
	value, ok := ParseBaseUnits(raw)
	if !ok {
		return decimal.Zero, false
	}
	return value.Shift(-decimals), true
}

// ParseBaseUnits reads the leading integer of raw. Leading whitespace and a
// sign are skipped, a 0x prefix switches to hex, and parsing stops at the
// first character that is not a digit. It reports false when no digit is found.
func ParseBaseUnits(raw string) (decimal.Decimal, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	base, isDigit := 10, isDecimalDigit
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHexDigit
		s = s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return decimal.Zero, false
	}
	n, ok := new(big.Int).SetString(s[:end], base)
	if !ok {
		return decimal.Zero, false
	}
	if negative {
		n.Neg(n)
	}
	return decimal.NewFromBigInt(n, 0), true
}

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDecimalDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func buildBuckets(keys, labels []string, counts map[string]int, palette []string) []domain.ChartBucket {
	buckets := make([]domain.ChartBucket, 0, len(keys))
	for i, key := range keys {
		buckets = append(buckets, domain.ChartBucket{
			Key:   key,
			Label: labels[i],
			Count: counts[key],
			Color: palette[i%len(palette)],
		})
	}
	return buckets
}
