package httpapi

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"txdash/internal/application"
	"txdash/internal/domain"
)

const (
	pieCenter    = 50.0
	pieRadius    = 40.0
	donutCircum  = 283.0
	minBarHeight = 5.0
)

type pageView struct {
	Title   string
	Symbol  string
	Wallet  walletView
	Input   string
	Error   string
	Loading bool
	Alerts  []string

	HasResults bool
	Rows       []txRow
	ValuePie   pieChart
	GasBars    []barItem
	TypeDonuts []donutItem
}

type walletView struct {
	Connected   bool
	Address     string
	Short       string
	Balance     string
	AddressLink string
}

type txRow struct {
	Block     string
	Time      string
	Hash      string
	HashLink  string
	BlockHash string
	From      string
	To        string
	Value     string
	GasPrice  string
	Kind      string
}

type legendItem struct {
	Label string
	Count int
	Color string
}

type pieSlice struct {
	Path  string
	Color string
	Full  bool
}

type pieChart struct {
	Slices []pieSlice
	Legend []legendItem
}

type barItem struct {
	Label  string
	Count  int
	Color  string
	Height float64
}

type donutItem struct {
	Label   string
	Count   int
	Color   string
	Percent int
	Dash    string
}

// viewFormatter renders raw explorer strings for display.
type viewFormatter struct {
	decimals int32
	loc      *time.Location
	links    LinkBuilder
}

func (f viewFormatter) rows(txs []domain.Transaction) []txRow {
	rows := make([]txRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, txRow{
			Block:     tx.BlockNumber,
			Time:      f.date(tx.Timestamp),
			Hash:      truncateHash(tx.Hash),
			HashLink:  f.links.TxLink(tx.Hash),
			BlockHash: truncateHash(tx.BlockHash),
			From:      truncateHash(tx.From),
			To:        truncateHash(tx.To),
			Value:     f.value(tx.Value),
			GasPrice:  tx.GasPrice,
			Kind:      application.Classify(tx).String(),
		})
	}
	return rows
}

func (f viewFormatter) date(raw string) string {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "-"
	}
	return time.Unix(seconds, 0).In(f.loc).Format("2006-01-02 15:04:05")
}

func (f viewFormatter) value(raw string) string {
	amount, ok := application.ToDisplayUnits(raw, f.decimals)
	if !ok {
		return "-"
	}
	return amount.StringFixed(6)
}

// truncateHash keeps the first six and last four characters.
func truncateHash(hash string) string {
	if len(hash) <= 10 {
		return hash
	}
	return hash[:6] + "..." + hash[len(hash)-4:]
}

func buildPie(buckets []domain.ChartBucket) pieChart {
	chart := pieChart{Legend: legend(buckets)}
	total := domain.Total(buckets)
	if total == 0 {
		return chart
	}
	start := 0.0
	for _, bucket := range buckets {
		if bucket.Count == 0 {
			continue
		}
		angle := float64(bucket.Count) / float64(total) * 360
		if bucket.Count == total {
			chart.Slices = append(chart.Slices, pieSlice{Color: bucket.Color, Full: true})
			break
		}
		chart.Slices = append(chart.Slices, pieSlice{Path: arcPath(start, angle), Color: bucket.Color})
		start += angle
	}
	return chart
}

// arcPath draws a wedge starting at 12 o'clock plus start degrees, clockwise.
func arcPath(start, angle float64) string {
	startRad := (start - 90) * math.Pi / 180
	endRad := (start + angle - 90) * math.Pi / 180
	x1 := pieCenter + pieRadius*math.Cos(startRad)
	y1 := pieCenter + pieRadius*math.Sin(startRad)
	x2 := pieCenter + pieRadius*math.Cos(endRad)
	y2 := pieCenter + pieRadius*math.Sin(endRad)
	largeArc := 0
	if angle > 180 {
		largeArc = 1
	}
	return fmt.Sprintf("M 50 50 L %.2f %.2f A 40 40 0 %d 1 %.2f %.2f Z", x1, y1, largeArc, x2, y2)
}

func buildBars(buckets []domain.ChartBucket) []barItem {
	total := domain.Total(buckets)
	bars := make([]barItem, 0, len(buckets))
	for _, bucket := range buckets {
		bars = append(bars, barItem{
			Label:  bucket.Label,
			Count:  bucket.Count,
			Color:  bucket.Color,
			Height: math.Max(percent(bucket.Count, total), minBarHeight),
		})
	}
	return bars
}

func buildDonuts(buckets []domain.ChartBucket) []donutItem {
	total := domain.Total(buckets)
	donuts := make([]donutItem, 0, len(buckets))
	for _, bucket := range buckets {
		pct := int(math.Round(percent(bucket.Count, total)))
		donuts = append(donuts, donutItem{
			Label:   bucket.Label,
			Count:   bucket.Count,
			Color:   bucket.Color,
			Percent: pct,
			Dash:    fmt.Sprintf("%.2f %.0f", float64(pct)*donutCircum/100, donutCircum),
		})
	}
	return donuts
}

func legend(buckets []domain.ChartBucket) []legendItem {
	items := make([]legendItem, 0, len(buckets))
	for _, bucket := range buckets {
		items = append(items, legendItem{Label: bucket.Label, Count: bucket.Count, Color: bucket.Color})
	}
	return items
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
