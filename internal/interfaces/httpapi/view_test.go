package httpapi

import (
	"testing"
	"time"

	"txdash/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateHash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0x1234567890abcdef", want: "0x1234...cdef"},
		{in: "0x12345678", want: "0x12345678"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateHash(tt.in))
		})
	}
}

func TestViewFormatter(t *testing.T) {
	f := viewFormatter{decimals: 18, loc: time.UTC, links: fakeLinks{}}

	assert.Equal(t, "2023-11-14 22:13:20", f.date("1700000000"))
	assert.Equal(t, "-", f.date("soon"))

	assert.Equal(t, "0.000000", f.value("0"))
	assert.Equal(t, "1.500000", f.value("1500000000000000000"))
	assert.Equal(t, "0.000001", f.value("1000000000000"))
	assert.Equal(t, "-", f.value("abc"))
	assert.Equal(t, "0.000000", f.value(" 5"))

	sixDecimals := viewFormatter{decimals: 6, loc: time.UTC, links: fakeLinks{}}
	assert.Equal(t, "2.500000", sixDecimals.value("2500000"))

	rows := f.rows([]domain.Transaction{{BlockNumber: "7", Hash: "0xabcdef1234567890", IsError: "1", Value: "0"}})
	require.Len(t, rows, 1)
	assert.Equal(t, "https://scan.test/tx/0xabcdef1234567890", rows[0].HashLink)
	assert.Equal(t, "Failed Transaction", rows[0].Kind)
}

func TestBuildPie(t *testing.T) {
	t.Run("half and half", func(t *testing.T) {
		chart := buildPie([]domain.ChartBucket{
			{Key: "zero", Count: 1, Color: "#3B82F6"},
			{Key: "micro", Count: 0, Color: "#60A5FA"},
			{Key: "small", Count: 1, Color: "#93C5FD"},
		})
		require.Len(t, chart.Slices, 2)
		assert.Equal(t, "M 50 50 L 50.00 10.00 A 40 40 0 0 1 50.00 90.00 Z", chart.Slices[0].Path)
		assert.Equal(t, "M 50 50 L 50.00 90.00 A 40 40 0 0 1 50.00 10.00 Z", chart.Slices[1].Path)
		assert.Len(t, chart.Legend, 3)
	})

	t.Run("large arc", func(t *testing.T) {
		chart := buildPie([]domain.ChartBucket{{Count: 3}, {Count: 1}})
		require.Len(t, chart.Slices, 2)
		assert.Contains(t, chart.Slices[0].Path, "A 40 40 0 1 1")
		assert.Contains(t, chart.Slices[1].Path, "A 40 40 0 0 1")
	})

	t.Run("single bucket is a full circle", func(t *testing.T) {
		chart := buildPie([]domain.ChartBucket{{Count: 0}, {Count: 4, Color: "#60A5FA"}})
		require.Len(t, chart.Slices, 1)
		assert.True(t, chart.Slices[0].Full)
		assert.Equal(t, "#60A5FA", chart.Slices[0].Color)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, buildPie([]domain.ChartBucket{{Count: 0}}).Slices)
	})
}

func TestBuildBars(t *testing.T) {
	bars := buildBars([]domain.ChartBucket{{Label: "Low", Count: 19}, {Label: "Medium", Count: 1}, {Label: "High", Count: 0}})
	require.Len(t, bars, 3)
	assert.InDelta(t, 95.0, bars[0].Height, 1e-9)
	assert.InDelta(t, 5.0, bars[1].Height, 1e-9)
	assert.InDelta(t, 5.0, bars[2].Height, 1e-9)
}

func TestBuildDonuts(t *testing.T) {
	donuts := buildDonuts([]domain.ChartBucket{{Label: "Contract Call", Count: 2}, {Label: "Value Transfer", Count: 1}, {Label: "Failed Transaction", Count: 0}})
	require.Len(t, donuts, 3)
	assert.Equal(t, 67, donuts[0].Percent)
	assert.Equal(t, "189.61 283", donuts[0].Dash)
	assert.Equal(t, 33, donuts[1].Percent)
	assert.Equal(t, 0, donuts[2].Percent)
	assert.Equal(t, "0.00 283", donuts[2].Dash)
}
