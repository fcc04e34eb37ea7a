package domain

// ChartBucket is one category of a summary chart.
type ChartBucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Summary holds the three independent distributions derived from one fetch.
type Summary struct {
	Value []ChartBucket `json:"value"`
	Gas   []ChartBucket `json:"gas"`
	Type  []ChartBucket `json:"type"`
}

// Total returns the sum of counts across buckets.
func Total(buckets []ChartBucket) int {
	total := 0
	for _, bucket := range buckets {
		total += bucket.Count
	}
	return total
}
