package domain

// Transaction is one historical transfer or call as reported by the explorer.
// Numeric fields keep the explorer's textual encoding.
type Transaction struct {
	BlockNumber  string `json:"blockNumber"`
	Timestamp    string `json:"timeStamp"`
	Hash         string `json:"hash"`
	BlockHash    string `json:"blockHash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	GasPrice     string `json:"gasPrice"`
	Gas          string `json:"gas"`
	IsError      string `json:"isError"`
	Input        string `json:"input"`
	FunctionName string `json:"functionName"`
}

// EmptyInput is the hex marker explorers use for a call without payload.
const EmptyInput = "0x"

// Failed reports whether the explorer flagged the transaction as reverted.
func (t Transaction) Failed() bool {
	return t.IsError == "1"
}

// HasPayload reports whether the transaction carries call data.
func (t Transaction) HasPayload() bool {
	return t.Input != "" && len(t.Input) > len(EmptyInput) && t.Input != EmptyInput
}
