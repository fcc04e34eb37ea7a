package streaming

import (
	"encoding/json"
	"errors"
	"time"
)

type MessageType string

const (
	MessageTypeFetch       MessageType = "fetch"
	MessageTypeFetchFailed MessageType = "fetch_failed"
)

// BucketCount is a flattened chart bucket.
type BucketCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type Message struct {
	Type       MessageType   `json:"type"`
	ChainID    uint64        `json:"chain_id"`
	TraceID    string        `json:"trace_id,omitempty"`
	Address    string        `json:"address"`
	Count      int           `json:"count"`
	Values     []BucketCount `json:"values,omitempty"`
	GasPrices  []BucketCount `json:"gas_prices,omitempty"`
	Kinds      []BucketCount `json:"kinds,omitempty"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func Encode(msg Message) ([]byte, error) {
	if msg.Type == "" {
		return nil, errors.New("message type is required")
	}
	if msg.Address == "" {
		return nil, errors.New("address is required")
	}
	return json.Marshal(msg)
}

func decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" {
		return Message{}, errors.New("message type is missing")
	}
	if msg.Address == "" {
		return Message{}, errors.New("address is missing")
	}
	return msg, nil
}
