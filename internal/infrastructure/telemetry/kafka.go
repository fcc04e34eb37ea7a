package telemetry

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// headerCarrier adapts kafka message headers to a propagation.TextMapCarrier.
// Header keys match case-insensitively.
type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) index(key string) int {
	for i := range c.headers {
		if strings.EqualFold(c.headers[i].Key, key) {
			return i
		}
	}
	return -1
}

func (c *headerCarrier) Get(key string) string {
	if i := c.index(key); i >= 0 {
		return string(c.headers[i].Value)
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	if i := c.index(key); i >= 0 {
		c.headers[i].Value = []byte(value)
		return
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, len(c.headers))
	for i, header := range c.headers {
		keys[i] = header.Key
	}
	return keys
}

// InjectKafkaHeaders writes the trace context of ctx into headers.
func InjectKafkaHeaders(ctx context.Context, headers *[]kafka.Header) {
	carrier := &headerCarrier{headers: *headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	*headers = carrier.headers
}
