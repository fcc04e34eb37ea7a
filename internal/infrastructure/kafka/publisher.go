package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"txdash/internal/application"
	"txdash/internal/domain"
	"txdash/internal/infrastructure/telemetry"
	"txdash/internal/streaming"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTopic = "txdash-fetches"

type PublisherConfig struct {
	Brokers []string
	Topic   string
	ChainID uint64
}

// Publisher streams fetch outcomes to kafka.
type Publisher struct {
	writer  *kafka.Writer
	topic   string
	chainID uint64
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = defaultTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 500 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Warn("fetch event delivery failed", "messages", len(messages), "err", err)
			}
		},
	}
	return &Publisher{writer: writer, topic: cfg.Topic, chainID: cfg.ChainID}, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ application.EventPublisher = (*Publisher)(nil)

func (p *Publisher) PublishFetch(ctx context.Context, event application.FetchEvent) error {
	ctx, span := otel.Tracer("txdash/kafka").Start(seedTrace(ctx), "fetcher.publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("address", event.Address),
		attribute.Int("tx.count", event.Count),
		attribute.String("messaging.destination", p.topic),
	)

	msg, err := p.buildMessage(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (p *Publisher) buildMessage(ctx context.Context, event application.FetchEvent) (kafka.Message, error) {
	traceIDHex := ""
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		traceIDHex = spanCtx.TraceID().String()
	} else if _, id, ok := telemetry.NewTraceID(); ok {
		traceIDHex = id
	}

	msg := streaming.Message{
		Type:       streaming.MessageTypeFetch,
		ChainID:    p.chainID,
		TraceID:    traceIDHex,
		Address:    event.Address,
		Count:      event.Count,
		Values:     flatten(event.Summary.Value),
		GasPrices:  flatten(event.Summary.Gas),
		Kinds:      flatten(event.Summary.Type),
		DurationMS: event.Duration.Milliseconds(),
		OccurredAt: time.Now().UTC(),
	}
	if event.Err != nil {
		msg.Type = streaming.MessageTypeFetchFailed
		msg.Error = event.Err.Error()
	}
	payload, err := streaming.Encode(msg)
	if err != nil {
		return kafka.Message{}, err
	}

	headers := make([]kafka.Header, 0, 2)
	telemetry.InjectKafkaHeaders(ctx, &headers)
	return kafka.Message{
		Topic:   p.topic,
		Key:     []byte(strings.ToLower(event.Address)),
		Value:   payload,
		Headers: headers,
	}, nil
}

// seedTrace gives ctx a fresh sampled trace when it carries none, so every message has a trace id.
func seedTrace(ctx context.Context) context.Context {
	if trace.SpanContextFromContext(ctx).IsValid() {
		return ctx
	}
	traceID, _, ok := telemetry.NewTraceID()
	if !ok {
		return ctx
	}
	spanCtx, ok := telemetry.NewSpanContext(traceID)
	if !ok {
		return ctx
	}
	return trace.ContextWithSpanContext(ctx, spanCtx)
}

func flatten(buckets []domain.ChartBucket) []streaming.BucketCount {
	if len(buckets) == 0 {
		return nil
	}
	out := make([]streaming.BucketCount, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, streaming.BucketCount{Key: bucket.Key, Count: bucket.Count})
	}
	return out
}
