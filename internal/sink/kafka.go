package sink

import (
	"context"

	"github.com/cockroachdb/errors"
	gojson "github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer used by Kafka.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka sends frame records as JSON messages keyed by profiler label, so
// frames of one profiler stay ordered within a partition.
type Kafka struct {
	Writer MessageWriter
}

func (s Kafka) Publish(ctx context.Context, r FrameRecord) error {
	b, err := gojson.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encoding frame record")
	}
	err = s.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.Profiler),
		Value: b,
		Time:  r.Timestamp,
	})
	if err != nil {
		return errors.Wrap(err, "writing frame record to kafka")
	}
	return nil
}
