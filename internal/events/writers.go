package events

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// LogWriter logs every event through zap.
type LogWriter struct{}

func (l *LogWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	zap.S().Named("event_writer").Infow("event published",
		"topic", topic,
		"type", e.Type(),
		"id", e.ID(),
		"data", string(e.Data()),
	)
	return nil
}

func (l *LogWriter) Close(_ context.Context) error {
	return nil
}

// StreamWriter writes every event as one structured-mode JSON line.
type StreamWriter struct {
	lock sync.Mutex
	enc  *json.Encoder
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{enc: json.NewEncoder(w)}
}

func (s *StreamWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.enc.Encode(e)
}

func (s *StreamWriter) Close(_ context.Context) error {
	return nil
}
