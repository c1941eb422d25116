package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// queueGroup makes worker instances share the subject instead of each
// receiving every event.
const queueGroup = "workers"

// NATSQueue is the production Publisher and Consumer, backed by a core
// NATS subject.
type NATSQueue struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger
}

// NewNATSQueue connects to the NATS server. Connection loss is handled by
// the client's reconnect loop; events published while disconnected are
// buffered client-side.
func NewNATSQueue(url, subject string, log zerolog.Logger) (*NATSQueue, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("expense-pipeline"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSQueue{conn: conn, subject: subject, log: log}, nil
}

func (q *NATSQueue) Publish(ctx context.Context, evt UploadEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode upload event: %w", err)
	}
	if err := q.conn.Publish(q.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Subscribe blocks until ctx is cancelled, then drains the subscription so
// in-flight handlers finish before the worker exits.
func (q *NATSQueue) Subscribe(ctx context.Context, handler Handler) error {
	sub, err := q.conn.QueueSubscribe(q.subject, queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var evt UploadEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			q.log.Error().Err(err).Msg("discarding malformed upload event")
			return
		}
		if err := handler(ctx, evt); err != nil {
			q.log.Error().
				Err(err).
				Str("object", evt.ObjectPath).
				Msg("upload event handler failed")
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *NATSQueue) Close() error {
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
