// Package queue carries upload notifications from the ingress surface to
// the pipeline worker.
package queue

import "context"

// UploadEvent announces that a receipt document landed in the bucket. The
// payload mirrors the object-finalize notification: it names the object,
// nothing more.
type UploadEvent struct {
	Bucket     string `json:"bucket"`
	ObjectPath string `json:"object_path"`
}

// Handler processes one upload event. A returned error is logged by the
// consumer; delivery is at least once and the pipeline is idempotent, so
// handlers must tolerate redelivery.
type Handler func(ctx context.Context, evt UploadEvent) error

// Publisher enqueues upload events.
type Publisher interface {
	Publish(ctx context.Context, evt UploadEvent) error
	Close() error
}

// Consumer delivers upload events to a handler until the context is
// cancelled, then drains in-flight work before returning.
type Consumer interface {
	Subscribe(ctx context.Context, handler Handler) error
}
