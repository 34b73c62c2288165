package email

import (
	"context"
	"errors"
	"sync"
)

// ErrDeliveryFailed wraps transport-level send failures so callers can
// treat them as retryable without inspecting smtp internals.
var ErrDeliveryFailed = errors.New("delivery_failed")

// Message is a fully composed outbound mail.
type Message struct {
	To       []string
	Cc       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Provider sends mail. Send returns the generated Message-ID on success.
type Provider interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// NoOpProvider swallows mail. Used when SMTP is disabled.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) (string, error) {
	return "noop", nil
}

// CaptureProvider records sent messages for tests.
type CaptureProvider struct {
	mu   sync.Mutex
	Sent []Message

	// Fail makes every Send return ErrDeliveryFailed.
	Fail bool
}

func (p *CaptureProvider) Send(ctx context.Context, msg Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return "", ErrDeliveryFailed
	}
	p.Sent = append(p.Sent, msg)
	return "captured", nil
}

func (p *CaptureProvider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Sent)
}
