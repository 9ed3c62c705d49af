package goJWT

import (
	"context"
	"io"
	"time"

	"github.com/MrEthical07/goJWT/internal/audit"
)

// AuditEvent is one token lifecycle record.
type AuditEvent = audit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink writes audit events into a buffered channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// Audit event types.
const (
	AuditTokenSigned   = audit.EventTokenSigned
	AuditTokenDecoded  = audit.EventTokenDecoded
	AuditTokenRejected = audit.EventTokenRejected
)

// AuditConfig controls the audit dispatcher. DrainTimeout bounds how long
// Service.Close waits for the sink; zero means five seconds.
type AuditConfig struct {
	Enabled      bool
	BufferSize   int
	DropIfFull   bool
	DrainTimeout time.Duration
}

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *audit.Dispatcher {
	return audit.NewDispatcher(audit.Config{
		Enabled:      cfg.Enabled,
		BufferSize:   cfg.BufferSize,
		DropIfFull:   cfg.DropIfFull,
		DrainTimeout: cfg.DrainTimeout,
	}, sink)
}

// emitAudit records one event under the effective configuration of the call.
func (s *Service) emitAudit(ctx context.Context, eventType string, cfg Configuration, claims Claims, err error) {
	if s == nil || s.audit == nil {
		return
	}

	ev := AuditEvent{
		EventType: eventType,
		Algorithm: string(cfg.Algorithm),
		Issuer:    cfg.Issuer,
		Audience:  cfg.Audience,
		IP:        clientIPFromContext(ctx),
		RequestID: requestIDFromContext(ctx),
		Success:   err == nil,
	}
	if claims != nil {
		if sub, ok := claims["sub"]; ok {
			ev.Subject = stringify(sub)
		}
		if jti, ok := claims[cfg.JTIClaim]; ok {
			ev.TokenID = stringify(jti)
		}
	}
	if err != nil {
		ev.Error = err.Error()
	}

	s.audit.Emit(ctx, ev)
}
