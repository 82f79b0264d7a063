package goSecure

import (
	"context"
	"testing"
)

// gatedSink blocks every Emit until release is closed, simulating a slow
// downstream consumer.
type gatedSink struct {
	release chan struct{}
	events  chan AuditEvent
}

func newGatedSink() *gatedSink {
	return &gatedSink{
		release: make(chan struct{}),
		events:  make(chan AuditEvent, 64),
	}
}

func (s *gatedSink) Emit(_ context.Context, event AuditEvent) {
	<-s.release
	s.events <- event
}

func TestDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled config produced a dispatcher")
	}
	// Nil receivers are safe on every method.
	d.Emit(context.Background(), AuditEvent{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 || d.DroppedByEvent() != nil {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestDispatcherDropAccountingByEventType(t *testing.T) {
	sink := newGatedSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		d.Emit(ctx, AuditEvent{EventType: auditEventTokenIssued})
	}
	for i := 0; i < 4; i++ {
		d.Emit(ctx, AuditEvent{EventType: auditEventStateReplay})
	}

	// The consumer holds at most one event and the buffer one more, so at
	// least six of the eight emits were shed.
	if got := d.Dropped(); got < 6 {
		t.Fatalf("dropped = %d, want at least 6", got)
	}

	byEvent := d.DroppedByEvent()
	var total uint64
	for _, count := range byEvent {
		total += count
	}
	if total != d.Dropped() {
		t.Fatalf("per-event drops sum to %d, total is %d", total, d.Dropped())
	}
	if byEvent[auditEventStateReplay] < 3 {
		t.Fatalf("per-event drops = %v", byEvent)
	}

	close(sink.release)
	d.Close()
}

func TestDispatcherStampsContextAttributes(t *testing.T) {
	sink := NewChannelSink(4)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, sink)

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	ctx = WithUserAgent(ctx, "agent/1.0")
	d.Emit(ctx, AuditEvent{EventType: auditEventTokenIssued})
	d.Close()

	event := <-sink.Events()
	if event.IP != "203.0.113.7" {
		t.Fatalf("ip = %q", event.IP)
	}
	if event.UserAgent != "agent/1.0" {
		t.Fatalf("user agent = %q", event.UserAgent)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("timestamp not stamped")
	}
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16}, sink)

	ctx := context.Background()
	for i := 0; i < 8; i++ {
		d.Emit(ctx, AuditEvent{EventType: auditEventTokenVerified})
	}
	d.Close()

	received := 0
	for {
		select {
		case <-sink.Events():
			received++
			continue
		default:
		}
		break
	}
	if received != 8 {
		t.Fatalf("received %d events after close, want 8", received)
	}
	if d.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", d.Dropped())
	}
}
