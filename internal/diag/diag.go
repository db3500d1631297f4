// Package diag carries the soft-failure diagnostics of a parse. A diagnostic
// never aborts a parse; it only tells observers which unit was dropped.
package diag

import (
	"fmt"

	"github.com/dsabanin/pygmentskit/internal/pubsub"
)

// Stage names the pipeline stage that dropped a unit.
type Stage string

const (
	StageDecode Stage = "decode"
	StageRanges Stage = "ranges"
	StageEngine Stage = "engine"
)

// Reason classifies why a unit was dropped.
type Reason string

const (
	ReasonUndecodableOutput Reason = "undecodable_output"
	ReasonFieldCount        Reason = "field_count"
	ReasonUnknownKind       Reason = "unknown_kind"
	ReasonPayloadLength     Reason = "payload_length"
	ReasonHexDigit          Reason = "hex_digit"
	ReasonInvalidUTF8       Reason = "invalid_utf8"
	ReasonUnmatched         Reason = "unmatched"
	ReasonTruncated         Reason = "truncated"
	ReasonEngineFailed      Reason = "engine_failed"
)

// Diagnostic describes one dropped unit.
type Diagnostic struct {
	Stage  Stage
	Reason Reason
	// Line is the 1-based protocol line for decode diagnostics, or the
	// 0-based token index for range diagnostics.
	Line int
	Text string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s at %d: %q", d.Stage, d.Reason, d.Line, d.Text)
}

// Sink receives diagnostics synchronously, inline with the parse.
type Sink func(Diagnostic)

// Emit calls s when it is non-nil.
func (s Sink) Emit(d Diagnostic) {
	if s != nil {
		s(d)
	}
}

// Tee returns a Sink that forwards to every non-nil sink.
func Tee(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(d Diagnostic) {
		for _, s := range live {
			s(d)
		}
	}
}

// Publish returns a Sink that publishes every diagnostic on p. Fatal engine
// failures are published as pubsub.FailedEvent, everything else as
// pubsub.DroppedEvent.
func Publish(p pubsub.Publisher[Diagnostic]) Sink {
	return func(d Diagnostic) {
		eventType := pubsub.DroppedEvent
		if d.Reason == ReasonEngineFailed {
			eventType = pubsub.FailedEvent
		}
		p.Publish(eventType, d)
	}
}

// Collector accumulates diagnostics. Not safe for concurrent use, which the
// synchronous pipeline never needs.
type Collector struct {
	Items []Diagnostic
}

// Sink returns a Sink appending to c.
func (c *Collector) Sink() Sink {
	return func(d Diagnostic) { c.Items = append(c.Items, d) }
}

// Count returns how many collected diagnostics have the given reason.
func (c *Collector) Count(r Reason) int {
	n := 0
	for _, d := range c.Items {
		if d.Reason == r {
			n++
		}
	}
	return n
}
