package stream

import (
	"strings"
)

const (
	// DefaultEventType is used for frames without an "event:" line.
	DefaultEventType = "message"

	frameSeparator = "\n\n"
	eventPrefix    = "event:"
	dataPrefix     = "data:"
)

// Event is a single framed server-sent event.
type Event struct {
	Type string
	Data string
}

// ParseFrame extracts an [Event] from one complete frame (the text between two blank-line separators).
//
// Returns false for blank frames. Only the last "data:" line of a frame is kept.
func ParseFrame(frame string) (Event, bool) {
	if strings.TrimSpace(frame) == "" {
		return Event{}, false
	}

	ev := Event{Type: DefaultEventType}
	for _, line := range strings.Split(frame, "\n") {
		switch {
		case strings.HasPrefix(line, eventPrefix):
			ev.Type = strings.TrimSpace(line[len(eventPrefix):])
		case strings.HasPrefix(line, dataPrefix):
			ev.Data = strings.TrimSpace(line[len(dataPrefix):])
		}
	}
	return ev, true
}

// Framer reassembles events from arbitrarily chunked stream bytes.
//
// It owns the decoder state and the buffer of decoded text that has not yet formed a complete frame.
type Framer struct {
	dec *Decoder
	buf string
}

// NewFramer returns a [Framer] with an empty buffer.
func NewFramer() *Framer {
	return &Framer{dec: NewDecoder()}
}

// Feed decodes chunk, appends it to the buffer and returns every event completed by it, in stream order.
//
// A decode error is returned alongside whatever events could still be framed.
func (f *Framer) Feed(chunk []byte) ([]Event, error) {
	text, err := f.dec.Decode(chunk)
	f.buf += text

	parts := strings.Split(f.buf, frameSeparator)
	f.buf = parts[len(parts)-1]

	var events []Event
	for _, frame := range parts[:len(parts)-1] {
		if ev, ok := ParseFrame(frame); ok {
			events = append(events, ev)
		}
	}
	return events, err
}

// Buffered returns the decoded text still waiting for a frame separator.
func (f *Framer) Buffered() string {
	return f.buf
}

// Reset finalizes the decoder and discards the buffer, returning whatever incomplete text was dropped.
func (f *Framer) Reset() string {
	tail, _ := f.dec.Flush()
	dropped := f.buf + tail
	f.buf = ""
	return dropped
}
