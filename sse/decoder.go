package sse

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Event is one dispatched Server-Sent Event.
type Event struct {
	Name  string
	Data  string
	ID    string
	Retry int // milliseconds; zero if the stream never set it
}

// HasContent reports whether the event carries a name or any data —
// the dispatch condition from spec §4.1 ("an empty line dispatches the
// pending event if it has any data or event name; else it is
// discarded").
func (e Event) HasContent() bool {
	return e.Name != "" || e.Data != ""
}

// Decoder incrementally decodes an SSE byte stream. Feed is safe to
// call with byte-at-a-time chunks or whole buffers; both yield the
// same sequence of dispatched events.
type Decoder struct {
	buf     []byte
	pending Event
}

// NewDecoder returns an empty Decoder ready to receive Feed calls.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the internal buffer, consumes every complete
// line it can find, and returns any events dispatched as a result.
// Bytes that form an incomplete trailing line are retained for the
// next call.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf = append(d.buf, chunk...)
	var events []Event
	for {
		line, rest, ok := cutLine(d.buf, false)
		if !ok {
			break
		}
		d.buf = rest
		if ev, dispatched := d.processLine(line); dispatched {
			events = append(events, ev)
		}
	}
	return events
}

// Close flushes any buffered partial line and, per spec, dispatches a
// final non-empty pending event at end-of-stream.
func (d *Decoder) Close() []Event {
	var events []Event
	for len(d.buf) > 0 {
		line, rest, ok := cutLine(d.buf, true)
		if !ok {
			// No terminator at all in a forced flush means the whole
			// remaining buffer is the last (unterminated) line.
			line, rest = d.buf, nil
		}
		d.buf = rest
		if ev, dispatched := d.processLine(line); dispatched {
			events = append(events, ev)
		}
	}
	if d.pending.HasContent() {
		events = append(events, d.pending)
	}
	d.pending = Event{}
	return events
}

// cutLine finds the next line terminator in buf, tolerating \n, \r\n,
// and a lone \r. When force is true, a trailing lone \r at the very
// end of buf (which could otherwise still turn out to be \r\n once
// more bytes arrive) is treated as a terminator too.
func cutLine(buf []byte, force bool) (line, rest []byte, ok bool) {
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
			return buf[:i], buf[i+1:], true
		case '\r':
			if i+1 < len(buf) {
				if buf[i+1] == '\n' {
					return buf[:i], buf[i+2:], true
				}
				return buf[:i], buf[i+1:], true
			}
			if force {
				return buf[:i], buf[i+1:], true
			}
			return nil, buf, false
		}
	}
	return nil, buf, false
}

// processLine applies one SSE line to the pending event. It returns
// the dispatched event (and true) when line is an empty dispatch
// line with content; otherwise it returns false.
func (d *Decoder) processLine(line []byte) (Event, bool) {
	if !utf8.Valid(line) {
		// Malformed UTF-8 within a line discards that line only.
		return Event{}, false
	}

	if len(line) == 0 {
		dispatch := d.pending.HasContent()
		ev := d.pending
		d.pending = Event{}
		if dispatch {
			return ev, true
		}
		return Event{}, false
	}

	s := string(line)
	if strings.HasPrefix(s, ":") {
		return Event{}, false
	}

	field, value := s, ""
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		field, value = s[:idx], s[idx+1:]
		if strings.HasPrefix(value, " ") {
			value = value[1:]
		}
	}

	switch field {
	case "event":
		d.pending.Name = value
	case "data":
		if d.pending.Data == "" {
			d.pending.Data = value
		} else {
			d.pending.Data += "\n" + value
		}
	case "id":
		if !strings.ContainsRune(value, 0) {
			d.pending.ID = value
		}
	case "retry":
		if ms, err := strconv.Atoi(value); err == nil {
			d.pending.Retry = ms
		}
	}
	return Event{}, false
}
