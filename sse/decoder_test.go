package sse

import (
	"reflect"
	"testing"
)

func decodeAll(t *testing.T, raw []byte) []Event {
	t.Helper()
	d := NewDecoder()
	events := d.Feed(raw)
	events = append(events, d.Close()...)
	return events
}

func TestDecoderBasicDispatch(t *testing.T) {
	raw := []byte("event: message\ndata: hello\n\n")
	got := decodeAll(t, raw)
	want := []Event{{Name: "message", Data: "hello"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecoderMultiLineDataAccumulates(t *testing.T) {
	raw := []byte("data: line1\ndata: line2\n\n")
	got := decodeAll(t, raw)
	if len(got) != 1 || got[0].Data != "line1\nline2" {
		t.Fatalf("got %+v, want single event with data %q", got, "line1\nline2")
	}
}

func TestDecoderCommentLinesIgnored(t *testing.T) {
	raw := []byte(":heartbeat\ndata: hi\n\n")
	got := decodeAll(t, raw)
	if len(got) != 1 || got[0].Data != "hi" {
		t.Fatalf("got %+v, want comment stripped and data %q", got, "hi")
	}
}

func TestDecoderEmptyLineWithNoContentDiscarded(t *testing.T) {
	raw := []byte(":comment only\n\ndata: real\n\n")
	got := decodeAll(t, raw)
	if len(got) != 1 || got[0].Data != "real" {
		t.Fatalf("got %+v, want exactly one dispatched event", got)
	}
}

func TestDecoderStripsSingleLeadingSpaceOnly(t *testing.T) {
	raw := []byte("data:  two spaces\n\n")
	got := decodeAll(t, raw)
	if len(got) != 1 || got[0].Data != " two spaces" {
		t.Fatalf("got %+v, want exactly one leading space stripped", got)
	}
}

func TestDecoderTolerantLineEndings(t *testing.T) {
	variants := [][]byte{
		[]byte("data: a\n\n"),
		[]byte("data: a\r\n\r\n"),
		[]byte("data: a\r\r"),
	}
	for _, raw := range variants {
		got := decodeAll(t, raw)
		if len(got) != 1 || got[0].Data != "a" {
			t.Fatalf("line ending variant %q: got %+v", raw, got)
		}
	}
}

func TestDecoderFlushesPendingAtEndOfStream(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("data: trailing, no blank line"))
	if len(events) != 0 {
		t.Fatalf("expected no dispatch before Close, got %+v", events)
	}
	events = d.Close()
	if len(events) != 1 || events[0].Data != "trailing, no blank line" {
		t.Fatalf("Close() = %+v, want one flushed event", events)
	}
}

func TestDecoderByteAtATimeMatchesWholeBuffer(t *testing.T) {
	raw := []byte("event: tool_call\ndata: {\"a\":1}\ndata: more\nid: 42\n\ndata: second\n\n")

	whole := decodeAll(t, raw)

	d := NewDecoder()
	var streamed []Event
	for i := range raw {
		streamed = append(streamed, d.Feed(raw[i:i+1])...)
	}
	streamed = append(streamed, d.Close()...)

	if !reflect.DeepEqual(whole, streamed) {
		t.Fatalf("byte-at-a-time decoding diverged:\nwhole:    %+v\nstreamed: %+v", whole, streamed)
	}
}

func TestDecoderMalformedUTF8DiscardsLineOnly(t *testing.T) {
	raw := []byte("data: good1\n")
	raw = append(raw, "data: "...)
	raw = append(raw, 0xff, 0xfe) // invalid UTF-8 sequence
	raw = append(raw, '\n')
	raw = append(raw, []byte("data: good2\n\n")...)

	got := decodeAll(t, raw)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1 (bad line discarded, good lines kept): %+v", len(got), got)
	}
	if got[0].Data != "good1\ngood2" {
		t.Fatalf("data = %q, want %q", got[0].Data, "good1\ngood2")
	}
}
