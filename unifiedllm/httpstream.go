package unifiedllm

import (
	"io"

	"github.com/coderunner/agentcore/sse"
)

// readSSE drains body through an sse.Decoder and delivers each
// dispatched sse.Event to onEvent in order. It stops at EOF, a read
// error, or the first time onEvent returns a non-nil error (the
// adapters return one after a terminal error frame).
func readSSE(body io.Reader, onEvent func(sse.Event) error) error {
	dec := sse.NewDecoder()
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				if cbErr := onEvent(ev); cbErr != nil {
					return cbErr
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				for _, ev := range dec.Close() {
					if cbErr := onEvent(ev); cbErr != nil {
						return cbErr
					}
				}
				return nil
			}
			return err
		}
	}
}
