// Package mllp implements the Minimal Lower Layer Protocol framing used to
// carry HL7 messages over TCP, plus a client and a listening server.
package mllp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// MLLP envelope: <VT> payload <FS><CR>
const (
	startBlock     byte = 0x0B
	endBlock       byte = 0x1C
	carriageReturn byte = 0x0D
)

// maxFrameSize bounds a single framed message; HL7 messages this size are
// malformed or hostile.
const maxFrameSize = 1 << 20

// WriteFrame writes one MLLP-framed payload.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 0, len(payload)+3)
	buf = append(buf, startBlock)
	buf = append(buf, payload...)
	buf = append(buf, endBlock, carriageReturn)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write mllp frame: %w", err)
	}
	return nil
}

// ReadFrame reads one MLLP-framed payload, skipping any bytes before the
// start-of-block marker.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read mllp start block: %w", err)
		}
		if b == startBlock {
			break
		}
	}

	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read mllp payload: %w", err)
		}

		buf.WriteByte(b)
		if buf.Len() > maxFrameSize {
			return nil, fmt.Errorf("mllp frame exceeds %d bytes", maxFrameSize)
		}

		if b == carriageReturn && buf.Len() >= 2 && buf.Bytes()[buf.Len()-2] == endBlock {
			return buf.Bytes()[:buf.Len()-2], nil
		}
	}
}
