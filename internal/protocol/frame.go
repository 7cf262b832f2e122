// Package protocol implements the bot wire format: a 4-byte big-endian
// length followed by that many bytes of UTF-8 JSON. Each connection carries
// exactly one request frame and at most one reply frame.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest payload accepted from a peer (1 MiB)
const MaxFrameSize = 1 << 20

const headerSize = 4

var (
	// ErrProtocol means the stream ended before a complete frame arrived
	ErrProtocol = errors.New("protocol error")

	// ErrMessageTooLarge means the declared length exceeds MaxFrameSize
	ErrMessageTooLarge = errors.New("message too large")

	// ErrParse means the frame body is not valid JSON for the target type
	ErrParse = errors.New("parse error")

	// ErrTransport means the frame could not be written in full
	ErrTransport = errors.New("transport error")
)

// ReadFrame reads one frame from r and decodes its JSON body into v. The
// body is never read when the declared length is over MaxFrameSize.
func ReadFrame(r io.Reader, v any) error {
	payload, err := readPayload(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

func readPayload(r io.Reader) ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrProtocol, err)
	}

	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes declared, limit %d", ErrMessageTooLarge, n, MaxFrameSize)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: reading %d byte body: %v", ErrProtocol, n, err)
	}
	return payload, nil
}

// Encode returns the framed JSON encoding of v. Invalid UTF-8 in strings is
// replaced with U+FFFD by the JSON encoder rather than rejected.
func Encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	frame := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[headerSize:], payload)
	return frame, nil
}

// WriteFrame writes v to w as a single frame.
func WriteFrame(w io.Writer, v any) error {
	frame, err := Encode(v)
	if err != nil {
		return err
	}
	n, err := w.Write(frame)
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d bytes: %v", ErrTransport, n, len(frame), err)
	}
	if n != len(frame) {
		return fmt.Errorf("%w: short write, %d of %d bytes", ErrTransport, n, len(frame))
	}
	return nil
}
