package broadcast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

const (
	CompressionNone   = "none"
	CompressionBrotli = "brotli"

	HeaderContentType     = "content-type"
	HeaderContentEncoding = "content-encoding"
	HeaderEventID         = "event-id"
	HeaderEventKind       = "event-kind"
	HeaderBatchID         = "batch-id"
	HeaderSequence        = "sequence"

	contentTypeJSON  = "application/json"
	encodingBrotli   = "br"
	defaultThreshold = 1024
)

// Message is an encoded event ready for a transport.
type Message struct {
	Body    []byte
	Headers map[string]string
}

// Codec turns events into transport messages. Bodies at or above Threshold
// bytes are brotli-compressed when Compression is CompressionBrotli.
type Codec struct {
	Compression string
	Threshold   int
}

// ParseCompression validates a compression setting; empty means none.
func ParseCompression(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionBrotli, encodingBrotli:
		return CompressionBrotli, nil
	default:
		return "", fmt.Errorf("unsupported compression %q", raw)
	}
}

func (c Codec) Encode(event Event) (Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return Message{}, errors.Join(ErrSerializationFailed, err)
	}

	headers := map[string]string{
		HeaderContentType: contentTypeJSON,
		HeaderEventID:     event.ID,
		HeaderEventKind:   string(event.Kind),
		HeaderBatchID:     event.BatchID,
		HeaderSequence:    strconv.Itoa(event.Sequence),
	}

	threshold := c.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if c.Compression == CompressionBrotli && len(body) >= threshold {
		compressed, err := Compress(body)
		if err != nil {
			return Message{}, errors.Join(ErrSerializationFailed, err)
		}
		body = compressed
		headers[HeaderContentEncoding] = encodingBrotli
	}

	return Message{Body: body, Headers: headers}, nil
}

// Decode reverses Encode. Payload decodes into generic JSON values.
func (c Codec) Decode(message Message) (Event, error) {
	body := message.Body
	if strings.EqualFold(message.Headers[HeaderContentEncoding], encodingBrotli) {
		decompressed, err := Decompress(body)
		if err != nil {
			return Event{}, errors.Join(ErrSerializationFailed, err)
		}
		body = decompressed
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, errors.Join(ErrSerializationFailed, err)
	}
	return event, nil
}

// Compress brotli-compresses body at the default level.
func Compress(body []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := brotli.NewWriterLevel(&buffer, brotli.DefaultCompression)
	if _, err := writer.Write(body); err != nil {
		return nil, fmt.Errorf("brotli compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("brotli compress: %w", err)
	}
	return buffer.Bytes(), nil
}

// Decompress inflates a brotli stream.
func Decompress(body []byte) ([]byte, error) {
	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("brotli decompress: %w", err)
	}
	return decompressed, nil
}
