package broadcast

// Error codes shared by every publisher. Keep stable; subscribers and logs
// match on them.
const (
	ErrCodePublishFailed       = "broadcast.publish_failed"
	ErrCodeSerializationFailed = "broadcast.serialization_failed"
	ErrCodeNotConfigured       = "broadcast.not_configured"
	ErrCodeClosed              = "broadcast.closed"
)

// Code returns an error value that carries only a code string.
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrPublishFailed       = Code(ErrCodePublishFailed)
	ErrSerializationFailed = Code(ErrCodeSerializationFailed)
	ErrNotConfigured       = Code(ErrCodeNotConfigured)
	ErrClosed              = Code(ErrCodeClosed)
)
