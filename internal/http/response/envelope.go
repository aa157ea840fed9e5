package response // import "github.com/Xunop/e-editor/internal/http/response"

// Envelope is what every library operation returns to the front end.
// Data is set when Success is true, Error otherwise.
type Envelope[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data,omitempty"`
	Error   *string `json:"error,omitempty"`
}

func Success[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data}
}

func Failure[T any](message string) Envelope[T] {
	return Envelope[T]{Success: false, Error: &message}
}

// Value returns the data, or the zero value of a failed envelope.
func (e Envelope[T]) Value() T {
	if e.Data == nil {
		var zero T
		return zero
	}
	return *e.Data
}

// Message returns the error message, empty on success.
func (e Envelope[T]) Message() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}
