package fetch

import (
	"fmt"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
)

// Failure carries a status code and a human readable hint through the
// pipeline.
type Failure struct {
	Status status.Code
	Hint   string
}

func (f *Failure) Error() string {
	if f.Hint == "" {
		return fmt.Sprintf("fetch: %s", f.Status)
	}
	return fmt.Sprintf("fetch: %s: %s", f.Status, f.Hint)
}

func fail(code status.Code, format string, args ...any) *Failure {
	return &Failure{Status: code, Hint: fmt.Sprintf(format, args...)}
}

// Result is the outcome of one fetch. HasValue is false when no body was
// decoded.
type Result[R any] struct {
	Status   status.Code
	Hint     string
	Value    R
	HasValue bool
}

func failed[R any](f *Failure) Result[R] {
	return Result[R]{Status: f.Status, Hint: f.Hint}
}

// Callback receives the final status of a fetch.
type Callback func(status.Code)

// None ignores the result.
func None(status.Code) {}
