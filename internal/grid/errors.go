package grid

import (
	"fmt"

	"github.com/gmichels/selenium-grid-exporter/internal/errors"
)

const (
	// ErrFetch covers connection failures, timeouts and non-2xx responses.
	ErrFetch = errors.ErrorCode("grid_fetch_failed")
	// ErrParse covers malformed JSON and structurally invalid payloads.
	ErrParse = errors.ErrorCode("grid_parse_failed")
)

// FetchFailure is attached to ErrFetch errors.
type FetchFailure struct {
	Method     string
	URL        string
	StatusCode int
}

func (f FetchFailure) String() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s %s returned status %d", f.Method, f.URL, f.StatusCode)
	}

	return fmt.Sprintf("%s %s", f.Method, f.URL)
}

func fetchError(failure FetchFailure, cause error) errors.Error {
	errFactory := errors.New()
	if cause == nil {
		return errFactory.WithData(ErrFetch, failure).WithMessage("Failed to fetch grid status")
	}

	return errFactory.Wrap(ErrFetch, cause).WithData(failure).WithMessage("Failed to fetch grid status")
}

func parseError(cause error) errors.Error {
	return errors.New().Wrap(ErrParse, cause).WithMessage("Failed to parse grid status")
}

func parseErrorf(format string, args ...any) errors.Error {
	return parseError(fmt.Errorf(format, args...))
}

// IsFetchError reports whether err is a grid fetch failure.
func IsFetchError(err error) bool {
	return errors.HasCode(err, ErrFetch)
}

// IsParseError reports whether err is a grid parse failure.
func IsParseError(err error) bool {
	return errors.HasCode(err, ErrParse)
}

// FailureOf returns the request details attached to a fetch error.
func FailureOf(err error) (FetchFailure, bool) {
	var appErr errors.Error
	if !errors.As(err, &appErr) {
		return FetchFailure{}, false
	}
	f, ok := appErr.GetData().(FetchFailure)

	return f, ok
}
