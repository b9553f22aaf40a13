package he

import (
	"errors"
	"fmt"
	"log" // all kids love log
	"net/http"
)

// HTTPError is an error that knows which status it should produce.
type HTTPError struct {
	code int
	err  error
}

func HTTPCodedErrorf(code int, f string, more ...any) *HTTPError {
	return &HTTPError{
		code: code,
		err:  fmt.Errorf(f, more...),
	}
}

func New(code int, err error) *HTTPError {
	return &HTTPError{
		code: code,
		err:  err,
	}
}

func (e *HTTPError) Error() string {
	return e.err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.err
}

func (e *HTTPError) Code() int {
	return e.code
}

// StatusOf is the status err should be reported with: the code of the
// outermost HTTPError in its chain, or 500.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.code
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err carries a 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// SendErrorToHTTPClient sends err as an HTTP error.  If an HTTPError is in
// the chain, its code is used; otherwise the client gets 500 and it's on
// us.
func SendErrorToHTTPClient(w http.ResponseWriter, while string, err error) {
	code := StatusOf(err)
	txt := fmt.Sprintf("can't %s: %v", while, err)
	if code >= 500 {
		log.Println(txt)
	}
	http.Error(w, txt, code)
}
