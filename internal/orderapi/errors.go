package orderapi

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-resty/resty/v2"
)

// TransportError is a request that never produced an HTTP response: the
// server was unreachable, the connection dropped, or the deadline passed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request failed on a deadline.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	if errors.As(e.Err, &ne) && ne.Timeout() {
		return true
	}
	return false
}

// StatusError is a non-2xx response.
type StatusError struct {
	Op   string
	Code int
	// Text is the reason phrase, e.g. "Not Found".
	Text string
	// Message is the {"error": ...} envelope text, if the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	s := fmt.Sprintf("%s: %d %s", e.Op, e.Code, e.Text)
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

// PayloadError is a 2xx response whose body could not be decoded.
type PayloadError struct {
	Op  string
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Classify converts the outcome of a resty call into nil (2xx) or one of
// TransportError and StatusError.
func Classify(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}
	code := resp.StatusCode()
	return &StatusError{
		Op:      op,
		Code:    code,
		Text:    reasonPhrase(code, resp.Status()),
		Message: ErrorMessage(resp.Body()),
	}
}

// reasonPhrase strips the code from a status line such as "404 Not Found".
func reasonPhrase(code int, status string) string {
	if text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code))); text != "" {
		return text
	}
	return http.StatusText(code)
}

// ErrorMessage extracts the "error" field of a JSON error envelope. It
// returns "" when body is not such an envelope.
func ErrorMessage(body []byte) string {
	var msg string
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return ""
	}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) == "error" && d.Next() == jx.String {
			v, err := d.Str()
			msg = v
			return err
		}
		return d.Skip()
	}); err != nil {
		return ""
	}
	return msg
}
