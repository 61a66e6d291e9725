package core

import (
	"net/http"
	"strings"
)

// Descriptor describes one outbound request. The base origin comes from the
// executor. When RawBody is set it is sent as is and Body is ignored.
type Descriptor struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string
	Body    *Value
	RawBody []byte
}

func (d Descriptor) NormalizedMethod() string {
	method := strings.ToUpper(strings.TrimSpace(d.Method))
	if method == "" {
		return http.MethodGet
	}
	return method
}

func (d Descriptor) HasPayload() bool {
	return d.RawBody != nil || d.Body != nil
}

// Outcome is either a success carrying the response bytes or a failure.
type Outcome struct {
	data []byte
	err  error
}

func Success(data []byte) Outcome {
	return Outcome{data: data}
}

// Failure panics on a nil error; an outcome is never both.
func Failure(err error) Outcome {
	if err == nil {
		panic("core: failure outcome requires an error")
	}
	return Outcome{err: err}
}

func (o Outcome) OK() bool {
	return o.err == nil
}

func (o Outcome) Data() []byte {
	return o.data
}

func (o Outcome) Err() error {
	return o.err
}

func (o Outcome) Kind() (ErrorKind, bool) {
	return KindOf(o.err)
}

// Unwrap returns the body or the failure, for call-sites that want the pair.
func (o Outcome) Unwrap() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.data, nil
}
