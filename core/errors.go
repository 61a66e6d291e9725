package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrorKind is the stable text code carried by every remitlink failure.
type ErrorKind string

const (
	KindInvalidAddress ErrorKind = "REMIT_INVALID_ADDRESS"
	KindEncoding       ErrorKind = "REMIT_ENCODING_ERROR"
	KindTransport      ErrorKind = "REMIT_TRANSPORT_ERROR"
	KindHTTP           ErrorKind = "REMIT_HTTP_ERROR"
	KindNoData         ErrorKind = "REMIT_NO_DATA"
	KindCodec          ErrorKind = "REMIT_CODEC_ERROR"
	KindAuthentication ErrorKind = "REMIT_AUTHENTICATION_ERROR"
)

// Text codes for failures raised outside the call pipeline, e.g. by the
// command and query handlers.
const (
	TextCodeBadInput = "REMIT_BAD_INPUT"
	TextCodeInternal = "REMIT_INTERNAL"
)

const (
	MetadataStatusCode   = "status_code"
	MetadataResponseBody = "response_body"
)

func (k ErrorKind) String() string {
	return string(k)
}

func (k ErrorKind) category() goerrors.Category {
	switch k {
	case KindInvalidAddress, KindEncoding:
		return goerrors.CategoryBadInput
	case KindTransport, KindHTTP, KindNoData:
		return goerrors.CategoryExternal
	case KindCodec:
		return goerrors.CategoryValidation
	case KindAuthentication:
		return goerrors.CategoryAuth
	default:
		return goerrors.CategoryInternal
	}
}

func (k ErrorKind) code() int {
	switch k {
	case KindInvalidAddress, KindEncoding:
		return http.StatusBadRequest
	case KindTransport, KindNoData:
		return http.StatusBadGateway
	case KindCodec:
		return http.StatusUnprocessableEntity
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func newKindError(kind ErrorKind, message string, code int, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, kind.category()).
		WithCode(code).
		WithTextCode(kind.String())
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func wrapKindError(source error, kind ErrorKind, message string, code int, metadata map[string]any) *goerrors.Error {
	if source == nil {
		return newKindError(kind, message, code, metadata)
	}
	// goerrors.Wrap clones a rich source and keeps its category, so rich
	// causes are chained through Source instead.
	var rich *goerrors.Error
	if goerrors.As(source, &rich) {
		err := newKindError(kind, message, code, metadata)
		err.Source = source
		return err
	}
	err := goerrors.Wrap(source, kind.category(), message).
		WithCode(code).
		WithTextCode(kind.String())
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func NewInvalidAddressError(message string, cause error) error {
	return wrapKindError(cause, KindInvalidAddress, message, KindInvalidAddress.code(), nil)
}

func NewEncodingError(message string, cause error) error {
	return wrapKindError(cause, KindEncoding, message, KindEncoding.code(), nil)
}

func NewTransportError(message string, cause error) error {
	return wrapKindError(cause, KindTransport, message, KindTransport.code(), nil)
}

// NewHTTPError keeps the raw response body unparsed in the metadata.
func NewHTTPError(status int, body []byte) error {
	metadata := map[string]any{
		MetadataStatusCode:   status,
		MetadataResponseBody: string(body),
	}
	message := "remitlink: unexpected response status " + http.StatusText(status)
	if strings.TrimSpace(http.StatusText(status)) == "" {
		message = "remitlink: unexpected response status"
	}
	return newKindError(KindHTTP, message, status, metadata)
}

func NewNoDataError(message string) error {
	return newKindError(KindNoData, message, KindNoData.code(), nil)
}

func NewCodecError(message string, cause error) error {
	return wrapKindError(cause, KindCodec, message, KindCodec.code(), nil)
}

func NewAuthenticationError(message string, cause error) error {
	return wrapKindError(cause, KindAuthentication, message, KindAuthentication.code(), nil)
}

// KindOf returns the outermost remitlink kind found in the error chain.
func KindOf(err error) (ErrorKind, bool) {
	rich := richError(err)
	if rich == nil {
		return "", false
	}
	switch kind := ErrorKind(rich.TextCode); kind {
	case KindInvalidAddress, KindEncoding, KindTransport, KindHTTP, KindNoData, KindCodec, KindAuthentication:
		return kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// HasKind reports whether any remitlink error in the chain carries kind.
func HasKind(err error, kind ErrorKind) bool {
	current := err
	for current != nil {
		var rich *goerrors.Error
		if !goerrors.As(current, &rich) {
			return false
		}
		if ErrorKind(rich.TextCode) == kind {
			return true
		}
		current = rich.Source
	}
	return false
}

// HTTPStatus returns the upstream status of an HTTP error.
func HTTPStatus(err error) (int, bool) {
	rich := richError(err)
	if rich == nil || ErrorKind(rich.TextCode) != KindHTTP {
		return 0, false
	}
	if status, ok := rich.Metadata[MetadataStatusCode].(int); ok {
		return status, true
	}
	return rich.Code, rich.Code != 0
}

// ResponseBody returns the raw upstream body of an HTTP error.
func ResponseBody(err error) ([]byte, bool) {
	rich := richError(err)
	if rich == nil || ErrorKind(rich.TextCode) != KindHTTP {
		return nil, false
	}
	body, ok := rich.Metadata[MetadataResponseBody].(string)
	if !ok {
		return nil, false
	}
	return []byte(body), true
}

func richError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return nil
	}
	return rich
}
