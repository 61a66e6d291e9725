package remitlink

import "github.com/goliatone/go-remitlink/core"

type Config = core.Config

type Credential = core.Credential
type TokenInfo = core.TokenInfo

type Descriptor = core.Descriptor
type Outcome = core.Outcome
type Value = core.Value

type ErrorKind = core.ErrorKind

const (
	KindInvalidAddress = core.KindInvalidAddress
	KindEncoding       = core.KindEncoding
	KindTransport      = core.KindTransport
	KindHTTP           = core.KindHTTP
	KindNoData         = core.KindNoData
	KindCodec          = core.KindCodec
	KindAuthentication = core.KindAuthentication
)

var (
	DefaultConfig = core.DefaultConfig
	LoadConfig    = core.LoadConfig
	KindOf        = core.KindOf
	IsKind        = core.IsKind
	HTTPStatus    = core.HTTPStatus
	ResponseBody  = core.ResponseBody
)
