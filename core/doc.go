// Package core contains the remitlink request/authentication contracts shared by
// every other package: configuration, the error taxonomy, the structured Value
// payload type, request descriptors and outcomes. Adapters (transport, store,
// auth) depend on core; core must not depend on them.
package core
