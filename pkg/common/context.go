package common

type ContextKey string

const (
	ClientIdentityContextKey ContextKey = "client_identity"
	SessionIDContextKey      ContextKey = "session_id"
	RequestIDContextKey      ContextKey = "request_id"
)
