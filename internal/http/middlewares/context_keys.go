package middlewares

const (
	// gin context keys; gin only accepts string keys
	CtxRequestID = "request_id"
	CtxUser      = "auth.user"
)
