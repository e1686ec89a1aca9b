package actorctx

import "context"

type ctxKey string

const keyUserID ctxKey = "user_id"

// WithUserID stamps the acting user's id onto a request context so lower
// layers (logging, repos) can attribute work without seeing HTTP types.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(keyUserID).(int64)

	return v, ok && v != 0
}
