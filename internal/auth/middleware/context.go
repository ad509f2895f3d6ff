package middleware

import "context"

type ctxKey string

const ctxKeyUserID ctxKey = "userID"

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

// UserIDFromContext returns the authenticated identity, or 0 when the
// request carried no valid session.
func UserIDFromContext(ctx context.Context) int64 {
	if v := ctx.Value(ctxKeyUserID); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
