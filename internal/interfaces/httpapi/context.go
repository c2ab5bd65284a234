package httpapi

import "context"

type contextKey string

const apiUserContextKey contextKey = "api_user"

func withAPIUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, apiUserContextKey, user)
}

func apiUserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(apiUserContextKey).(string)
	return user, ok
}
