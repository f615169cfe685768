package http

import (
	"golang.org/x/net/context"

	"github.com/jhlee0409/sidedish-sub001/core"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

const (
	ctxKeyNamespace = "namespace"
	ctxKeyRoute     = "route"
	ctxKeyToken     = "token"
	ctxKeyUser      = "user"
	ctxKeyVersion   = "version"
)

func namespaceFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyNamespace).(string)
}

func namespaceInContext(ctx context.Context, ns string) context.Context {
	return context.WithValue(ctx, ctxKeyNamespace, ns)
}

// originFromContext derives the core Origin for the request. Anonymous
// requests yield the zero Origin.
func originFromContext(ctx context.Context) core.Origin {
	u, ok := ctx.Value(ctxKeyUser).(*user.User)
	if !ok {
		return core.Origin{}
	}

	token, _ := ctx.Value(ctxKeyToken).(string)

	return core.Origin{
		SessionID: token,
		UserID:    u.ID,
	}
}

func routeFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyRoute).(string)
}

func routeInContext(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

func tokenFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyToken).(string)
}

func tokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyToken, token)
}

func userFromContext(ctx context.Context) *user.User {
	return ctx.Value(ctxKeyUser).(*user.User)
}

func userInContext(ctx context.Context, user *user.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// currentUserID reports the id of the authenticated user, zero for anonymous
// requests. Used by middlewares that run before and after authentication.
func currentUserID(ctx context.Context) uint64 {
	if u, ok := ctx.Value(ctxKeyUser).(*user.User); ok {
		return u.ID
	}

	return 0
}

func versionFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyVersion).(string)
}

func versionInContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, ctxKeyVersion, version)
}
