package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type claimsKey struct{}

// ContextWithClaims attaches the authenticated actor to ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the actor attached by the interceptor.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

var (
	errNoCredentials = errors.New("missing authorization header")
	errBadScheme     = errors.New("authorization header must use the Bearer scheme")
)

// BearerToken extracts the token of an "authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errNoCredentials
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadScheme
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errNoCredentials
	}
	return token, nil
}

// UnaryAuthInterceptor verifies the bearer token of every call except
// publicMethods and attaches its Claims to the context. Tokens that carry
// no actor id are refused, since every state change is attributed.
func UnaryAuthInterceptor(jwtService *JWTService, publicMethods []string) grpc.UnaryServerInterceptor {
	public := make(map[string]struct{}, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}
		token, err := BearerToken(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		if claims.ActorID == "" {
			return nil, status.Error(codes.Unauthenticated, "token does not identify an actor")
		}

		return handler(ContextWithClaims(ctx, claims), req)
	}
}
