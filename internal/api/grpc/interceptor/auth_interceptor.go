package interceptor

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rental-ledger-backend/internal/config"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/security"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			return handler(ctx, req)
		}

		token, err := i.extractToken(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := i.tokenManager.ValidateToken(token)
		if err != nil {
			if errors.Is(err, security.ErrWrongTokenType) {
				return nil, status.Error(codes.PermissionDenied, "access token required")
			}
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		principal := claims.Principal()
		if err := i.checkSecurityLevel(level, principal); err != nil {
			return nil, err
		}

		// Copy and Set so a client-supplied "user-id" or "user-role" never survives
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}

		md.Set("user-id", strconv.FormatInt(principal.UserID, 10))
		md.Set("user-role", string(principal.Role))
		newCtx := metadata.NewIncomingContext(ctx, md)

		return handler(newCtx, req)
	}
}

func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}

	return token, nil
}

func (i *AuthInterceptor) checkSecurityLevel(level config.SecurityLevel, principal domain.Principal) error {
	if level == config.SecurityAdmin && !principal.IsAdmin() {
		return status.Error(codes.PermissionDenied, "admin role required")
	}
	return nil
}
