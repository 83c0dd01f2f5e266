package grpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rental-ledger-backend/internal/domain"
)

// GetPrincipalFromContext extracts the caller from the gRPC metadata.
// It expects the "user-id" and "user-role" headers set by the auth interceptor.
func GetPrincipalFromContext(ctx context.Context) (domain.Principal, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Principal{}, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	userIDs := md.Get("user-id")
	if len(userIDs) == 0 {
		return domain.Principal{}, status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}

	userID, err := strconv.ParseInt(userIDs[0], 10, 64)
	if err != nil || userID <= 0 {
		return domain.Principal{}, status.Errorf(codes.InvalidArgument, "invalid user_id format: %s", userIDs[0])
	}

	role := domain.RoleUser
	if roles := md.Get("user-role"); len(roles) > 0 && domain.Role(roles[0]) == domain.RoleAdmin {
		role = domain.RoleAdmin
	}

	return domain.Principal{UserID: userID, Role: role}, nil
}
