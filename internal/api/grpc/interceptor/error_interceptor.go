package interceptor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
)

// ErrorCodeTrailer carries the stable domain error code next to the gRPC status
const ErrorCodeTrailer = "error-code"

// ErrorUnary tags the call with a request id, converts panics into Internal and
// maps domain errors onto gRPC status codes.
func ErrorUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		requestID := uuid.NewString()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
				requestID = ids[0]
			}
		}
		ctx = logger.ContextWithRequestID(ctx, requestID)

		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "Panic in gRPC handler", "method", info.FullMethod, "panic", fmt.Sprint(r))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()

		resp, err = handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return nil, ToStatus(ctx, info.FullMethod, err)
	}
}

// ToStatus converts err into a gRPC status error; errors that already carry a
// status pass through unchanged.
func ToStatus(ctx context.Context, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	de, ok := domain.AsError(err)
	if !ok {
		logger.ErrorContext(ctx, "Unexpected error in gRPC handler", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}

	if de.Expected() {
		logger.DebugContext(ctx, "Request refused", "method", method, "code", de.Code, "error", de.Msg)
	} else {
		logger.ErrorContext(ctx, "Request failed", "method", method, "code", de.Code, "error", de.Msg)
	}
	_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeTrailer, string(de.Code)))
	return status.Error(codeFor(de), de.Msg)
}

func codeFor(de *domain.Error) codes.Code {
	switch de.Category {
	case domain.CategoryValidation:
		return codes.InvalidArgument
	case domain.CategoryNotFound:
		return codes.NotFound
	case domain.CategoryPermission:
		return codes.PermissionDenied
	case domain.CategoryConflict:
		if de.Code == domain.CodeAlreadyReviewed || de.Code == domain.CodeDuplicateRequest {
			return codes.AlreadyExists
		}
		return codes.FailedPrecondition
	case domain.CategoryInsufficiency:
		return codes.FailedPrecondition
	case domain.CategoryRetryable:
		return codes.Aborted
	default:
		return codes.Internal
	}
}
