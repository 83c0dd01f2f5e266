package grpc

import (
	"google.golang.org/grpc"

	"rental-ledger-backend/internal/api/grpc/interceptor"
	"rental-ledger-backend/internal/security"
)

type Handlers struct {
	Booking      BookingServer
	Ledger       LedgerServer
	Review       ReviewServer
	Notification NotificationServer
}

// NewServer builds a gRPC server speaking the JSON codec with error mapping
// outermost and authentication inside it.
func NewServer(tm security.TokenManager, h Handlers, opts ...grpc.ServerOption) *grpc.Server {
	authInterceptor := interceptor.NewAuthInterceptor(tm)
	opts = append(opts,
		grpc.ForceServerCodec(JSONCodec{}),
		grpc.ChainUnaryInterceptor(interceptor.ErrorUnary(), authInterceptor.Unary()),
	)
	s := grpc.NewServer(opts...)
	Register(s, h)
	return s
}

// Register attaches every non-nil handler to s
func Register(s grpc.ServiceRegistrar, h Handlers) {
	if h.Booking != nil {
		s.RegisterService(&bookingServiceDesc, h.Booking)
	}
	if h.Ledger != nil {
		s.RegisterService(&ledgerServiceDesc, h.Ledger)
	}
	if h.Review != nil {
		s.RegisterService(&reviewServiceDesc, h.Review)
	}
	if h.Notification != nil {
		s.RegisterService(&notificationServiceDesc, h.Notification)
	}
}
