package grpc

import (
	"context"

	"google.golang.org/grpc"

	"rental-ledger-backend/internal/api/wire"
)

const packageName = "rental.ledger.v1"

type BookingServer interface {
	CreateBooking(context.Context, *wire.CreateBookingRequest) (*wire.BookingResponse, error)
	ApproveBooking(context.Context, *wire.BookingIDRequest) (*wire.BookingResponse, error)
	CancelBooking(context.Context, *wire.BookingIDRequest) (*wire.RefundResponse, error)
	RejectBooking(context.Context, *wire.BookingIDRequest) (*wire.RefundResponse, error)
	CompleteBooking(context.Context, *wire.BookingIDRequest) (*wire.CompletedRentalResponse, error)
	GetBooking(context.Context, *wire.BookingIDRequest) (*wire.BookingResponse, error)
	ListMyBookings(context.Context, *wire.ListMyBookingsRequest) (*wire.ListBookingsResponse, error)
	QuotePrice(context.Context, *wire.QuotePriceRequest) (*wire.QuotePriceResponse, error)
}

type LedgerServer interface {
	GetBalance(context.Context, *wire.GetBalanceRequest) (*wire.BalanceResponse, error)
	GetPaymentLogs(context.Context, *wire.PaymentLogsRequest) (*wire.PaymentLogsResponse, error)
	GetPlatformPaymentLogs(context.Context, *wire.PaymentLogsRequest) (*wire.PaymentLogsResponse, error)
	Deposit(context.Context, *wire.DepositRequest) (*wire.PaymentLogResponse, error)
	Reconcile(context.Context, *wire.ReconcileRequest) (*wire.ReconcileResponse, error)
}

type ReviewServer interface {
	CreateReview(context.Context, *wire.CreateReviewRequest) (*wire.ReviewResponse, error)
}

type NotificationServer interface {
	GetNotifications(context.Context, *wire.GetNotificationsRequest) (*wire.NotificationsResponse, error)
	MarkNotificationRead(context.Context, *wire.MarkNotificationReadRequest) (*wire.MarkNotificationReadResponse, error)
}

// unary adapts a typed handler method to grpc.MethodHandler, running it
// through the server interceptor chain like generated code does.
func unary[S any, Req any, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func method[S any, Req any, Resp any](service, name string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler:    unary(FullMethod(service, name), call),
	}
}

// FullMethod returns the "/package.Service/Method" path of an RPC
func FullMethod(service, name string) string {
	return "/" + packageName + "." + service + "/" + name
}

var bookingServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + ".BookingService",
	HandlerType: (*BookingServer)(nil),
	Methods: []grpc.MethodDesc{
		method("BookingService", "CreateBooking", BookingServer.CreateBooking),
		method("BookingService", "ApproveBooking", BookingServer.ApproveBooking),
		method("BookingService", "CancelBooking", BookingServer.CancelBooking),
		method("BookingService", "RejectBooking", BookingServer.RejectBooking),
		method("BookingService", "CompleteBooking", BookingServer.CompleteBooking),
		method("BookingService", "GetBooking", BookingServer.GetBooking),
		method("BookingService", "ListMyBookings", BookingServer.ListMyBookings),
		method("BookingService", "QuotePrice", BookingServer.QuotePrice),
	},
	Metadata: "rental/ledger/v1/booking",
}

var ledgerServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + ".LedgerService",
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		method("LedgerService", "GetBalance", LedgerServer.GetBalance),
		method("LedgerService", "GetPaymentLogs", LedgerServer.GetPaymentLogs),
		method("LedgerService", "GetPlatformPaymentLogs", LedgerServer.GetPlatformPaymentLogs),
		method("LedgerService", "Deposit", LedgerServer.Deposit),
		method("LedgerService", "Reconcile", LedgerServer.Reconcile),
	},
	Metadata: "rental/ledger/v1/ledger",
}

var reviewServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + ".ReviewService",
	HandlerType: (*ReviewServer)(nil),
	Methods: []grpc.MethodDesc{
		method("ReviewService", "CreateReview", ReviewServer.CreateReview),
	},
	Metadata: "rental/ledger/v1/review",
}

var notificationServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + ".NotificationService",
	HandlerType: (*NotificationServer)(nil),
	Methods: []grpc.MethodDesc{
		method("NotificationService", "GetNotifications", NotificationServer.GetNotifications),
		method("NotificationService", "MarkNotificationRead", NotificationServer.MarkNotificationRead),
	},
	Metadata: "rental/ledger/v1/notification",
}
