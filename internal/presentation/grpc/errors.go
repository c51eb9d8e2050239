package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/credit-service/internal/domain/errs"
)

var kindCodes = map[errs.Kind]codes.Code{
	errs.KindValidation:         codes.InvalidArgument,
	errs.KindPermission:         codes.PermissionDenied,
	errs.KindNotFound:           codes.NotFound,
	errs.KindConflict:           codes.Aborted,
	errs.KindIllegalTransition:  codes.FailedPrecondition,
	errs.KindExternalDependency: codes.Unavailable,
}

// CodeFor maps an engine error to its gRPC code.
func CodeFor(err error) codes.Code {
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	if c, ok := kindCodes[errs.KindOf(err)]; ok {
		return c
	}
	return codes.Internal
}

// toStatus hides unclassified errors behind a generic message and logs them.
func (h *CreditReviewHandler) toStatus(ctx context.Context, method string, err error) error {
	code := CodeFor(err)
	if code == codes.Internal {
		h.logger.ErrorContext(ctx, "unhandled error", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	h.logger.DebugContext(ctx, "request rejected", "method", method, "code", code.String(), "error", err)
	return status.Error(code, errs.Reason(err))
}
