package rpc

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Status converts a usecase error into a gRPC status error.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return status.Error(codes.FailedPrecondition, err.Error())
	case apperr.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apperr.KindForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case apperr.KindConflict:
		return status.Error(codes.Aborted, err.Error())
	default:
		// consistency faults land here too, details stay in the logs
		return status.Error(codes.Internal, "internal error")
	}
}
