// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/utils/pagination"
)

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Errors that already carry a status pass through untouched.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var limit *matching.LimitError
	var verrs validator.ValidationErrors

	switch {
	case errors.As(err, &limit):
		return limitStatus(limit)

	case errors.As(err, &verrs):
		return status.Error(codes.InvalidArgument, verrs.Error())

	case errors.Is(err, matching.ErrInvalidParameters),
		errors.Is(err, pagination.ErrInvalidToken):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, matching.ErrAlreadySwiped):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, matching.ErrNoPreferences):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, matching.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	case errors.Is(err, matching.ErrPersistence):
		return status.Error(codes.Unavailable, "storage unavailable, retry later")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// limitStatus builds ResourceExhausted with retry and quota details so
// clients can schedule the next attempt.
func limitStatus(le *matching.LimitError) error {
	st := status.New(codes.ResourceExhausted, le.Error())

	subject := "swipes_per_hour"
	if errors.Is(le, matching.ErrSuperLikeLimitExceeded) {
		subject = "super_likes_per_day"
	}
	withDetails, err := st.WithDetails(
		&errdetails.RetryInfo{RetryDelay: durationpb.New(le.RetryAfter)},
		&errdetails.QuotaFailure{Violations: []*errdetails.QuotaFailure_Violation{{
			Subject:     subject,
			Description: fmt.Sprintf("%d of %d used", le.Used, le.Limit),
		}}},
	)
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// AlreadyExists creates a gRPC AlreadyExists error.
func AlreadyExists(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}
