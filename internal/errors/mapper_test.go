package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

func TestMapCodes(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: self swipe", matching.ErrInvalidParameters), codes.InvalidArgument},
		{matching.ErrAlreadySwiped, codes.AlreadyExists},
		{matching.ErrNoPreferences, codes.FailedPrecondition},
		{matching.ErrNotFound, codes.NotFound},
		{&matching.PersistenceError{Op: "insert swipe", Err: fmt.Errorf("disk full")}, codes.Unavailable},
		{&matching.PersistenceError{Op: "insert swipe", Err: context.DeadlineExceeded}, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{fmt.Errorf("boom"), codes.Internal},
		{status.Error(codes.PermissionDenied, "nope"), codes.PermissionDenied},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, status.Code(Map(tc.err)), "err=%v", tc.err)
	}
	assert.NoError(t, Map(nil))
}

func TestMapLimitErrorCarriesDetails(t *testing.T) {
	err := Map(&matching.LimitError{
		Kind:       matching.ErrSuperLikeLimitExceeded,
		Limit:      5,
		Used:       5,
		RetryAfter: 3 * time.Hour,
	})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.ResourceExhausted, st.Code())

	var retry *errdetails.RetryInfo
	var quota *errdetails.QuotaFailure
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.RetryInfo:
			retry = v
		case *errdetails.QuotaFailure:
			quota = v
		}
	}
	require.NotNil(t, retry)
	require.NotNil(t, quota)
	assert.Equal(t, 3*time.Hour, retry.GetRetryDelay().AsDuration())
	assert.Equal(t, "super_likes_per_day", quota.GetViolations()[0].GetSubject())
}
