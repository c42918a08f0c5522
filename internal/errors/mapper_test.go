package errors_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/moodfriends/internal/errors"
)

func TestMap(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{gorm.ErrRecordNotFound, codes.NotFound},
		{fmt.Errorf("user 7: %w", svcErr.ErrNotFound), codes.NotFound},
		{fmt.Errorf("request: %w", svcErr.ErrAlreadyExists), codes.AlreadyExists},
		{svcErr.ErrNotFriends, codes.PermissionDenied},
		{svcErr.ErrForbidden, codes.PermissionDenied},
		{fmt.Errorf("respond: %w", svcErr.ErrInvalidState), codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{fmt.Errorf("boom"), codes.Internal},
		{svcErr.InvalidArgument("bad"), codes.InvalidArgument},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, status.Code(svcErr.Map(c.err)), "err=%v", c.err)
	}
	assert.NoError(t, svcErr.Map(nil))
}
