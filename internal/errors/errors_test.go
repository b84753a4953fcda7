package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestRequestFailed(t *testing.T) {
	err := fmt.Errorf("get widgets: %w", &apperrors.RequestFailed{Status: 404, Message: "widget not found"})

	require.Equal(t, 404, apperrors.StatusOf(err))
	require.Contains(t, err.Error(), "status 404: widget not found")
	require.Equal(t, 0, apperrors.StatusOf(apperrors.ErrRefreshFailed))
}

func TestWrapf(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "ignored"))

	err := apperrors.Wrapf(apperrors.ErrMalformedToken, "decode %s", "access token")
	require.True(t, apperrors.Is(err, apperrors.ErrMalformedToken))
	require.Equal(t, "decode access token: malformed token", err.Error())
}
