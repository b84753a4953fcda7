package session_test

import (
	"testing"
	"time"

	"github.com/agbs2k8/eostre/session"
	"github.com/stretchr/testify/require"
)

func TestRefreshDelay(t *testing.T) {
	tests := []struct {
		secondsLeft int64
		want        time.Duration
	}{
		{secondsLeft: 900, want: 870 * time.Second},
		{secondsLeft: 40, want: 10 * time.Second},
		{secondsLeft: 35, want: 5 * time.Second},
		{secondsLeft: 34, want: 5 * time.Second},
		{secondsLeft: 10, want: 5 * time.Second},
		{secondsLeft: 1, want: 5 * time.Second},
	}

	for _, tt := range tests {
		got := session.RefreshDelay(tt.secondsLeft, 30*time.Second, 5*time.Second)
		require.Equal(t, tt.want, got, "secondsLeft=%d", tt.secondsLeft)
	}
}
