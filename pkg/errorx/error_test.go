package errorx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		code Code
		want Kind
	}{
		{BadRequest, KindValidation},
		{InvalidTarget, KindValidation},
		{PermissionDenied, KindAuthorization},
		{SelfSelection, KindAuthorization},
		{NoActiveReward, KindConflict},
		{AlreadyExists, KindConflict},
		{CaptureFailed, KindExternal},
		{SettlementFailed, KindExternal},
		{ReconciliationRequired, KindFatal},
		{Unknown.Code, KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.code), func(t *testing.T) {
			require.Equal(t, tc.want, KindOf(tc.code))
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(NoActiveReward, "Reward of post %s is not active", "p1"))
	require.True(t, Is(err, NoActiveReward))
	require.False(t, Is(err, SelfSelection))
	require.False(t, Is(fmt.Errorf("plain"), NoActiveReward))
	require.Equal(t, "wrapped: Reward of post p1 is not active", err.Error())
}
