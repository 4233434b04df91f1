package tickets

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "referral-giveaway-bot/internal/common/errors"
)

func TestRewardAmount(t *testing.T) {
	for code, want := range map[string]int{
		"empty":     0,
		"tickets_1": 1,
		"tickets_2": 2,
		"tickets_3": 3,
		"tickets_4": 4,
		"tickets_5": 5,
	} {
		got, ok := RewardAmount(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got, code)
	}

	_, ok := RewardAmount("tickets_100")
	assert.False(t, ok)
	assert.Len(t, RewardCodes(), 6)
}

func TestGrantWheelSpin_Cooldown(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	register(t, h, 1)
	h.subscribeAll(1)
	_, _, err := h.svc.EvaluateSubscription(ctx, 1)
	require.NoError(t, err)

	out, err := h.svc.GrantWheelSpin(ctx, 1, "tickets_2")
	require.NoError(t, err)
	assert.Equal(t, SpinGranted, out.Status)
	assert.Equal(t, 2, out.Awarded)
	assert.Equal(t, 2, out.TotalTickets)

	h.clock.Advance(5*time.Hour + 59*time.Minute)
	out, err = h.svc.GrantWheelSpin(ctx, 1, "tickets_5")
	require.NoError(t, err)
	assert.Equal(t, SpinCooldown, out.Status)
	assert.Equal(t, time.Minute, out.Remaining)
	assert.Zero(t, out.Awarded)
	assert.Equal(t, 2, h.store.get(1).SeasonBonusTickets)

	h.clock.Advance(2 * time.Minute)
	out, err = h.svc.GrantWheelSpin(ctx, 1, "tickets_5")
	require.NoError(t, err)
	assert.Equal(t, SpinGranted, out.Status)
	assert.Equal(t, 7, out.BonusTickets)
	assert.Equal(t, 7, out.TotalTickets)
}

func TestGrantWheelSpin_InvalidRewardDoesNotMutate(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	register(t, h, 1)

	_, err := h.svc.GrantWheelSpin(ctx, 1, "tickets_999")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidReward))

	u := h.store.get(1)
	assert.Zero(t, u.SeasonBonusTickets)
	assert.Nil(t, u.LastSpinAt)
}

func TestGrantWheelSpin_EmptyRewardStartsCooldown(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	register(t, h, 1)

	out, err := h.svc.GrantWheelSpin(ctx, 1, RewardEmpty)
	require.NoError(t, err)
	assert.Equal(t, SpinGranted, out.Status)
	assert.Zero(t, out.Awarded)
	require.NotNil(t, h.store.get(1).LastSpinAt)

	out, err = h.svc.GrantWheelSpin(ctx, 1, "tickets_1")
	require.NoError(t, err)
	assert.Equal(t, SpinCooldown, out.Status)
}

func TestGrantWheelSpin_UnknownUser(t *testing.T) {
	h := newHarness()
	_, err := h.svc.GrantWheelSpin(context.Background(), 404, "tickets_1")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestGrantWheelSpin_ConcurrentSpinsGrantOnce(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	register(t, h, 1)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := h.svc.GrantWheelSpin(ctx, 1, "tickets_1")
			if !assert.NoError(t, err) {
				return
			}
			if out.Status == SpinGranted {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
	assert.Equal(t, 1, h.store.get(1).SeasonBonusTickets)
}

func TestRollWheel_UsesServerTable(t *testing.T) {
	original := rollRandomInt
	defer func() { rollRandomInt = original }()

	// weights 40,25,15,10,6,4: 96 is the first value in the last sector
	rollRandomInt = func(max int) (int, error) {
		require.Equal(t, 100, max)
		return 96, nil
	}

	h := newHarness()
	ctx := context.Background()
	register(t, h, 1)

	out, err := h.svc.RollWheel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, SpinGranted, out.Status)
	assert.Equal(t, "tickets_5", out.RewardCode)
	assert.Equal(t, 5, out.Awarded)
}

func TestRollReward_Boundaries(t *testing.T) {
	original := rollRandomInt
	defer func() { rollRandomInt = original }()

	tests := []struct {
		r    int
		want string
	}{
		{r: 0, want: "empty"},
		{r: 39, want: "empty"},
		{r: 40, want: "tickets_1"},
		{r: 64, want: "tickets_1"},
		{r: 65, want: "tickets_2"},
		{r: 80, want: "tickets_3"},
		{r: 90, want: "tickets_4"},
		{r: 99, want: "tickets_5"},
	}
	for _, tt := range tests {
		r := tt.r
		rollRandomInt = func(int) (int, error) { return r, nil }
		got, err := rollReward()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "r=%d", tt.r)
	}
}
