package oracle

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "referral-giveaway-bot/internal/common/errors"
)

// Checker answers raw membership questions and may fail.
type Checker interface {
	IsChatMember(ctx context.Context, chatID string, userID int64) (bool, error)
}

// Adapter turns a Checker into a fail-closed membership oracle: any error,
// timeout or unresolvable channel counts as "not a member".
type Adapter struct {
	checker Checker
	timeout time.Duration
}

func NewAdapter(checker Checker, timeout time.Duration) *Adapter {
	return &Adapter{checker: checker, timeout: timeout}
}

// IsMember never returns an error; failures are logged as ORACLE_UNAVAILABLE.
func (a *Adapter) IsMember(ctx context.Context, userID int64, channel string) bool {
	if a == nil || a.checker == nil || channel == "" {
		return false
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	ok, err := a.checker.IsChatMember(ctx, channel, userID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("code", string(apperrors.ErrCodeOracleUnavailable)).
			Int64("user_id", userID).
			Str("channel", channel).
			Msg("membership check failed, treating as not subscribed")
		return false
	}
	return ok
}
