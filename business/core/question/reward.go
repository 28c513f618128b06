package question

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/askchain/askchain/business/sys/validate"
)

// RewardWindow is how long an asker has to award a question.
const RewardWindow = 7 * 24 * time.Hour

// DefaultReward is used when the client sends no usable reward.
var DefaultReward = decimal.RequireFromString("0.1")

// RewardDecimals is the finest reward unit, matching the token's decimals.
const RewardDecimals = 18

// Errors reported on the reward field.
var (
	ErrNegativeReward  = errors.New("reward must not be negative")
	ErrRewardPrecision = errors.New("reward supports at most 18 decimal places")
)

// ParseReward converts the reward text into an amount. Text that is missing,
// unparsable or zero falls back to DefaultReward. A negative amount is a
// validation failure, as is one finer than RewardDecimals.
func ParseReward(raw string) (decimal.Decimal, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)

	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsZero() {
		return DefaultReward, nil
	}

	if amount.IsNegative() {
		return decimal.Decimal{}, validate.NewFieldsError("reward", ErrNegativeReward)
	}

	if !amount.Equal(amount.Truncate(RewardDecimals)) {
		return decimal.Decimal{}, validate.NewFieldsError("reward", ErrRewardPrecision)
	}

	return amount, nil
}

// InsufficientFundsError reports a balance too small for the reward.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

// Error implements the error interface.
func (ife *InsufficientFundsError) Error() string {
	return fmt.Sprintf("not enough ASK tokens, you have %s but need %s", ife.Available, ife.Required)
}

// Unwrap lets errors.Is match ErrInsufficientFunds.
func (ife *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
