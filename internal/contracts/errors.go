package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by repositories.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStatusConflict is returned when a conditional update matched no
	// row because the period status changed underneath the caller.
	ErrStatusConflict = errors.New("period status changed concurrently")
)

// Validation rule identifiers. Every ValidationError names the rule it
// violated so callers can map failures without parsing messages.
const (
	RulePeriodNotFound        = "period_not_found"
	RulePeriodNotPreClosed    = "period_not_pre_closed"
	RuleSectorNotInTopGroup   = "sector_not_in_winning_group"
	RuleEmptyRanking          = "empty_ranking"
	RuleActorNotAuthorized    = "actor_not_authorized"
	RuleConcurrentUpdate      = "concurrent_update"
	RuleInvalidMonthKey       = "invalid_month_key"
	RuleMissingWinningSector  = "missing_winning_sector"
)

// ValidationError is a caller error: bad input or a violated
// precondition. It is surfaced as-is and never retried.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for a rule.
func NewValidationError(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
