package period

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/pkg/logger"
)

// RankingAnalyzer recomputes the ranking for a month from the source of
// truth. The controller never trusts cached data when closing a period.
type RankingAnalyzer interface {
	ComputeForMonth(ctx context.Context, monthKey string) (*contracts.RankingAnalysis, error)
}

// Controller owns the period state machine and the officialization
// protocol. All period mutations after planning go through here or
// through the transition scheduler.
type Controller struct {
	periods  contracts.PeriodRepository
	analyzer RankingAnalyzer
	authz    contracts.Authorizer
	audit    contracts.AuditSink
	clock    contracts.Clock
	logger   *logger.Logger
}

// NewController creates a lifecycle controller.
func NewController(
	periods contracts.PeriodRepository,
	analyzer RankingAnalyzer,
	authz contracts.Authorizer,
	audit contracts.AuditSink,
	clock contracts.Clock,
	log *logger.Logger,
) *Controller {
	return &Controller{
		periods:  periods,
		analyzer: analyzer,
		authz:    authz,
		audit:    audit,
		clock:    clock,
		logger:   log,
	}
}

// OfficializeInput carries everything needed to close a period. The
// acting principal is explicit; the engine never reads identity from
// ambient context.
type OfficializeInput struct {
	PeriodID        int64
	WinningSectorID int64
	Actor           contracts.Principal
	TieResolvedBy   string
	Justification   string
}

// TieResolutionDirector marks a winner picked by a director among tied
// sectors when no explicit marker was supplied.
const TieResolutionDirector = "DIRECTOR_DECISION"

// Officialize closes a PRE_CLOSED period: it recomputes the ranking,
// verifies the chosen winner belongs to the top score group and commits
// winner, actor, timestamp and tie marker together with the CLOSED
// status in a single conditional update. Precondition failures surface
// as ValidationError with no partial mutation.
func (c *Controller) Officialize(ctx context.Context, input OfficializeInput) (*contracts.CompetitionPeriod, error) {
	if !c.authz.CanOfficialize(input.Actor) {
		return nil, contracts.NewValidationError(contracts.RuleActorNotAuthorized,
			"user %s is not allowed to officialize periods", input.Actor.ID)
	}
	if input.WinningSectorID == 0 {
		return nil, contracts.NewValidationError(contracts.RuleMissingWinningSector,
			"winning sector id is required")
	}

	period, err := c.periods.GetByID(ctx, input.PeriodID)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, contracts.NewValidationError(contracts.RulePeriodNotFound,
				"period %d not found", input.PeriodID)
		}
		return nil, fmt.Errorf("get period %d: %w", input.PeriodID, err)
	}

	if period.Status != contracts.StatusPreClosed {
		return nil, contracts.NewValidationError(contracts.RulePeriodNotPreClosed,
			"period %d is %s, only PRE_CLOSED periods can be officialized", period.ID, period.Status)
	}

	analysis, err := c.analyzer.ComputeForMonth(ctx, period.MonthKey)
	if err != nil {
		return nil, fmt.Errorf("compute ranking for %s: %w", period.MonthKey, err)
	}

	if len(analysis.Entries) == 0 {
		return nil, contracts.NewValidationError(contracts.RuleEmptyRanking,
			"no ranking exists for period %s", period.MonthKey)
	}

	if !analysis.TopGroupContains(input.WinningSectorID) {
		return nil, contracts.NewValidationError(contracts.RuleSectorNotInTopGroup,
			"sector %d is not in the winning score group for %s", input.WinningSectorID, period.MonthKey)
	}

	tieResolution := ""
	if analysis.Ties.WinnerTieGroup != nil {
		tieResolution = input.TieResolvedBy
		if tieResolution == "" {
			tieResolution = TieResolutionDirector
		}
	}

	now := c.clock.Now()
	params := contracts.ClosePeriodParams{
		PeriodID:        period.ID,
		WinningSectorID: input.WinningSectorID,
		OfficializedBy:  input.Actor.ID,
		OfficializedAt:  now,
		TieResolution:   tieResolution,
	}

	if err := c.periods.CloseOfficial(ctx, params); err != nil {
		if errors.Is(err, contracts.ErrStatusConflict) {
			// Lost the race: the period left PRE_CLOSED underneath us.
			return nil, contracts.NewValidationError(contracts.RuleConcurrentUpdate,
				"period %d was modified concurrently, refresh and retry", period.ID)
		}
		return nil, fmt.Errorf("close period %d: %w", period.ID, err)
	}

	record := &contracts.OfficializationRecord{
		PeriodID:        period.ID,
		MonthKey:        period.MonthKey,
		WinningSectorID: input.WinningSectorID,
		OfficializedBy:  input.Actor.ID,
		OfficializedAt:  now,
		TieResolution:   tieResolution,
		Justification:   input.Justification,
	}
	if err := c.audit.RecordOfficialization(ctx, record); err != nil {
		// The closure committed; a failed audit write must not undo it.
		c.logger.WithError(err).WithField("period_id", period.ID).
			Error("Officialization audit write failed")
	}

	c.logger.WithFields(map[string]interface{}{
		"period_id":      period.ID,
		"month":          period.MonthKey,
		"winning_sector": input.WinningSectorID,
		"officialized_by": input.Actor.ID,
		"tie_resolution": tieResolution,
	}).Info("Period officialized")

	closed := *period
	closed.Status = contracts.StatusClosed
	closed.WinningSectorID = &input.WinningSectorID
	closed.OfficializedBy = &input.Actor.ID
	closed.OfficializedAt = &now
	if tieResolution != "" {
		closed.TieResolution = &tieResolution
	}
	return &closed, nil
}

// PendingOfficialization lists periods awaiting a director decision.
func (c *Controller) PendingOfficialization(ctx context.Context) ([]*contracts.CompetitionPeriod, error) {
	periods, err := c.periods.ListByStatus(ctx, contracts.StatusPreClosed)
	if err != nil {
		return nil, fmt.Errorf("list pre-closed periods: %w", err)
	}
	return periods, nil
}

// PeriodAnalysis couples a period with its freshly computed ranking.
type PeriodAnalysis struct {
	Period   *contracts.CompetitionPeriod `json:"period"`
	Analysis *contracts.RankingAnalysis   `json:"analysis"`
}

// Analysis recomputes the ranking and tie data for a period.
func (c *Controller) Analysis(ctx context.Context, periodID int64) (*PeriodAnalysis, error) {
	period, err := c.periods.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, contracts.NewValidationError(contracts.RulePeriodNotFound,
				"period %d not found", periodID)
		}
		return nil, fmt.Errorf("get period %d: %w", periodID, err)
	}

	analysis, err := c.analyzer.ComputeForMonth(ctx, period.MonthKey)
	if err != nil {
		return nil, fmt.Errorf("compute ranking for %s: %w", period.MonthKey, err)
	}

	return &PeriodAnalysis{Period: period, Analysis: analysis}, nil
}
