package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/internal/scoring"
	"github.com/wonny/copa/pkg/logger"
	"github.com/wonny/copa/pkg/redis"
)

// Service runs the full ranking computation for a month: score every
// active criterion, aggregate points, analyze ties. It is the single
// entry point collaborators use to obtain a RankingAnalysis.
type Service struct {
	sectors     contracts.SectorRepository
	criteria    contracts.CriterionRepository
	performance contracts.PerformanceRepository
	targets     contracts.TargetRepository

	calculator *scoring.Calculator
	aggregator *Aggregator
	ties       *TieAnalyzer

	cache    *redis.Cache // optional read cache; nil disables caching
	cacheTTL time.Duration
	clock    contracts.Clock
	logger   *logger.Logger
}

// NewService creates a ranking service. Pass a nil cache to disable the
// read cache.
func NewService(
	sectors contracts.SectorRepository,
	criteria contracts.CriterionRepository,
	performance contracts.PerformanceRepository,
	targets contracts.TargetRepository,
	cache *redis.Cache,
	cacheTTL time.Duration,
	clock contracts.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		sectors:     sectors,
		criteria:    criteria,
		performance: performance,
		targets:     targets,
		calculator:  scoring.NewCalculator(log),
		aggregator:  NewAggregator(log),
		ties:        NewTieAnalyzer(),
		cache:       cache,
		cacheTTL:    cacheTTL,
		clock:       clock,
		logger:      log,
	}
}

// ComputeForMonth recomputes the ranking for a month from the source of
// truth, bypassing any cache. The evaluation date is the last day of
// the month. Officialization always goes through this path.
func (s *Service) ComputeForMonth(ctx context.Context, monthKey string) (*contracts.RankingAnalysis, error) {
	_, evalDate, err := contracts.MonthBounds(monthKey)
	if err != nil {
		return nil, contracts.NewValidationError(contracts.RuleInvalidMonthKey, "invalid month key %q", monthKey)
	}

	sectors, err := s.sectors.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sectors: %w", err)
	}

	criteria, err := s.criteria.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active criteria: %w", err)
	}

	analysis := &contracts.RankingAnalysis{
		MonthKey:       monthKey,
		EvaluationDate: evalDate,
		GeneratedAt:    s.clock.Now(),
		Entries:        []*contracts.RankingEntry{},
		Results:        []*contracts.ScoredResult{},
		Ties:           s.ties.Analyze(nil),
	}

	// No competitors or no dimensions to compete on: empty ranking,
	// not an error.
	if len(sectors) == 0 || len(criteria) == 0 {
		s.logger.WithFields(map[string]interface{}{
			"month":    monthKey,
			"sectors":  len(sectors),
			"criteria": len(criteria),
		}).Warn("Ranking computed over empty inputs")
		return analysis, nil
	}

	records, err := s.performance.GetForDate(ctx, evalDate)
	if err != nil {
		return nil, fmt.Errorf("get performance records: %w", err)
	}

	targets, err := s.targets.GetInEffect(ctx, evalDate)
	if err != nil {
		return nil, fmt.Errorf("get target values: %w", err)
	}

	// Realized values keyed per criterion, then per sector.
	realized := make(map[int64]scoring.RealizedValues, len(criteria))
	for _, record := range records {
		if _, ok := realized[record.CriterionID]; !ok {
			realized[record.CriterionID] = scoring.RealizedValues{}
		}
		realized[record.CriterionID][record.SectorID] = record.Value
	}

	for _, criterion := range criteria {
		results := s.calculator.Score(criterion, sectors, realized[criterion.ID], targets, evalDate)
		analysis.Results = append(analysis.Results, results...)
	}

	analysis.Entries = s.aggregator.Aggregate(sectors, analysis.Results)
	analysis.Ties = s.ties.Analyze(analysis.Entries)
	analysis.RequiresDirectorDecision = analysis.Ties.WinnerTieGroup != nil

	s.logger.WithFields(map[string]interface{}{
		"month":             monthKey,
		"entries":           len(analysis.Entries),
		"has_ties":          analysis.Ties.HasGlobalTies,
		"director_decision": analysis.RequiresDirectorDecision,
	}).Info("Ranking computed")

	return analysis, nil
}

// AnalysisForMonth returns the ranking for a month, served from the
// read cache when possible. Read-only consumers use this path.
func (s *Service) AnalysisForMonth(ctx context.Context, monthKey string) (*contracts.RankingAnalysis, error) {
	if s.cache != nil {
		var cached contracts.RankingAnalysis
		hit, err := s.cache.Get(ctx, monthKey, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Ranking cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	analysis, err := s.ComputeForMonth(ctx, monthKey)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, monthKey, analysis, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Ranking cache write failed")
		}
	}

	return analysis, nil
}

// InvalidateMonth drops the cached analysis for a month. Called after
// officialization so readers see the closed period's final state.
func (s *Service) InvalidateMonth(ctx context.Context, monthKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, monthKey); err != nil {
		s.logger.WithError(err).Warn("Ranking cache invalidation failed")
	}
}
