package period

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/pkg/logger"
)

var testNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// memPeriodRepo is an in-memory PeriodRepository honoring the conditional
// update semantics of the real one.
type memPeriodRepo struct {
	periods  map[int64]*contracts.CompetitionPeriod
	closeErr error // forced CloseOfficial error, when set
}

func newMemPeriodRepo(periods ...*contracts.CompetitionPeriod) *memPeriodRepo {
	repo := &memPeriodRepo{periods: map[int64]*contracts.CompetitionPeriod{}}
	for _, p := range periods {
		repo.periods[p.ID] = p
	}
	return repo
}

func (r *memPeriodRepo) GetByID(ctx context.Context, id int64) (*contracts.CompetitionPeriod, error) {
	p, ok := r.periods[id]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memPeriodRepo) GetByMonthKey(ctx context.Context, monthKey string) (*contracts.CompetitionPeriod, error) {
	for _, p := range r.periods {
		if p.MonthKey == monthKey {
			copied := *p
			return &copied, nil
		}
	}
	return nil, contracts.ErrNotFound
}

func (r *memPeriodRepo) ListByStatus(ctx context.Context, status contracts.PeriodStatus) ([]*contracts.CompetitionPeriod, error) {
	var out []*contracts.CompetitionPeriod
	for _, p := range r.periods {
		if p.Status == status {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memPeriodRepo) ListActiveEndedBy(ctx context.Context, t time.Time) ([]*contracts.CompetitionPeriod, error) {
	var out []*contracts.CompetitionPeriod
	for _, p := range r.periods {
		if p.Status == contracts.StatusActive && !p.EndDate.After(t) {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memPeriodRepo) Create(ctx context.Context, period *contracts.CompetitionPeriod) error {
	period.ID = int64(len(r.periods) + 1000)
	copied := *period
	r.periods[copied.ID] = &copied
	return nil
}

func (r *memPeriodRepo) MarkPreClosed(ctx context.Context, id int64) error {
	p, ok := r.periods[id]
	if !ok || p.Status != contracts.StatusActive {
		return contracts.ErrStatusConflict
	}
	p.Status = contracts.StatusPreClosed
	return nil
}

func (r *memPeriodRepo) CloseOfficial(ctx context.Context, params contracts.ClosePeriodParams) error {
	if r.closeErr != nil {
		return r.closeErr
	}
	p, ok := r.periods[params.PeriodID]
	if !ok || p.Status != contracts.StatusPreClosed {
		return contracts.ErrStatusConflict
	}
	p.Status = contracts.StatusClosed
	p.WinningSectorID = &params.WinningSectorID
	p.OfficializedBy = &params.OfficializedBy
	at := params.OfficializedAt
	p.OfficializedAt = &at
	if params.TieResolution != "" {
		tr := params.TieResolution
		p.TieResolution = &tr
	}
	return nil
}

type fakeAnalyzer struct {
	analysis *contracts.RankingAnalysis
	err      error
}

func (f *fakeAnalyzer) ComputeForMonth(ctx context.Context, monthKey string) (*contracts.RankingAnalysis, error) {
	return f.analysis, f.err
}

type memAuditSink struct {
	officializations []*contracts.OfficializationRecord
	runs             []*contracts.TransitionRunRecord
	err              error
}

func (s *memAuditSink) RecordTransitionRun(ctx context.Context, rec *contracts.TransitionRunRecord) error {
	s.runs = append(s.runs, rec)
	return s.err
}

func (s *memAuditSink) RecordOfficialization(ctx context.Context, rec *contracts.OfficializationRecord) error {
	s.officializations = append(s.officializations, rec)
	return s.err
}

func director(id string) contracts.Principal {
	return contracts.Principal{ID: id, Roles: []string{DirectorRole}}
}

func preClosedPeriod(id int64, monthKey string) *contracts.CompetitionPeriod {
	start, end, _ := contracts.MonthBounds(monthKey)
	return &contracts.CompetitionPeriod{
		ID:        id,
		MonthKey:  monthKey,
		StartDate: start,
		EndDate:   end,
		Status:    contracts.StatusPreClosed,
	}
}

func uncontestedAnalysis(winnerID int64) *contracts.RankingAnalysis {
	return &contracts.RankingAnalysis{
		MonthKey: "2026-08",
		Entries: []*contracts.RankingEntry{
			{Rank: 1, SectorID: winnerID, SectorName: "North", TotalScore: 3.0},
			{Rank: 2, SectorID: winnerID + 1, SectorName: "South", TotalScore: 4.5},
		},
		Ties: &contracts.TieAnalysis{TiedGroups: []*contracts.TieGroup{}},
	}
}

func contestedAnalysis(ids ...int64) *contracts.RankingAnalysis {
	group := &contracts.TieGroup{Score: 3.0}
	entries := make([]*contracts.RankingEntry, 0, len(ids))
	for i, id := range ids {
		e := &contracts.RankingEntry{Rank: i + 1, SectorID: id, TotalScore: 3.0}
		entries = append(entries, e)
		group.Sectors = append(group.Sectors, e)
	}
	return &contracts.RankingAnalysis{
		MonthKey: "2026-08",
		Entries:  entries,
		Ties: &contracts.TieAnalysis{
			HasGlobalTies:  true,
			WinnerTieGroup: group,
			TiedGroups:     []*contracts.TieGroup{group},
		},
		RequiresDirectorDecision: true,
	}
}

func newTestController(repo contracts.PeriodRepository, analyzer RankingAnalyzer, audit contracts.AuditSink) *Controller {
	return NewController(repo, analyzer, RoleAuthorizer{}, audit, fixedClock{now: testNow}, logger.Nop())
}

func TestController_Officialize(t *testing.T) {
	repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
	audit := &memAuditSink{}
	ctrl := newTestController(repo, &fakeAnalyzer{analysis: uncontestedAnalysis(7)}, audit)

	closed, err := ctrl.Officialize(context.Background(), OfficializeInput{
		PeriodID:        1,
		WinningSectorID: 7,
		Actor:           director("alice"),
		Justification:   "clear monthly winner",
	})
	require.NoError(t, err)

	assert.Equal(t, contracts.StatusClosed, closed.Status)
	require.NotNil(t, closed.WinningSectorID)
	assert.Equal(t, int64(7), *closed.WinningSectorID)
	require.NotNil(t, closed.OfficializedBy)
	assert.Equal(t, "alice", *closed.OfficializedBy)
	require.NotNil(t, closed.OfficializedAt)
	assert.Equal(t, testNow, *closed.OfficializedAt)
	assert.Nil(t, closed.TieResolution)

	// The stored period matches what was returned.
	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusClosed, stored.Status)

	require.Len(t, audit.officializations, 1)
	rec := audit.officializations[0]
	assert.Equal(t, int64(1), rec.PeriodID)
	assert.Equal(t, "2026-08", rec.MonthKey)
	assert.Equal(t, "alice", rec.OfficializedBy)
	assert.Equal(t, "clear monthly winner", rec.Justification)
	assert.Empty(t, rec.TieResolution)
}

func TestController_Officialize_SecondAttemptFailsAndPreservesFirst(t *testing.T) {
	repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
	ctrl := newTestController(repo, &fakeAnalyzer{analysis: uncontestedAnalysis(7)}, &memAuditSink{})

	_, err := ctrl.Officialize(context.Background(), OfficializeInput{
		PeriodID: 1, WinningSectorID: 7, Actor: director("alice"),
	})
	require.NoError(t, err)

	_, err = ctrl.Officialize(context.Background(), OfficializeInput{
		PeriodID: 1, WinningSectorID: 8, Actor: director("bob"),
	})
	verr, ok := contracts.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, contracts.RulePeriodNotPreClosed, verr.Rule)

	// First officialization untouched.
	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", *stored.OfficializedBy)
	assert.Equal(t, int64(7), *stored.WinningSectorID)
}

func TestController_Officialize_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		periods  []*contracts.CompetitionPeriod
		analyzer *fakeAnalyzer
		input    OfficializeInput
		wantRule string
	}{
		{
			name:     "actor without director role",
			periods:  []*contracts.CompetitionPeriod{preClosedPeriod(1, "2026-08")},
			analyzer: &fakeAnalyzer{analysis: uncontestedAnalysis(7)},
			input: OfficializeInput{
				PeriodID: 1, WinningSectorID: 7,
				Actor: contracts.Principal{ID: "mallory", Roles: []string{"viewer"}},
			},
			wantRule: contracts.RuleActorNotAuthorized,
		},
		{
			name:     "missing winning sector",
			periods:  []*contracts.CompetitionPeriod{preClosedPeriod(1, "2026-08")},
			analyzer: &fakeAnalyzer{analysis: uncontestedAnalysis(7)},
			input:    OfficializeInput{PeriodID: 1, Actor: director("alice")},
			wantRule: contracts.RuleMissingWinningSector,
		},
		{
			name:     "period not found",
			periods:  nil,
			analyzer: &fakeAnalyzer{analysis: uncontestedAnalysis(7)},
			input:    OfficializeInput{PeriodID: 99, WinningSectorID: 7, Actor: director("alice")},
			wantRule: contracts.RulePeriodNotFound,
		},
		{
			name: "period still active",
			periods: []*contracts.CompetitionPeriod{{
				ID: 1, MonthKey: "2026-08", Status: contracts.StatusActive,
			}},
			analyzer: &fakeAnalyzer{analysis: uncontestedAnalysis(7)},
			input:    OfficializeInput{PeriodID: 1, WinningSectorID: 7, Actor: director("alice")},
			wantRule: contracts.RulePeriodNotPreClosed,
		},
		{
			name:    "empty ranking",
			periods: []*contracts.CompetitionPeriod{preClosedPeriod(1, "2026-08")},
			analyzer: &fakeAnalyzer{analysis: &contracts.RankingAnalysis{
				Entries: []*contracts.RankingEntry{},
				Ties:    &contracts.TieAnalysis{TiedGroups: []*contracts.TieGroup{}},
			}},
			input:    OfficializeInput{PeriodID: 1, WinningSectorID: 7, Actor: director("alice")},
			wantRule: contracts.RuleEmptyRanking,
		},
		{
			name:     "winner outside the top score group",
			periods:  []*contracts.CompetitionPeriod{preClosedPeriod(1, "2026-08")},
			analyzer: &fakeAnalyzer{analysis: uncontestedAnalysis(7)},
			input:    OfficializeInput{PeriodID: 1, WinningSectorID: 8, Actor: director("alice")},
			wantRule: contracts.RuleSectorNotInTopGroup,
		},
		{
			name:     "contested winner picked outside the tie group",
			periods:  []*contracts.CompetitionPeriod{preClosedPeriod(1, "2026-08")},
			analyzer: &fakeAnalyzer{analysis: contestedAnalysis(7, 8)},
			input:    OfficializeInput{PeriodID: 1, WinningSectorID: 9, Actor: director("alice")},
			wantRule: contracts.RuleSectorNotInTopGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemPeriodRepo(tt.periods...)
			audit := &memAuditSink{}
			ctrl := newTestController(repo, tt.analyzer, audit)

			_, err := ctrl.Officialize(context.Background(), tt.input)
			verr, ok := contracts.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.wantRule, verr.Rule)

			// Rejections never mutate state or write audit entries.
			assert.Empty(t, audit.officializations)
			for _, p := range tt.periods {
				stored, err := repo.GetByID(context.Background(), p.ID)
				require.NoError(t, err)
				assert.NotEqual(t, contracts.StatusClosed, stored.Status)
			}
		})
	}
}

func TestController_Officialize_TieResolution(t *testing.T) {
	t.Run("explicit marker is preserved", func(t *testing.T) {
		repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
		audit := &memAuditSink{}
		ctrl := newTestController(repo, &fakeAnalyzer{analysis: contestedAnalysis(7, 8)}, audit)

		closed, err := ctrl.Officialize(context.Background(), OfficializeInput{
			PeriodID: 1, WinningSectorID: 8, Actor: director("alice"),
			TieResolvedBy: "COMMITTEE_VOTE",
		})
		require.NoError(t, err)
		require.NotNil(t, closed.TieResolution)
		assert.Equal(t, "COMMITTEE_VOTE", *closed.TieResolution)
	})

	t.Run("contested win without marker defaults to director decision", func(t *testing.T) {
		repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
		ctrl := newTestController(repo, &fakeAnalyzer{analysis: contestedAnalysis(7, 8)}, &memAuditSink{})

		closed, err := ctrl.Officialize(context.Background(), OfficializeInput{
			PeriodID: 1, WinningSectorID: 7, Actor: director("alice"),
		})
		require.NoError(t, err)
		require.NotNil(t, closed.TieResolution)
		assert.Equal(t, TieResolutionDirector, *closed.TieResolution)
	})

	t.Run("uncontested win ignores the marker", func(t *testing.T) {
		repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
		ctrl := newTestController(repo, &fakeAnalyzer{analysis: uncontestedAnalysis(7)}, &memAuditSink{})

		closed, err := ctrl.Officialize(context.Background(), OfficializeInput{
			PeriodID: 1, WinningSectorID: 7, Actor: director("alice"),
			TieResolvedBy: "COMMITTEE_VOTE",
		})
		require.NoError(t, err)
		assert.Nil(t, closed.TieResolution)
	})
}

func TestController_Officialize_ConcurrentClose(t *testing.T) {
	repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
	repo.closeErr = contracts.ErrStatusConflict
	ctrl := newTestController(repo, &fakeAnalyzer{analysis: uncontestedAnalysis(7)}, &memAuditSink{})

	_, err := ctrl.Officialize(context.Background(), OfficializeInput{
		PeriodID: 1, WinningSectorID: 7, Actor: director("alice"),
	})
	verr, ok := contracts.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, contracts.RuleConcurrentUpdate, verr.Rule)
}

func TestController_Officialize_AuditFailureDoesNotUndoClose(t *testing.T) {
	repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
	audit := &memAuditSink{err: errors.New("audit store down")}
	ctrl := newTestController(repo, &fakeAnalyzer{analysis: uncontestedAnalysis(7)}, audit)

	closed, err := ctrl.Officialize(context.Background(), OfficializeInput{
		PeriodID: 1, WinningSectorID: 7, Actor: director("alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusClosed, closed.Status)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusClosed, stored.Status)
}

func TestController_PendingOfficialization(t *testing.T) {
	repo := newMemPeriodRepo(
		preClosedPeriod(1, "2026-07"),
		&contracts.CompetitionPeriod{ID: 2, MonthKey: "2026-08", Status: contracts.StatusActive},
		&contracts.CompetitionPeriod{ID: 3, MonthKey: "2026-06", Status: contracts.StatusClosed},
	)
	ctrl := newTestController(repo, &fakeAnalyzer{}, &memAuditSink{})

	pending, err := ctrl.PendingOfficialization(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
}

func TestController_Analysis(t *testing.T) {
	repo := newMemPeriodRepo(preClosedPeriod(1, "2026-08"))
	ctrl := newTestController(repo, &fakeAnalyzer{analysis: uncontestedAnalysis(7)}, &memAuditSink{})

	got, err := ctrl.Analysis(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Period.ID)
	assert.Len(t, got.Analysis.Entries, 2)

	_, err = ctrl.Analysis(context.Background(), 42)
	verr, ok := contracts.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, contracts.RulePeriodNotFound, verr.Rule)
}
