package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polytrack/internal/application/ledger"
	"github.com/alejandrodnm/polytrack/internal/domain"
)

type stubProvider struct {
	markets   []domain.MarketSnapshot
	byID      map[string]*domain.MarketSnapshot
	listErr   error
	listCalls int
	byIDCalls int
}

func (p *stubProvider) ListActiveMarkets(ctx context.Context) ([]domain.MarketSnapshot, error) {
	p.listCalls++
	return p.markets, p.listErr
}

func (p *stubProvider) GetMarketByID(ctx context.Context, id string) (*domain.MarketSnapshot, error) {
	p.byIDCalls++
	return p.byID[id], nil
}

type stubFinder struct {
	opp *domain.Opportunity
}

func (f *stubFinder) Find(markets []domain.MarketSnapshot, excluded map[string]bool) *domain.Opportunity {
	if f.opp != nil && excluded[f.opp.Market.ID] {
		return nil
	}
	return f.opp
}

type recordingNotifier struct {
	opened  []domain.Position
	settled []domain.Position
	status  int
	final   int
}

func (n *recordingNotifier) PositionOpened(pos domain.Position, available float64) {
	n.opened = append(n.opened, pos)
}

func (n *recordingNotifier) PositionSettled(pos domain.Position, capital float64) {
	n.settled = append(n.settled, pos)
}

func (n *recordingNotifier) StatusReport(st domain.TrackerState) { n.status++ }
func (n *recordingNotifier) FinalReport(st domain.TrackerState, settled []domain.Position) {
	n.final++
}

type recordingArchive struct {
	saved []domain.Position
	err   error
}

func (a *recordingArchive) SaveSettled(ctx context.Context, pos domain.Position) error {
	a.saved = append(a.saved, pos)
	return a.err
}

func (a *recordingArchive) ListSettled(ctx context.Context) ([]domain.Position, error) {
	return a.saved, nil
}

type memStore struct{ saves int }

func (s *memStore) Save(st domain.TrackerState) error         { s.saves++; return nil }
func (s *memStore) Load() (*domain.TrackerState, bool, error) { return nil, false, nil }

type memLog struct{}

func (l *memLog) Append(t domain.TradeEventType, pos domain.Position) error { return nil }

func ledgerConfig() ledger.Config {
	return ledger.Config{
		InitialCapital:      100,
		MinTradeSpacing:     60 * time.Second,
		MaxTradesPerHour:    5,
		MinPositionSize:     5.0,
		MaxPositionFraction: 0.15,
		KellyMultiplier:     2.5,
		KellyCap:            0.10,
	}
}

func engineConfig() Config {
	return Config{
		PollInterval:            30 * time.Second,
		SettlementCheckInterval: 60 * time.Second,
		StatusReportInterval:    600 * time.Second,
	}
}

func testOpportunity() *domain.Opportunity {
	return &domain.Opportunity{
		Market: domain.MarketSnapshot{ID: "mkt-1", Question: "?", Volume: 80000},
		Side:   domain.SideYes,
		Price:  0.30,
		Edge:   0.05,
	}
}

func TestCycleOpensAndNotifies(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	led := ledger.New(ledgerConfig(), &memStore{}, &memLog{}, start)
	provider := &stubProvider{markets: []domain.MarketSnapshot{{ID: "mkt-1"}}}
	notifier := &recordingNotifier{}
	e := New(provider, &stubFinder{opp: testOpportunity()}, led, nil, notifier, engineConfig())

	e.cycle(context.Background(), start)

	require.Len(t, notifier.opened, 1)
	assert.Equal(t, "mkt-1", notifier.opened[0].MarketID)
	assert.Len(t, led.OpenPositions(), 1)

	// Same market is excluded on the next cycle; spacing blocks others anyway.
	e.cycle(context.Background(), start.Add(30*time.Second))
	assert.Len(t, notifier.opened, 1)
}

func TestCycleSkipsScanOnListError(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	led := ledger.New(ledgerConfig(), &memStore{}, &memLog{}, start)
	provider := &stubProvider{listErr: errors.New("gamma down")}
	notifier := &recordingNotifier{}
	e := New(provider, &stubFinder{opp: testOpportunity()}, led, nil, notifier, engineConfig())

	e.cycle(context.Background(), start)

	assert.Empty(t, notifier.opened)
	assert.Empty(t, led.OpenPositions())
	assert.Equal(t, 1, provider.listCalls)
}

func TestSettlementCheckIsRateLimited(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	led := ledger.New(ledgerConfig(), &memStore{}, &memLog{}, start)
	provider := &stubProvider{
		markets: []domain.MarketSnapshot{{ID: "mkt-1"}},
		byID:    map[string]*domain.MarketSnapshot{"mkt-1": {ID: "mkt-1"}},
	}
	notifier := &recordingNotifier{}
	e := New(provider, &stubFinder{opp: testOpportunity()}, led, nil, notifier, engineConfig())

	e.cycle(context.Background(), start) // opens mkt-1, first settlement check has nothing open
	require.Len(t, led.OpenPositions(), 1)

	// 30s later: below the 60s settlement interval, no lookup.
	e.cycle(context.Background(), start.Add(30*time.Second))
	assert.Equal(t, 0, provider.byIDCalls)

	// 60s later: check runs, market still unresolved.
	e.cycle(context.Background(), start.Add(60*time.Second))
	assert.Equal(t, 1, provider.byIDCalls)
	assert.Len(t, led.OpenPositions(), 1)
}

func TestCycleSettlesArchivesAndNotifies(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	led := ledger.New(ledgerConfig(), &memStore{}, &memLog{}, start)
	provider := &stubProvider{
		markets: []domain.MarketSnapshot{{ID: "mkt-1"}},
		byID:    map[string]*domain.MarketSnapshot{"mkt-1": {ID: "mkt-1"}},
	}
	notifier := &recordingNotifier{}
	archive := &recordingArchive{}
	e := New(provider, &stubFinder{opp: testOpportunity()}, led, archive, notifier, engineConfig())

	e.cycle(context.Background(), start)
	require.Len(t, led.OpenPositions(), 1)

	provider.byID["mkt-1"] = &domain.MarketSnapshot{ID: "mkt-1", Resolved: true, ResolvedOutcome: "Yes"}
	e.cycle(context.Background(), start.Add(60*time.Second))

	require.Len(t, notifier.settled, 1)
	assert.Equal(t, domain.StatusSettled, notifier.settled[0].Status)
	require.Len(t, archive.saved, 1)
	assert.Equal(t, notifier.settled[0].ID, archive.saved[0].ID)
	assert.Empty(t, led.OpenPositions())
}

func TestStatusReportIsRateLimited(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	led := ledger.New(ledgerConfig(), &memStore{}, &memLog{}, start)
	provider := &stubProvider{}
	notifier := &recordingNotifier{}
	e := New(provider, &stubFinder{}, led, nil, notifier, engineConfig())

	e.cycle(context.Background(), start)
	assert.Equal(t, 0, notifier.status)

	e.cycle(context.Background(), start.Add(5*time.Minute))
	assert.Equal(t, 0, notifier.status)

	e.cycle(context.Background(), start.Add(10*time.Minute))
	assert.Equal(t, 1, notifier.status)
}

func TestRunEmitsFinalReportOnDeadline(t *testing.T) {
	led := ledger.New(ledgerConfig(), &memStore{}, &memLog{}, time.Now())
	provider := &stubProvider{}
	notifier := &recordingNotifier{}
	cfg := Config{
		PollInterval:            10 * time.Millisecond,
		SettlementCheckInterval: time.Hour,
		StatusReportInterval:    time.Hour,
	}
	e := New(provider, &stubFinder{}, led, nil, notifier, cfg)

	err := e.Run(context.Background(), 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.final)
	assert.GreaterOrEqual(t, provider.listCalls, 1)
}

func TestRunEmitsFinalReportOnCancel(t *testing.T) {
	led := ledger.New(ledgerConfig(), &memStore{}, &memLog{}, time.Now())
	provider := &stubProvider{}
	notifier := &recordingNotifier{}
	cfg := Config{
		PollInterval:            time.Hour,
		SettlementCheckInterval: time.Hour,
		StatusReportInterval:    time.Hour,
	}
	e := New(provider, &stubFinder{}, led, nil, notifier, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Run(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.final)
}
