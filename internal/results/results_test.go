package results

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/mocks"
)

// MockCWEProvider mocks the CWEProvider interface.
type MockCWEProvider struct {
	mock.Mock
}

func (m *MockCWEProvider) GetFullName(ctx context.Context, cweID string) (string, bool) {
	args := m.Called(ctx, cweID)
	return args.String(0), args.Bool(1)
}

func newFinding(id string, severity schemas.Severity, cwe int) schemas.Finding {
	return schemas.Finding{
		ID:               id,
		UniqueIDFromTool: id,
		Severity:         severity,
		CWE:              cwe,
	}
}

func findingIDs(findings []schemas.Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestPrioritize(t *testing.T) {
	findings := []schemas.Finding{
		newFinding("low-1", schemas.SeverityLow, 1032),
		newFinding("odd", schemas.Severity("Élevé"), 1032),
		newFinding("crit", schemas.SeverityCritical, 1032),
		newFinding("low-2", schemas.SeverityLow, 1032),
		newFinding("info", schemas.SeverityInfo, 1032),
		newFinding("high", schemas.SeverityHigh, 1032),
	}

	Prioritize(findings)

	assert.Equal(t, []string{"crit", "high", "low-1", "low-2", "info", "odd"}, findingIDs(findings),
		"most severe first, stable within a severity, unknown severities last")
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]schemas.Finding{
		newFinding("a", schemas.SeverityHigh, 1032),
		newFinding("b", schemas.SeverityHigh, 1032),
		newFinding("c", schemas.SeverityInfo, 1032),
	})

	assert.Equal(t, Summary{
		Total:      3,
		BySeverity: map[string]int{"High": 2, "Info": 1},
	}, summary)

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.BySeverity)
}

func TestEnricher_Weaknesses(t *testing.T) {
	ctx := context.Background()
	provider := new(MockCWEProvider)
	provider.On("GetFullName", ctx, "CWE-1032").Return("Security Misconfiguration", true).Once()
	provider.On("GetFullName", ctx, "CWE-999").Return("", false).Once()

	enricher := NewEnricher(provider, zap.NewNop())
	weaknesses, err := enricher.Weaknesses(ctx, []schemas.Finding{
		newFinding("a", schemas.SeverityHigh, 1032),
		newFinding("b", schemas.SeverityLow, 1032),
		newFinding("c", schemas.SeverityLow, 999),
		newFinding("d", schemas.SeverityLow, 0),
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"CWE-1032": "Security Misconfiguration"}, weaknesses)
	// Each CWE is resolved once.
	provider.AssertExpectations(t)
}

func TestEnricher_NilProvider(t *testing.T) {
	weaknesses, err := NewEnricher(nil, zap.NewNop()).Weaknesses(context.Background(), []schemas.Finding{
		newFinding("a", schemas.SeverityHigh, 1032),
	})
	require.NoError(t, err)
	assert.Empty(t, weaknesses)
}

func TestEnricher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := new(MockCWEProvider)
	_, err := NewEnricher(provider, zap.NewNop()).Weaknesses(ctx, []schemas.Finding{
		newFinding("a", schemas.SeverityHigh, 1032),
	})
	assert.ErrorIs(t, err, context.Canceled)
	provider.AssertNotCalled(t, "GetFullName", mock.Anything, mock.Anything)
}

func TestPipeline_Process(t *testing.T) {
	ctx := context.Background()
	test := &schemas.Test{ID: "test-42", Title: "Nightly", ScanType: "AWS Prisma CSV"}

	low := newFinding("low", schemas.SeverityLow, 1032)
	low.Test = test
	crit := newFinding("crit", schemas.SeverityCritical, 1032)
	crit.Test = test

	store := new(mocks.MockStore)
	store.On("GetFindingsByTestID", ctx, "test-42").Return([]schemas.Finding{low, crit}, nil).Once()

	report, err := NewPipeline(store, zap.NewNop()).Process(ctx, "test-42")
	require.NoError(t, err)

	assert.Same(t, test, report.Test)
	assert.Equal(t, []string{"crit", "low"}, findingIDs(report.Findings))
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, map[string]int{"Critical": 1, "Low": 1}, report.Summary.BySeverity)
	assert.Equal(t, map[string]string{
		"CWE-1032": "OWASP Top Ten 2017 Category A6 - Security Misconfiguration",
	}, report.Weaknesses)
	store.AssertExpectations(t)
}

func TestPipeline_ProcessEmpty(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)
	store.On("GetFindingsByTestID", ctx, "none").Return(nil, nil)

	report, err := NewPipeline(store, zap.NewNop()).Process(ctx, "none")
	require.NoError(t, err)

	assert.Equal(t, &schemas.Test{ID: "none"}, report.Test)
	assert.NotNil(t, report.Findings)
	assert.Empty(t, report.Findings)
	assert.Zero(t, report.Summary.Total)
}

func TestPipeline_ProcessStoreError(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)
	store.On("GetFindingsByTestID", ctx, "test-42").Return(nil, errors.New("connection reset"))

	_, err := NewPipeline(store, zap.NewNop()).Process(ctx, "test-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
