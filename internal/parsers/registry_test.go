package parsers_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/mocks"
	"github.com/xkilldash9x/scanimport/internal/parsers"
	"github.com/xkilldash9x/scanimport/internal/parsers/awsprisma"
)

// stubParser is a minimal schemas.Parser for registry tests.
type stubParser struct {
	types []string
}

func (s stubParser) ScanTypes() []string                     { return s.types }
func (s stubParser) LabelForScanType(st string) string       { return st + " label" }
func (s stubParser) DescriptionForScanType(st string) string { return st + " description" }
func (s stubParser) GetFindings(schemas.NamedReader, *schemas.Test) ([]schemas.Finding, error) {
	return []schemas.Finding{}, nil
}

func TestDefault(t *testing.T) {
	r, err := parsers.Default(zaptest.NewLogger(t), config.NewDefaultConfig().Importer())
	require.NoError(t, err)

	assert.Equal(t, []string{awsprisma.ScanType}, r.ScanTypes())

	p, err := r.Get("AWS Prisma CSV")
	require.NoError(t, err)
	assert.IsType(t, &awsprisma.Parser{}, p)

	assert.Equal(t, []parsers.ScanTypeInfo{{
		Name:        "AWS Prisma CSV",
		Label:       "AWS Prisma CSV",
		Description: "AWS Prisma CSV format.",
	}}, r.Describe())
}

func TestDefault_PassesImporterSettings(t *testing.T) {
	cfg := config.ImporterConfig{DefaultScanType: awsprisma.ScanType, LenientDates: true, TitleMaxLength: 16}
	r, err := parsers.Default(zap.NewNop(), cfg)
	require.NoError(t, err)

	p, err := r.Get(awsprisma.ScanType)
	require.NoError(t, err)

	input := strings.Join([]string{
		"Alert Status,Policy Name,Resource ID,Alert Time",
		"open,Open Port,i-123,Jan 02 2024",
		"open,Other,i-456,garbage",
	}, "\n")
	findings, err := p.GetFindings(named{strings.NewReader(input), "x.csv"}, &schemas.Test{ID: "t"})
	require.NoError(t, err, "lenient dates skip the bad row")
	require.Len(t, findings, 1)
	assert.Equal(t, "Open Port [...]", findings[0].Title)
}

func TestRegistry_Get(t *testing.T) {
	r := parsers.NewRegistry(zap.NewNop())
	require.NoError(t, r.Register(stubParser{types: []string{"Stub"}}))

	_, err := r.Get("Stub")
	assert.NoError(t, err)

	_, err = r.Get("stub")
	assert.ErrorIs(t, err, parsers.ErrUnknownScanType, "lookups are exact")

	_, err = r.Get("Nessus XML")
	assert.ErrorIs(t, err, parsers.ErrUnknownScanType)
	assert.Contains(t, err.Error(), `"Nessus XML"`)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("multiple scan types and sorted listing", func(t *testing.T) {
		r := parsers.NewRegistry(zap.NewNop())
		require.NoError(t, r.Register(stubParser{types: []string{"Zeta", "Alpha"}}))
		require.NoError(t, r.Register(stubParser{types: []string{"Mid"}}))

		assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, r.ScanTypes())

		infos := r.Describe()
		require.Len(t, infos, 3)
		assert.Equal(t, "Alpha label", infos[0].Label)
		assert.Equal(t, "Zeta description", infos[2].Description)
	})

	t.Run("duplicate is rejected atomically", func(t *testing.T) {
		r := parsers.NewRegistry(zap.NewNop())
		require.NoError(t, r.Register(stubParser{types: []string{"A"}}))

		err := r.Register(stubParser{types: []string{"B", "A"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")

		_, err = r.Get("B")
		assert.ErrorIs(t, err, parsers.ErrUnknownScanType, "nothing from the failed registration is kept")
	})

	t.Run("parser without scan types is rejected", func(t *testing.T) {
		r := parsers.NewRegistry(zap.NewNop())
		assert.Error(t, r.Register(stubParser{}))
		assert.Empty(t, r.ScanTypes())
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := parsers.NewRegistry(zap.NewNop())
	require.NoError(t, r.Register(awsprisma.New()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := r.Get(awsprisma.ScanType)
			assert.NoError(t, err)
			assert.NotNil(t, p)
			assert.NotEmpty(t, r.Describe())
		}()
	}
	wg.Wait()
}

type named struct {
	*strings.Reader
	name string
}

func (n named) Name() string { return n.name }

func TestRegistry_DescribeMockedParser(t *testing.T) {
	m := new(mocks.MockParser)
	m.On("ScanTypes").Return([]string{"Zeta Scan", "Alpha Scan"})
	m.On("LabelForScanType", mock.Anything).Return("Label")
	m.On("DescriptionForScanType", "Alpha Scan").Return("Alpha export.")
	m.On("DescriptionForScanType", "Zeta Scan").Return("Zeta export.")

	r := parsers.NewRegistry(zap.NewNop())
	require.NoError(t, r.Register(m))

	assert.Equal(t, []parsers.ScanTypeInfo{
		{Name: "Alpha Scan", Label: "Label", Description: "Alpha export."},
		{Name: "Zeta Scan", Label: "Label", Description: "Zeta export."},
	}, r.Describe())
	m.AssertExpectations(t)
}
