package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/mocks"
	"github.com/xkilldash9x/scanimport/internal/reporting"
)

// The mocks must keep satisfying the interfaces they stand in for.
var (
	_ config.Interface   = (*mocks.MockConfig)(nil)
	_ schemas.Store      = (*mocks.MockStore)(nil)
	_ schemas.Parser     = (*mocks.MockParser)(nil)
	_ reporting.Reporter = (*mocks.MockReporter)(nil)
)

func TestMockStore_NilFindings(t *testing.T) {
	m := new(mocks.MockStore)
	lookupErr := errors.New("not found")
	m.On("GetFindingsByTestID", mock.Anything, "missing").Return(nil, lookupErr)

	findings, err := m.GetFindingsByTestID(context.Background(), "missing")
	assert.Nil(t, findings)
	assert.ErrorIs(t, err, lookupErr)
	m.AssertExpectations(t)
}

func TestMockParser_ReturnsConfiguredFindings(t *testing.T) {
	m := new(mocks.MockParser)
	want := []schemas.Finding{{Title: "t"}}
	m.On("GetFindings", mock.Anything, mock.Anything).Return(want, nil)
	m.On("ScanTypes").Return([]string{"Stub"})

	got, err := m.GetFindings(nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"Stub"}, m.ScanTypes())
	m.AssertExpectations(t)
}
