// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/scanimport/api/schemas"
	"github.com/xkilldash9x/scanimport/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Database() config.DatabaseConfig {
	args := m.Called()
	return args.Get(0).(config.DatabaseConfig)
}

func (m *MockConfig) Importer() config.ImporterConfig {
	args := m.Called()
	return args.Get(0).(config.ImporterConfig)
}

func (m *MockConfig) Report() config.ReportConfig {
	args := m.Called()
	return args.Get(0).(config.ReportConfig)
}

// --- Setters ---

func (m *MockConfig) SetImporterScanType(scanType string) {
	m.Called(scanType)
}

func (m *MockConfig) SetImporterLenientDates(b bool) {
	m.Called(b)
}

func (m *MockConfig) SetReportFormat(format string) {
	m.Called(format)
}

func (m *MockConfig) SetReportOutput(path string) {
	m.Called(path)
}

// -- Store Mock --

// MockStore mocks the schemas.Store interface.
type MockStore struct {
	mock.Mock
}

// PersistData provides a mock function for persisting result envelopes.
func (m *MockStore) PersistData(ctx context.Context, data *schemas.ResultEnvelope) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// GetFindingsByTestID provides a mock function for retrieving findings.
func (m *MockStore) GetFindingsByTestID(ctx context.Context, testID string) ([]schemas.Finding, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schemas.Finding), args.Error(1)
}

// -- Parser Mock --

// MockParser mocks the schemas.Parser interface.
type MockParser struct {
	mock.Mock
}

func (m *MockParser) ScanTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockParser) LabelForScanType(scanType string) string {
	args := m.Called(scanType)
	return args.String(0)
}

func (m *MockParser) DescriptionForScanType(scanType string) string {
	args := m.Called(scanType)
	return args.String(0)
}

func (m *MockParser) GetFindings(file schemas.NamedReader, test *schemas.Test) ([]schemas.Finding, error) {
	args := m.Called(file, test)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schemas.Finding), args.Error(1)
}

// -- Reporter Mock --

// MockReporter mocks reporting.Reporter.
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Write(result *schemas.ResultEnvelope) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockReporter) Close() error {
	args := m.Called()
	return args.Error(0)
}
