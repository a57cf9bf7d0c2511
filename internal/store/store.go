package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scanimport/api/schemas"
)

//go:embed schema.sql
var schemaSQL string

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// findingColumns is the column order used by COPY into the findings table.
var findingColumns = []string{
	"id", "test_id", "title", "unique_id_from_tool", "component_name", "severity", "date",
	"description", "mitigation", "static_finding", "dynamic_finding", "nb_occurences", "cwe",
}

const (
	sqlUpsertTest = `
        INSERT INTO tests (id, title, scan_type, engagement_id, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            scan_type = EXCLUDED.scan_type,
            engagement_id = EXCLUDED.engagement_id,
            updated_at = EXCLUDED.updated_at;
    `
	sqlInsertImport = `
        INSERT INTO imports (id, test_id, source_file, finding_count, imported_at)
        VALUES ($1, $2, $3, $4, $5);
    `
	sqlFindingsByTest = `
        SELECT id, title, unique_id_from_tool, component_name, severity, date, description, mitigation, static_finding, dynamic_finding, nb_occurences, cwe
        FROM findings
        WHERE test_id = $1
        ORDER BY date ASC, id ASC;
    `
)

// ErrNoTest is returned when an envelope carries no destination test.
var ErrNoTest = errors.New("result envelope has no destination test")

// Store provides a PostgreSQL implementation of schemas.Store.
type Store struct {
	pool DBPool
	log  *zap.Logger
	now  func() time.Time
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
		now:  time.Now,
	}, nil
}

// EnsureSchema creates the tables the store writes to if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.log.Debug("Database schema is up to date")
	return nil
}

// PersistData records the destination test, an import entry and every finding
// of the envelope in a single transaction.
func (s *Store) PersistData(ctx context.Context, envelope *schemas.ResultEnvelope) error {
	if envelope == nil || envelope.Test == nil {
		return ErrNoTest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit reports ErrTxClosed, which is expected.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := s.persistImport(ctx, tx, envelope); err != nil {
		return err
	}

	if len(envelope.Findings) > 0 {
		if err := s.persistFindings(ctx, tx, envelope.Test.ID, envelope.Findings); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("Persisted import",
		zap.String("test_id", envelope.Test.ID),
		zap.String("source_file", envelope.SourceFile),
		zap.Int("findings", len(envelope.Findings)))
	return nil
}

// persistImport upserts the test and appends the import entry in one batch.
func (s *Store) persistImport(ctx context.Context, tx pgx.Tx, envelope *schemas.ResultEnvelope) error {
	now := s.now().UTC()
	test := envelope.Test

	batch := &pgx.Batch{}
	batch.Queue(sqlUpsertTest, test.ID, test.Title, test.ScanType, test.EngagementID, now)
	batch.Queue(sqlInsertImport, uuid.NewString(), test.ID, envelope.SourceFile, len(envelope.Findings), now)

	br := tx.SendBatch(ctx, batch)
	if br == nil {
		return fmt.Errorf("failed to send batch: batch results is nil")
	}
	defer func() {
		_ = br.Close()
	}()

	if _, err := br.Exec(); err != nil {
		return fmt.Errorf("failed to upsert test %s: %w", test.ID, err)
	}
	if _, err := br.Exec(); err != nil {
		return fmt.Errorf("failed to record import of %s: %w", envelope.SourceFile, err)
	}
	return nil
}

func (s *Store) persistFindings(ctx context.Context, tx pgx.Tx, testID string, findings []schemas.Finding) error {
	rows := make([][]interface{}, len(findings))
	for i, f := range findings {
		id := f.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows[i] = []interface{}{
			id, testID, f.Title, f.UniqueIDFromTool, f.ComponentName,
			string(f.Severity), f.Date.UTC(), f.Description, f.Mitigation,
			f.StaticFinding, f.DynamicFinding, f.NbOccurences, f.CWE,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"findings"},
		findingColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy findings: %w", err)
	}
	if int(copyCount) != len(findings) {
		return fmt.Errorf("mismatch in copied findings count: expected %d, got %d", len(findings), copyCount)
	}
	return nil
}

// GetFindingsByTestID loads the findings stored for a test, oldest first. All
// returned findings share one Test value carrying only the ID.
func (s *Store) GetFindingsByTestID(ctx context.Context, testID string) ([]schemas.Finding, error) {
	rows, err := s.pool.Query(ctx, sqlFindingsByTest, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	test := &schemas.Test{ID: testID}
	var findings []schemas.Finding
	for rows.Next() {
		f := schemas.Finding{Test: test}
		var severity string

		err := rows.Scan(
			&f.ID, &f.Title, &f.UniqueIDFromTool, &f.ComponentName,
			&severity, &f.Date, &f.Description, &f.Mitigation,
			&f.StaticFinding, &f.DynamicFinding, &f.NbOccurences, &f.CWE,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding row: %w", err)
		}
		f.Severity = schemas.Severity(severity)
		findings = append(findings, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return findings, nil
}
