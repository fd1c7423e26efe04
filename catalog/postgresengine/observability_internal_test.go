package postgresengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine/internal/adapters"
	"github.com/AntonStoeckl/library-catalog/testutil/observability/testdoubles"
)

type fakeResult struct{ rowsAffected int64 }

func (r fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

type fakeTx struct {
	rowsAffected int64
	commitErr    error
	committed    bool
	rolledBack   bool
}

func (tx *fakeTx) Query(context.Context, string, ...any) (adapters.DBRows, error) {
	return nil, errors.New("not supported")
}

func (tx *fakeTx) Exec(context.Context, string, ...any) (adapters.DBResult, error) {
	return fakeResult{rowsAffected: tx.rowsAffected}, nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = tx.commitErr == nil
	return tx.commitErr
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return errors.New("tx already closed")
	}

	tx.rolledBack = true

	return nil
}

type fakeAdapter struct {
	*fakeTx
	beginErr error
}

func (a fakeAdapter) BeginTx(context.Context) (adapters.DBTx, error) {
	if a.beginErr != nil {
		return nil, a.beginErr
	}

	return a.fakeTx, nil
}

func (a fakeAdapter) Ping(context.Context) error { return nil }

func newObservedStore(t *testing.T, db adapters.DBAdapter) (
	*Store,
	*testdoubles.ContextualLoggerSpy,
	*testdoubles.MetricsCollectorSpy,
	*testdoubles.TracingCollectorSpy,
) {
	t.Helper()

	logger := testdoubles.NewContextualLoggerSpy(true)
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)

	store, err := newStore(db, []Option{WithContextualLogger(logger), WithMetrics(metrics), WithTracing(tracing)})
	require.NoError(t, err)

	return store, logger, metrics, tracing
}

func Test_WithinTx_Commits_AndRecordsSuccess(t *testing.T) {
	// arrange
	tx := &fakeTx{rowsAffected: 1}
	store, logger, metrics, tracing := newObservedStore(t, fakeAdapter{fakeTx: tx})

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos catalog.Repositories) error {
		return repos.Copies.CompareAndSetStatus(ctx, 1, catalog.CopyStatusAvailable, catalog.CopyStatusIssued)
	})

	// assert
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	assert.True(t, logger.HasInfoLog(logMsgOperation+logMsgTxCommitted))
	assert.True(t, metrics.HasDurationRecordForMetric(metricTxDuration).WithStatus(statusSuccess).Assert())
	assert.True(t, metrics.HasDurationRecordForMetric(metricStatementDuration).WithOperation(opCompareAndSetStatus).Assert())
	assert.True(t, tracing.HasSpanRecordForName(spanNameTx).WithStatus(statusSuccess).Assert())
}

func Test_WithinTx_RollsBack_AndRecordsConflict(t *testing.T) {
	// arrange
	tx := &fakeTx{rowsAffected: 0}
	store, logger, metrics, tracing := newObservedStore(t, fakeAdapter{fakeTx: tx})

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos catalog.Repositories) error {
		return repos.Copies.CompareAndSetStatus(ctx, 1, catalog.CopyStatusAvailable, catalog.CopyStatusIssued)
	})

	// assert
	assert.ErrorIs(t, err, catalog.ErrConcurrencyConflict)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	assert.True(t, logger.HasInfoLog(logMsgOperation+logMsgConcurrencyConflict))
	assert.True(t, metrics.HasCounterRecordForMetric(metricConcurrencyConflicts).WithOperation(opCompareAndSetStatus).Assert())
	assert.True(t, metrics.HasCounterRecordForMetric(metricConcurrencyConflicts).WithOperation(operationTx).Assert())
	assert.True(t, tracing.
		HasSpanRecordForName(spanNameTx).
		WithStatus(statusError).
		WithEndAttribute(spanAttrErrorType, errorTypeRolledBack).
		Assert())
}

func Test_WithinTx_ReturnsBeginError(t *testing.T) {
	// arrange
	beginErr := errors.New("too many connections")
	store, logger, metrics, _ := newObservedStore(t, fakeAdapter{fakeTx: &fakeTx{}, beginErr: beginErr})
	called := false

	// act
	err := store.WithinTx(context.Background(), func(context.Context, catalog.Repositories) error {
		called = true
		return nil
	})

	// assert
	assert.ErrorIs(t, err, catalog.ErrBeginTxFailed)
	assert.ErrorIs(t, err, beginErr)
	assert.False(t, called)
	assert.True(t, logger.HasErrorLog(logMsgBeginTxFailed))
	assert.True(t, metrics.HasCounterRecordForMetric(metricDatabaseErrors).WithErrorType(errorTypeBeginTx).Assert())
}

func Test_WithinTx_ReturnsCommitError(t *testing.T) {
	// arrange
	commitErr := errors.New("connection lost")
	store, _, _, tracing := newObservedStore(t, fakeAdapter{fakeTx: &fakeTx{commitErr: commitErr}})

	// act
	err := store.WithinTx(context.Background(), func(context.Context, catalog.Repositories) error {
		return nil
	})

	// assert
	assert.ErrorIs(t, err, catalog.ErrCommitTxFailed)
	assert.True(t, tracing.
		HasSpanRecordForName(spanNameTx).
		WithEndAttribute(spanAttrErrorType, errorTypeCommitTx).
		Assert())
}

func Test_Migrate_RunsAllStatements(t *testing.T) {
	// arrange
	tx := &fakeTx{}
	store, logger, _, _ := newObservedStore(t, fakeAdapter{fakeTx: tx})

	// act
	err := store.Migrate(context.Background())

	// assert
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.True(t, logger.HasInfoLog(logMsgOperation+logMsgSchemaApplied))
}
