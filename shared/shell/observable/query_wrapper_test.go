package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/shared/shell"
	"github.com/AntonStoeckl/library-catalog/shared/shell/observable"
	. "github.com/AntonStoeckl/library-catalog/testutil/observability/testdoubles" //nolint:revive
)

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	handler := &mockQueryHandler{result: 3}
	metricsCollector := NewMetricsCollectorSpy(true)
	tracingCollector := NewTracingCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, int](
		handler,
		observable.WithQueryMetrics[mockQuery, int](metricsCollector),
		observable.WithQueryTracing[mockQuery, int](tracingCollector),
		observable.WithQueryContextualLogging[mockQuery, int](contextualLogger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, result)
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, tracingCollector.HasSpanRecordForName(shell.SpanNameQueryHandle).
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, contextualLogger.HasInfoLog(shell.LogMsgQueryStarted))
	assert.True(t, contextualLogger.HasInfoLog(shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Errors(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus string
	}{
		{name: "unexpected", err: errors.New("connection refused"), expectedStatus: shell.StatusError},
		{name: "canceled", err: context.Canceled, expectedStatus: shell.StatusCanceled},
		{name: "timeout", err: context.DeadlineExceeded, expectedStatus: shell.StatusTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			handler := &mockQueryHandler{err: tc.err}
			metricsCollector := NewMetricsCollectorSpy(true)
			contextualLogger := NewContextualLoggerSpy(true)

			wrapper, err := observable.NewQueryWrapper[mockQuery, int](
				handler,
				observable.WithQueryMetrics[mockQuery, int](metricsCollector),
				observable.WithQueryContextualLogging[mockQuery, int](contextualLogger),
			)
			require.NoError(t, err)

			// act
			_, handleErr := wrapper.Handle(context.Background(), mockQuery{})

			// assert
			assert.ErrorIs(t, handleErr, tc.err)
			assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
				WithStatus(tc.expectedStatus).
				Assert())
			assert.True(t, contextualLogger.HasErrorLog(shell.LogMsgQueryFailed))
		})
	}
}

type mockQuery struct{}

func (mockQuery) QueryType() string {
	return "TestQuery"
}

type mockQueryHandler struct {
	result int
	err    error
}

func (h *mockQueryHandler) Handle(_ context.Context, _ mockQuery) (int, error) {
	return h.result, h.err
}
