package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"entmatrix/pkg/platform/sentinel"
)

func TestOperationsEmitSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	f := newFixture(t)
	f.loadProduct(t, "prod-1")

	f.persistence.EXPECT().PersistCell(gomock.Any(), gomock.Any()).Return(nil)
	_, done, err := f.svc.Toggle(context.Background(), "feat-a", "pkg-2")
	require.NoError(t, err)
	require.NoError(t, <-done)

	f.persistence.EXPECT().PersistBatch(gomock.Any(), gomock.Any()).Return(nil)
	_, err = f.svc.Save(context.Background())
	require.NoError(t, err)

	names := make(map[string]int)
	for _, span := range exporter.GetSpans() {
		names[span.Name]++
	}
	assert.Equal(t, 1, names["matrix.set_product"])
	assert.Equal(t, 1, names["matrix.toggle"])
	assert.Equal(t, 1, names["matrix.save"])
}

func TestFailedSaveRecordsSpanError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	f := newFixture(t)
	f.loadProduct(t, "prod-1")
	f.store.Set("feat-a", "pkg-2", true, true)

	f.persistence.EXPECT().
		PersistBatch(gomock.Any(), gomock.Any()).
		Return(sentinel.ErrUnavailable)

	_, err := f.svc.Save(context.Background())
	require.Error(t, err)

	spans := exporter.GetSpans()
	var saveSpan *tracetest.SpanStub
	for i := range spans {
		if spans[i].Name == "matrix.save" {
			saveSpan = &spans[i]
		}
	}
	require.NotNil(t, saveSpan)
	require.Len(t, saveSpan.Events, 1)
	assert.Equal(t, "exception", saveSpan.Events[0].Name)
}
