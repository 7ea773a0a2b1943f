package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func TestInitTracerExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer("grantdesk-test", &buf, zap.NewNop())
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "erase-account")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "erase-account")
	assert.Contains(t, buf.String(), "grantdesk-test")
}
