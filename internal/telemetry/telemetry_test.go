package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/tenant-notify-api/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "svc"})

	require.NoError(t, err)
	assert.Nil(t, tel)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupEnabled(t *testing.T) {
	tel, err := Setup(context.Background(), config.TelemetryConfig{
		ServiceName:  "svc",
		OTLPEndpoint: "http://127.0.0.1:4318/",
		OTLPHeaders:  "x-api-key=secret",
	})
	require.NoError(t, err)
	require.NotNil(t, tel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, tel.Shutdown(ctx))
}

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, parseHeaders(" a = 1 ,b=x=y,broken"))
	assert.Empty(t, parseHeaders(""))
}
