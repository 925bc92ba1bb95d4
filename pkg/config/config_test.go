package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theory-cloud/tablekit/pkg/config"
	tkerrors "github.com/theory-cloud/tablekit/pkg/errors"
)

const sampleConfig = `
aws:
  region: eu-west-1
  endpoint: http://localhost:8000
  max_retries: 5
batch:
  retry:
    max_attempts: 6
    base_delay: 50ms
    max_delay: 2s
  parallel: true
  max_concurrency: 8
logging:
  level: debug
  format: console
tables:
  - name: orders
    partition:
      attribute: pk
      template: "USER#{{userId}}"
    sort:
      attribute: sk
      template: "ORDER#{{orderId}}"
  - name: tenants
    partition:
      attribute: id
      template: "TENANT#{{tenant}}"
`

func TestLoad(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "http://localhost:8000", cfg.AWS.Endpoint)
	assert.Equal(t, 5, cfg.AWS.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.AWS.Timeout, "defaults survive for omitted keys")

	assert.Equal(t, 6, cfg.Batch.Retry.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Batch.Retry.BaseDelay)
	assert.Equal(t, 2*time.Second, cfg.Batch.Retry.MaxDelay)
	assert.True(t, cfg.Batch.Parallel)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrency)
	require.Len(t, cfg.Tables, 2)
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 4, cfg.Batch.Retry.MaxAttempts)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown key", "bogus: 1\n", nil},
		{"bad retry", "batch:\n  retry:\n    max_attempts: 0\n", tkerrors.ErrInvalidRetryOptions},
		{"bad format", "logging:\n  format: xml\n", nil},
		{"missing table name", "tables:\n  - partition: {attribute: pk, template: X}\n", nil},
		{"missing partition attribute", "tables:\n  - name: tbl\n    partition: {template: X}\n", tkerrors.ErrInvalidKey},
		{"ambiguous template", "tables:\n  - name: tbl\n    partition: {attribute: pk, template: \"{{a}}{{b}}\"}\n", tkerrors.ErrAmbiguousTemplate},
		{"invalid table name", "tables:\n  - name: bad table\n    partition: {attribute: pk, template: X}\n", nil},
		{
			"duplicate table",
			"tables:\n  - name: tbl\n    partition: {attribute: pk, template: X}\n  - name: tbl\n    partition: {attribute: pk, template: Y}\n",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestKeySchemas(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	schemas, err := cfg.KeySchemas()
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	orders := schemas["orders"]
	require.NotNil(t, orders)
	assert.True(t, orders.HasSort())
	assert.Equal(t, []string{"userId", "orderId"}, orders.Fields())
	assert.False(t, schemas["tenants"].HasSort())
}

func TestBatchOptions(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	logger := zap.NewNop()
	opts := cfg.BatchOptions(logger, nil)
	assert.Equal(t, cfg.Batch.Retry, opts.Retry)
	assert.True(t, opts.Parallel)
	assert.Equal(t, 8, opts.MaxConcurrency)
	assert.Same(t, logger, opts.Logger)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := config.NewLogger(config.Logging{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", zap.Int("chunk", 3))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"chunk":3`)

	buf.Reset()
	fallback := config.NewLogger(config.Logging{Level: "loud", Format: "console"}, &buf)
	fallback.Debug("hidden")
	fallback.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
