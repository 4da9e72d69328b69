package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_MasksSecrets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(newHandler(&Config{
		ServiceName: "authbite",
		MaskFields:  []string{"Phone"},
		LogWriter:   &buf,
	}, nil))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "registration completed",
		"backup_password", "hunter2",
		"phone", "1-5551234",
		"device_id", 321321,
		"body", `{"secret_seed":"48bebacafe22334beba47dcafe37252a","authy_id":12345}`,
	)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "***", line["backup_password"])
	assert.Equal(t, "***", line["phone"])
	assert.EqualValues(t, 321321, line["device_id"])
	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "authbite", line["service"])
	assert.Equal(t, "INFO", line["severity"])
	assert.NotContains(t, line["body"], "48bebacafe")
	assert.Contains(t, line["body"], "12345")
}

func TestNewHandler_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(newHandler(&Config{LogLevel: "warn", LogWriter: &buf}, nil))

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "abc", GetCorrelationID(SetCorrelationID(context.Background(), "abc")))
}

func TestNewNoop(t *testing.T) {
	t.Parallel()

	ins := NewNoop()
	_, span := ins.Tracer("test").Start(context.Background(), "op")
	span.End()
	require.NoError(t, ins.Shutdown(context.Background()))
}
