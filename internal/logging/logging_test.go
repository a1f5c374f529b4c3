package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/biztrack/internal/logging"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New(&buf, "BizTrack", "json", slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("server started", "port", 8080)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "server started", record["msg"])
	assert.Equal(t, "BizTrack", record["app"])
	assert.EqualValues(t, 8080, record["port"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New(&buf, "BizTrack", "text", slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("slow request")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `msg="slow request"`)
	assert.Contains(t, buf.String(), "app=BizTrack")
}
