package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerIsShared(t *testing.T) {
	assert.Same(t, Logger(), Logger())
}

func TestSetLevel(t *testing.T) {
	defer Logger().SetLevel(log.InfoLevel)

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, log.DebugLevel, Logger().GetLevel())

	assert.Error(t, SetLevel("chatty"))
	assert.Equal(t, log.DebugLevel, Logger().GetLevel())
}

func TestWrappersReportTheirCaller(t *testing.T) {
	var buf bytes.Buffer
	l := Logger()
	l.SetOutput(&buf)
	l.SetLevel(log.InfoLevel)
	EnableCaller()
	t.Cleanup(func() {
		l.SetOutput(os.Stderr)
		l.SetReportCaller(false)
	})

	Info("zone opened", "zone", "common_mp")
	Warn("trailing bytes")

	out := buf.String()
	assert.Contains(t, out, "logging_test.go")
	assert.NotContains(t, out, "logging.go:")
}
