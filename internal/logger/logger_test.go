package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, ParseLevel("debug"))
	assert.Equal(t, log.WARN, ParseLevel(" WARN "))
	assert.Equal(t, log.ERROR, ParseLevel("error"))
	assert.Equal(t, log.OFF, ParseLevel("off"))
	assert.Equal(t, log.INFO, ParseLevel("verbose"))
}

func TestNewWritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "server.log")
	l := New("festival", "info", file)
	l.Infof("hello %s", "file")
	l.Debug("dropped at info level")

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello file")
	assert.NotContains(t, string(b), "dropped at info level")
}
