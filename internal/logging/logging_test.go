// ABOUTME: Tests for logger setup
// ABOUTME: Checks levels and the file tee
package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupConsole(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(Options{Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logrus.Debug("hidden")
	logrus.Info("Device: default")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Device: default")
}

func TestSetupVerbose(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(Options{Console: &buf, Verbose: true})
	require.NoError(t, err)
	defer closer.Close()

	logrus.Debug("ring buffer drained")
	assert.Contains(t, buf.String(), "ring buffer drained")
}

func TestSetupFileTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eol.log")
	var buf bytes.Buffer

	closer, err := Setup(Options{Console: &buf, File: path})
	require.NoError(t, err)
	logrus.WithField("peripheral", "video").Info("Showing red")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "peripheral=video")
	assert.Contains(t, buf.String(), "Showing red")
}

func TestSetupQuiet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eol.log")
	var buf bytes.Buffer

	closer, err := Setup(Options{Console: &buf, File: path, Quiet: true})
	require.NoError(t, err)
	logrus.Info("only in file")
	require.NoError(t, closer.Close())

	assert.Empty(t, buf.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "only in file")
}

func TestSetupBadFile(t *testing.T) {
	_, err := Setup(Options{File: filepath.Join(t.TempDir(), "missing", "eol.log")})
	assert.Error(t, err)
}
