package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel("info")
		SetOutput(nil)
	})

	SetLevel("warn")
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "WARN")
}

func TestSetLevelUnknownFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	SetLevel("verbose")
	Debugf("debug line")
	Infof("info line")
	Sync()

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestSetTimezone(t *testing.T) {
	t.Cleanup(func() { _ = SetTimezone("") })

	require.NoError(t, SetTimezone("America/Sao_Paulo"))
	assert.Equal(t, "America/Sao_Paulo", Location().String())

	err := SetTimezone("Mars/Olympus_Mons")
	require.Error(t, err)
	assert.Equal(t, "America/Sao_Paulo", Location().String())

	require.NoError(t, SetTimezone(""))
	assert.Equal(t, time.Local, Location())
}

func TestInfoBlockSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })
	SetLevel("info")

	InfoBlock("\nfirst\nsecond\n")
	Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}
