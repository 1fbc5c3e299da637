package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	old := log.GetLevel()
	defer log.SetLevel(old)

	assert.True(t, SetLevel("DEBUG"))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	assert.False(t, SetLevel("chatty"))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	assert.False(t, SetLevel(""))
}

func TestNewWithWriterUsesPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(&buf, "search", log.InfoLevel, false, false, log.TextFormatter)
	l.Info("hello", "q", "lap")

	out := buf.String()
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "q=lap")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
