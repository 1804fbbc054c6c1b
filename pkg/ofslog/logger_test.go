package ofslog

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDebugfGatedByIsDebug(t *testing.T) {
	c := New()
	c.IsDebug = false
	c.Debugf("should be suppressed")

	c.IsDebug = true
	c.Debugf("should be emitted")
}

func TestInfofGatedByIsVerbose(t *testing.T) {
	c := New()
	if c.IsInfoEnabled() {
		t.Errorf("IsInfoEnabled() should be false before IsVerbose is set")
	}
	c.IsVerbose = true
	if !c.IsInfoEnabled() {
		t.Errorf("IsInfoEnabled() should be true once IsVerbose is set")
	}
}

func TestFormatProducesTrailingNewline(t *testing.T) {
	c := New()
	c.DisableColors = true
	entry := &logrus.Entry{Message: "hello", Level: logrus.InfoLevel}
	out, err := c.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		t.Errorf("Format output %q does not end in a newline", out)
	}
}
