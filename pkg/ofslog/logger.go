// Package ofslog is the ambient logging facade for the ofsd daemon. It
// satisfies pkg/ofs.Logger so the core can log through an interface it
// doesn't import, and adds a level-colored terminal formatter for cobra's
// stdout/stderr use. Adapted from pkg/elog.CLI, with its progress-bar/mpb
// machinery dropped -- a server daemon has no terminal progress bars to
// draw.
package ofslog

import (
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// CLI is a logrus-backed Logger. Debugf/Infof are gated behind IsDebug/
// IsVerbose the way pkg/elog.CLI gates them, rather than relying solely on
// logrus's own level filter, so IsDebug and IsVerbose gate the two levels
// separately (ofsd's --debug sets both, --verbose sets only IsVerbose).
type CLI struct {
	DisableColors bool
	IsDebug       bool
	IsVerbose     bool

	mu  sync.Mutex
	log *logrus.Logger
}

// New returns a ready-to-use CLI logger writing through its own
// *logrus.Logger instance, rather than the shared logrus package-level
// logger, so multiple CLI values (e.g. one per test) don't clobber each
// other's formatter.
func New() *CLI {
	l := logrus.New()
	l.SetLevel(logrus.TraceLevel)
	c := &CLI{log: l}
	l.SetFormatter(c)
	return c
}

func (c *CLI) Debugf(format string, args ...interface{}) {
	if c.IsDebug {
		c.log.Tracef(format, args...)
	}
}

func (c *CLI) Infof(format string, args ...interface{}) {
	if c.IsVerbose {
		c.log.Debugf(format, args...)
	}
}

func (c *CLI) Warnf(format string, args ...interface{}) {
	c.log.Warnf(format, args...)
}

func (c *CLI) Errorf(format string, args ...interface{}) {
	c.log.Errorf(format, args...)
}

func (c *CLI) Printf(format string, args ...interface{}) {
	c.log.Printf(format, args...)
}

// IsInfoEnabled reports whether Infof's gating flag is set.
func (c *CLI) IsInfoEnabled() bool { return c.IsVerbose }

// IsDebugEnabled reports whether Debugf's gating flag is set.
func (c *CLI) IsDebugEnabled() bool { return c.IsDebug }

// Format implements logrus.Formatter, coloring the rendered line by level
// the way pkg/elog.CLI.Format does.
func (c *CLI) Format(entry *logrus.Entry) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	faint := color.New(color.Faint).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	msg := entry.Message
	if !c.DisableColors {
		switch entry.Level {
		case logrus.TraceLevel:
			msg = faint(msg)
		case logrus.DebugLevel:
			msg = blue(msg)
		case logrus.WarnLevel:
			msg = yellow(msg)
		case logrus.ErrorLevel:
			msg = red(msg)
		}
	}

	return []byte(fmt.Sprintf("%s\n", msg)), nil
}
