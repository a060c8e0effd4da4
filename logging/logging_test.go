package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("rebuilt", "vertices", 3)
	logger.Info("done")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entries := logs.FilterMessage("rebuilt").All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].Level, test.ShouldEqual, zapcore.DebugLevel)
	test.That(t, entries[0].ContextMap()["vertices"], test.ShouldEqual, int64(3))
}

func TestGlobal(t *testing.T) {
	orig := Global()
	defer ReplaceGlobal(orig)

	blank := NewBlankLogger("blank")
	ReplaceGlobal(blank)
	test.That(t, Global(), test.ShouldEqual, blank)
}

func TestLoggerConfig(t *testing.T) {
	config := NewLoggerConfig()
	test.That(t, config.Level.Level(), test.ShouldEqual, zapcore.InfoLevel)
	test.That(t, config.DisableStacktrace, test.ShouldBeTrue)
	test.That(t, config.Encoding, test.ShouldEqual, "console")
}
