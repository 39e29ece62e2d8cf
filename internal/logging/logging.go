package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeySession   = "session"
	KeyEvent     = "event"
	KeyRemote    = "remote"
)

type coreHolder struct {
	core zapcore.Core
}

// switchCore lets package-level loggers created before Init pick up the
// configured core once Init runs.
type switchCore struct {
	state  *atomic.Pointer[coreHolder]
	fields []zapcore.Field
}

func newSwitchCore(c zapcore.Core) *switchCore {
	state := &atomic.Pointer[coreHolder]{}
	state.Store(&coreHolder{core: c})
	return &switchCore{state: state}
}

func (c *switchCore) set(core zapcore.Core) {
	c.state.Store(&coreHolder{core: core})
}

func (c *switchCore) base() zapcore.Core {
	return c.state.Load().core
}

func (c *switchCore) Enabled(lvl zapcore.Level) bool {
	return c.base().Enabled(lvl)
}

func (c *switchCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &switchCore{state: c.state, fields: merged}
}

func (c *switchCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *switchCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	core := c.base()
	if len(c.fields) > 0 {
		core = core.With(c.fields)
	}
	return core.Write(ent, fields)
}

func (c *switchCore) Sync() error {
	return c.base().Sync()
}

var (
	rootCore      = newSwitchCore(newCore("console", zapcore.InfoLevel, os.Stdout))
	defaultLogger = zap.New(rootCore)
)

// Init configures the global logger. Call once after config is loaded.
// format: "json" or "console" (default "console")
// level: "debug", "info", "warn", "error" (default "info")
// output: writer to log to (nil = os.Stdout)
func Init(format, level string, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	rootCore.set(newCore(format, parseLevel(level), output))
}

func newCore(format string, lvl zapcore.Level, output io.Writer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(enc, zapcore.AddSync(output), lvl)
}

// L returns a logger tagged with the given component name.
func L(component string) *zap.Logger {
	return defaultLogger.With(zap.String(KeyComponent, component))
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = defaultLogger.Sync()
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
