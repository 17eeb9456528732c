package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"catalogconsole/internal/domain"
)

var (
	mu   sync.RWMutex
	base = newLogger(os.Stdout, zerolog.InfoLevel, "json")
)

func newLogger(out io.Writer, level zerolog.Level, format string) zerolog.Logger {
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(level)
}

// Init configures the process logger. Unknown levels fall back to info.
func Init(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	mu.Lock()
	base = newLogger(out, ParseLevel(level), format)
	mu.Unlock()
}

// SetOutput swaps the sink keeping JSON output at debug level; the returned
// func restores the previous logger.
func SetOutput(out io.Writer) (restore func()) {
	mu.Lock()
	prev := base
	base = newLogger(out, zerolog.DebugLevel, "json")
	mu.Unlock()
	return func() {
		mu.Lock()
		base = prev
		mu.Unlock()
	}
}

func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func write(level zerolog.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := current()
	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	ev = ev.Str("ts", time.Now().UTC().Format(time.RFC3339)).Str("action", action)
	if level == zerolog.NoLevel {
		ev = ev.Str("level", "audit")
	}
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path())
		if status := c.Response().StatusCode(); status != 0 {
			ev = ev.Int("status", status)
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
		if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
			ev = ev.Str("user_id", u.ID)
		}
	}
	if err != nil {
		ev = ev.Str("err", err.Error())
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func Debug(c *fiber.Ctx, action string, fields map[string]any) {
	write(zerolog.DebugLevel, c, action, nil, fields)
}
func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zerolog.InfoLevel, c, action, nil, fields)
}

// Audit entries bypass the level filter.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zerolog.NoLevel, c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zerolog.WarnLevel, c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zerolog.ErrorLevel, c, action, err, fields)
}
