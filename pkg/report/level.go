package report

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a report message. Levels are totally ordered.
type Level int

const (
	Debug Level = iota
	Info
	Warning
	Error
	Fatal
	// None is above every real level. As an exception threshold it means
	// "never raise"; as a log level it means "record nothing".
	None
)

var levelNames = [...]string{"debug", "info", "warning", "error", "fatal", "none"}

func (l Level) String() string {
	if l < Debug || l > None {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warn" {
		return Warning, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// SlogLevel maps l onto the closest slog level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= Debug:
		return slog.LevelDebug
	case l == Info:
		return slog.LevelInfo
	case l == Warning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
