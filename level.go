package dlog

// Level is the severity of one record. A record is emitted only when
// its level is at or above the owning Logger's minimum level; below
// that threshold the record skips all formatting work.
type Level int

const (
	// LevelDebug: Lowest severity
	LevelDebug Level = iota

	// LevelInfo: Default severity
	LevelInfo

	// LevelWarn
	LevelWarn

	// LevelError: Highest built-in severity
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
