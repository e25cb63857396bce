package domain

// Direction is the side of a finished move or of a bet on one.
type Direction string

const (
	Long  Direction = "L"
	Short Direction = "S"
)

// Opposite returns the flipped direction.
func (d Direction) Opposite() Direction {
	if d == Long {
		return Short
	}
	return Long
}

// String returns the long-form name used in reports.
func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection accepts both the short ("L"/"S") and long ("LONG"/"SHORT") forms.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "L", "LONG", "Long", "long":
		return Long, true
	case "S", "SHORT", "Short", "short":
		return Short, true
	default:
		return "", false
	}
}

// Role is the structural position of a currency inside a pair symbol.
type Role string

const (
	RoleBase  Role = "base"
	RoleQuote Role = "quote"
)

// SkipReason explains why an evaluated event did not produce a trade.
type SkipReason string

const (
	SkipNone    SkipReason = ""
	SkipTie     SkipReason = "TIE"      // equal long/short votes in the window
	SkipNoMatch SkipReason = "NO_MATCH" // most recent window event disagrees with the regime
)

// Mode names which normalization policy a simulation used.
type Mode string

const (
	ModeNormalized Mode = "normalized"
	ModeRaw        Mode = "raw"
)
