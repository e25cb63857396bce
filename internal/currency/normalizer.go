package currency

import "github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"

// NormalizeDirection translates dir, observed on from, into the direction it implies for to.
// Without a shared currency, or when the shared currency holds the same role in both symbols,
// the direction is kept. When the roles differ it is flipped: a move that strengthens the
// shared currency shows up with opposite sign in the two pairs.
func NormalizeDirection(dir domain.Direction, from, to string) domain.Direction {
	m := FindCommonCurrency(from, to)
	if !m.Found || m.SameRole() {
		return dir
	}
	return dir.Opposite()
}

// Normalized applies NormalizeDirection.
type Normalized struct{}

func (Normalized) Name() domain.Mode { return domain.ModeNormalized }

func (Normalized) Normalize(dir domain.Direction, from, to string) domain.Direction {
	return NormalizeDirection(dir, from, to)
}

// Raw uses every direction as observed, as if no two symbols shared a currency.
type Raw struct{}

func (Raw) Name() domain.Mode { return domain.ModeRaw }

func (Raw) Normalize(dir domain.Direction, _, _ string) domain.Direction {
	return dir
}
