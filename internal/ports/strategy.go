package ports

import "github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"

// Normalizer re-expresses a direction observed on one symbol as a signal for another symbol.
type Normalizer interface {
	// Name identifies the policy in logs and reports.
	Name() domain.Mode
	// Normalize maps dir, observed on from, to the equivalent direction for to.
	Normalize(dir domain.Direction, from, to string) domain.Direction
}
