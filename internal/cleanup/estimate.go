package cleanup

import (
	"fmt"
)

// Mode identifies a cleanup operation for parameter validation and cost
// estimation.
type Mode string

const (
	// ModeArchive ages out old closed records.
	ModeArchive Mode = "old"
	// ModeDuplicates scans the open queue for near-duplicate texts.
	ModeDuplicates Mode = "dups"
	// ModeStatus purges every record in one closed status.
	ModeStatus Mode = "status"
	// ModeAll runs the archive phase and the duplicate scan.
	ModeAll Mode = "all"
)

// IsValid checks if the mode value is valid.
func (m Mode) IsValid() bool {
	switch m {
	case ModeArchive, ModeDuplicates, ModeStatus, ModeAll:
		return true
	}
	return false
}

// ValidateParams checks cleanup parameters before a run, returning an
// operator-facing reason on failure. Pure; used by the CLI and REPL so bad
// parameters are rejected before any store traffic.
func ValidateParams(mode Mode, days int, threshold float64) (bool, string) {
	if !mode.IsValid() {
		return false, fmt.Sprintf("unknown mode: %q (use old, dups, status, or all)", mode)
	}
	if days < 1 {
		return false, fmt.Sprintf("days must be a positive number (got %d)", days)
	}
	if days > 365 {
		return false, fmt.Sprintf("days too large (got %d, max 365)", days)
	}
	if threshold < 0.0 || threshold > 1.0 {
		return false, fmt.Sprintf("similarity threshold must be between 0.0 and 1.0 (got %g)", threshold)
	}
	return true, ""
}

// CostEstimate is an informational prediction of a cleanup run's cost, used
// to warn operators before expensive modes. It is not a promise.
type CostEstimate struct {
	Records         int     `json:"records"`
	ExpectedSeconds float64 `json:"expected_seconds"`
	ComplexityClass string  `json:"complexity_class"`
}

// Per-record base costs in seconds, measured against the hosted workspace
// backend. Duplicate scans pay per comparison, not per record.
var baseCost = map[Mode]float64{
	ModeArchive:    0.01,
	ModeDuplicates: 0.05,
	ModeStatus:     0.005,
	ModeAll:        0.06,
}

// EstimateCost predicts the runtime of a cleanup mode over approximately
// approxRecords records. Archive and status cleanup are linear; duplicate
// detection is quadratic within buckets, estimated here against the
// worst case of one shared bucket.
func EstimateCost(mode Mode, approxRecords int) CostEstimate {
	base, ok := baseCost[mode]
	if !ok {
		base = 0.05
	}
	if approxRecords < 0 {
		approxRecords = 0
	}

	est := CostEstimate{Records: approxRecords, ComplexityClass: "O(n)"}
	if mode == ModeDuplicates {
		est.ComplexityClass = "O(n²)"
		est.ExpectedSeconds = float64(approxRecords*approxRecords) * base / 1000
	} else {
		est.ExpectedSeconds = float64(approxRecords) * base
	}
	return est
}
