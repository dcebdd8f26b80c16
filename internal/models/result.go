package models

import "fmt"

// ResultKind tags the outcome of a single parcel lookup.
type ResultKind int

// Lookup outcomes.
const (
	ResultFound ResultKind = iota
	ResultNotFound
	ResultInvalidKey
	ResultTransient
	ResultPermanent
)

// Sentinel display values written into the unit-count column instead of a
// number. Failed rows are always visually distinguishable; the output never
// contains blank cells for failures.
const (
	SentinelNotFound        = "Not Found"
	SentinelInvalidFormat   = "Invalid Format"
	SentinelInvalidBBL      = "Invalid BBL"
	SentinelConnectionError = "Connection Error"
	SentinelNoData          = "No Data"
)

// LookupResult is the outcome of querying one parcel key.
// Unit counts are kept as strings exactly as the remote source reported them;
// an empty string means the source omitted the field.
type LookupResult struct {
	Kind             ResultKind
	TotalUnits       string
	ResidentialUnits string
	StatusCode       int // set for ResultPermanent
}

// DisplayValue flattens the result into the cell written to the output table.
// Total units are preferred over residential units; a found parcel with
// neither collapses to the no-data sentinel.
func (r LookupResult) DisplayValue() string {
	switch r.Kind {
	case ResultFound:
		if r.TotalUnits != "" {
			return r.TotalUnits
		}

		if r.ResidentialUnits != "" {
			return r.ResidentialUnits
		}

		return SentinelNoData
	case ResultNotFound:
		return SentinelNotFound
	case ResultInvalidKey:
		return SentinelInvalidBBL
	case ResultPermanent:
		if r.StatusCode == 0 {
			return SentinelConnectionError
		}

		return fmt.Sprintf("Error %d", r.StatusCode)
	default:
		return SentinelConnectionError
	}
}

// OutputRecord is one input row augmented with its canonical key and the
// unit-count display value. Created once per input row and never mutated.
type OutputRecord struct {
	Row       []string
	CleanBBL  string
	UnitValue string
}
