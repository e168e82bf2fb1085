package ir

import "fmt"

// Generation tags a record with its membership in the last committed state
// and the batch currently in flight.
//
// Only three states are reachable. There is deliberately no zero value: a
// record whose Generation is 0 was never ingested and is rejected by
// Valid.
type Generation uint8

const (
	// OldOnly records belong to the last committed state and have not been
	// confirmed by the current batch.
	OldOnly Generation = iota + 1
	// NewOnly records were produced by the current batch.
	NewOnly
	// NewAndOld records existed before the batch and were confirmed by it.
	NewAndOld
)

// IsNew reports whether the record is visible to the in-flight batch.
func (g Generation) IsNew() bool {
	return g == NewOnly || g == NewAndOld
}

// IsOld reports whether the record belongs to the last committed state.
func (g Generation) IsOld() bool {
	return g == OldOnly || g == NewAndOld
}

// Valid reports whether g is one of the three reachable states.
func (g Generation) Valid() bool {
	return g >= OldOnly && g <= NewAndOld
}

func (g Generation) String() string {
	switch g {
	case OldOnly:
		return "OldOnly"
	case NewOnly:
		return "NewOnly"
	case NewAndOld:
		return "NewAndOld"
	default:
		return fmt.Sprintf("Generation(%d)", uint8(g))
	}
}

// Versioned is implemented by every record stored in the database.
// GenerationRef exposes the tag for in-place bookkeeping.
type Versioned interface {
	GenerationRef() *Generation
}
