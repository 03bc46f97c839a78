package graph

import (
	"github.com/cnf/structhash"
)

// Fingerprint computes a hash over a set of records. Two record sets with
// equal content have equal fingerprints, so hosts may use it to detect
// whether a workspace changed since the last run.
func Fingerprint(records []Record) (string, error) {
	return structhash.Hash(records, 1)
}
