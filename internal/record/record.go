// File path: internal/record/record.go
package record

import "context"

// Record is one ingested row: named scalar fields, all carried as
// strings. The "id" field, when present, pins the record identity across
// re-ingestion.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Catalog stores full records keyed by record id so the resolver can
// return complete rows. Semantics are replace-only: Put with an existing
// id overwrites the stored record wholesale.
type Catalog interface {
	Put(ctx context.Context, id string, rec Record) error
	Get(ctx context.Context, id string) (Record, bool, error)
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
}
