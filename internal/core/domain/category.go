package domain

// CategoryKind classifies a category as grouping inflows or outflows.
type CategoryKind string

const (
	Inflow  CategoryKind = "INFLOW"
	Outflow CategoryKind = "OUTFLOW"
)

// Category is simple reference data; entries may point at one. The ledger core
// treats it as opaque and only validates the reference exists.
type Category struct {
	CategoryID string       `json:"categoryID"` // Primary Key (UUID)
	Name       string       `json:"name"`
	Kind       CategoryKind `json:"kind"`
	AuditFields
}
