package models

// CategoryKind classifies a category as grouping inflows or outflows.
type CategoryKind string

// Category mirrors the categories table.
type Category struct {
	CategoryID string       `json:"categoryID"`
	Name       string       `json:"name"`
	Kind       CategoryKind `json:"kind"`
	AuditFields
}
