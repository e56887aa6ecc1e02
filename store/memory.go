package store

// Memory represents a canonical per-user memory record. The relational row
// is the source of truth; the vector-index entry with the same ID is derived
// from it.
type Memory struct {
	// ID is an opaque identifier generated at creation.
	ID string
	// CreatorID is the owning user. Immutable after creation.
	CreatorID int32
	// Content is the text payload. Never empty after a successful write.
	Content   string
	CreatedTs int64
	UpdatedTs int64
}

// FindMemory specifies the conditions for finding memories.
type FindMemory struct {
	ID        *string
	CreatorID *int32
}

// UpdateMemory specifies a content update for a single owner-scoped record.
type UpdateMemory struct {
	ID        string
	CreatorID int32
	Content   string
	UpdatedTs int64
}

// DeleteMemory specifies the conditions for deleting memories. At least one
// condition must be set; CreatorID alone deletes all records of that owner.
type DeleteMemory struct {
	ID        *string
	CreatorID *int32
}
