package externaldb

// Column identifies one of the optional columns the externally-managed
// memories table may expose. id and content are required and therefore not
// part of the set.
type Column uint8

const (
	ColumnCategory Column = 1 << iota
	ColumnImportance
	ColumnCreatedAt
	ColumnUpdatedAt
)

// ColumnSet is the capability set of optional columns discovered on the
// resolved table, resolved once per process and passed explicitly to every
// statement builder.
type ColumnSet uint8

// Has reports whether the column is present in the set.
func (s ColumnSet) Has(c Column) bool {
	return s&ColumnSet(c) != 0
}

// With returns the set with the column added.
func (s ColumnSet) With(c Column) ColumnSet {
	return s | ColumnSet(c)
}

var columnNames = map[string]Column{
	"category":   ColumnCategory,
	"importance": ColumnImportance,
	"created_at": ColumnCreatedAt,
	"updated_at": ColumnUpdatedAt,
}

// columnSetFromNames maps catalog column names onto the known optional
// columns, ignoring anything this system does not understand.
func columnSetFromNames(names []string) ColumnSet {
	var set ColumnSet
	for _, name := range names {
		if c, ok := columnNames[name]; ok {
			set = set.With(c)
		}
	}
	return set
}
