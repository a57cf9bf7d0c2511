package awsprisma

// row gives name-based access to one CSV record. A column is absent when the
// header does not name it or when the record is too short to reach it.
type row struct {
	columns map[string]int
	record  []string
}

// indexColumns maps header names to positions. A repeated name resolves to
// its last occurrence.
func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	return columns
}

func (r row) lookup(column string) (string, bool) {
	i, ok := r.columns[column]
	if !ok || i >= len(r.record) {
		return "", false
	}
	return r.record[i], true
}

func (r row) get(column, fallback string) string {
	if v, ok := r.lookup(column); ok {
		return v
	}
	return fallback
}
