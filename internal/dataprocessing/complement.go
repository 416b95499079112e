package dataprocessing

// Complement returns all rows of the original table whose position is not in
// the filtered subset. Row identity is positional, so textually identical
// rows remain distinct. Used by the delete simulation; nothing is persisted.
// When the subset is empty the complement is the original row set unchanged.
func Complement(original *Table, filtered *FilterResult) *Table {
	matched := make(map[int]struct{}, len(filtered.SourceRows))
	for _, row := range filtered.SourceRows {
		matched[row] = struct{}{}
	}

	keep := make([]int, 0, original.Len()-len(matched))
	for i := 0; i < original.Len(); i++ {
		if _, ok := matched[i]; !ok {
			keep = append(keep, i)
		}
	}

	return original.Select(keep)
}
