package mod

// Progress is reported for every archive entry written.
type Progress struct {
	// Entry is the slash-separated archive name of the current entry.
	Entry string
	// Processed counts entries written so far, including Entry.
	Processed int
	// Total is the file and directory count of the staging tree.
	Total int
}

// Percent returns the completed share in the range [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}

	return float64(p.Processed) * 100 / float64(p.Total)
}

// ProgressFunc observes archive progress.
type ProgressFunc func(p Progress)

// HashFunc observes the integrity walk: one call per hashed file.
type HashFunc func(relPath string, hashed int)
