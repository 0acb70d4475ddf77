package dataset

import "sort"

// FilterLabeled returns the rows where every named target is known. Rows
// failing the post-meal quality gate carry unknown targets and must not
// reach a trainer.
func FilterLabeled(rows []Row, targetNames []string) []Row {
	out := make([]Row, 0, len(rows))
	for i := range rows {
		labeled := true
		for _, name := range targetNames {
			v, ok := rows[i].Target(name)
			if !ok || !v.IsKnown() {
				labeled = false
				break
			}
		}
		if labeled {
			out = append(out, rows[i])
		}
	}
	return out
}

// TimeSplit divides rows into train and test sets by eaten time: the
// earliest (1-testFrac) goes to train, the rest to test. A calendar cut
// avoids leaking later glucose behavior into the training side. The train
// side keeps at least one row whenever rows is non-empty.
func TimeSplit(rows []Row, testFrac float64) (train, test []Row) {
	if len(rows) == 0 {
		return nil, nil
	}
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EatenAt.Before(sorted[j].EatenAt) })

	cut := int((1 - testFrac) * float64(len(sorted)))
	if cut < 1 {
		cut = 1
	}
	if cut > len(sorted) {
		cut = len(sorted)
	}
	return sorted[:cut], sorted[cut:]
}
