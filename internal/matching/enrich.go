package matching

// enrich sets the display entry and descriptive info of every candidate. Series are
// shown as their canonical first book; a series with no books is shown as itself,
// without info.
func (m *Matcher) enrich(pool []*Match) {
	for _, match := range pool {
		if match.Entry == nil {
			continue
		}

		match.Display = match.Entry
		if match.Entry.IsSeries {
			first, ok := m.index.FirstBook(match.Entry.ID)
			if !ok {
				continue
			}
			match.Display = first
		}

		if info, ok := m.index.Info(match.Display.ID); ok {
			match.Info = info
		}
	}
}
