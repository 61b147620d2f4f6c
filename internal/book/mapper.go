package book

func toEntry(r Row) Entry {
	e := Entry{
		ISBN13:      r.ISBN13,
		Authors:     r.Authors,
		Publication: r.PublicationYear,
		Title:       r.Title,
		Ratings: Ratings{
			Average: r.RatingAvg,
			Count:   r.RatingCount,
			Rating1: r.Stars[0],
			Rating2: r.Stars[1],
			Rating3: r.Stars[2],
			Rating4: r.Stars[3],
			Rating5: r.Stars[4],
		},
		Icons: Icons{
			Large: r.ImageURL,
			Small: r.ImageSmallURL,
		},
	}
	if r.SeriesName != nil && *r.SeriesName != "" {
		e.SeriesInfo = &SeriesInfo{Name: *r.SeriesName, Position: r.SeriesPosition}
	}
	return e
}

func toEntries(rows []Row) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEntry(r))
	}
	return out
}

func newPagination(total int, p Page) Pagination {
	return Pagination{
		TotalRecords: total,
		Limit:        p.Limit,
		Offset:       p.Offset,
		NextPage:     p.Limit + p.Offset,
	}
}
