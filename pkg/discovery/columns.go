package discovery

import "strings"

// resolveContentColumns maps a body table's columns to their roles. The id
// rule is stricter than the others: the column must equal or end with an id
// indicator so that "book_id_ref"-style columns don't shadow the real key.
func resolveContentColumns(columns []string) ContentColumns {
	cols := ContentColumns{}

	cols.Text = firstColumnContaining(columns, textIndicators)
	cols.Page = firstColumnContaining(columns, pageIndicators)
	cols.Part = firstColumnContaining(columns, partIndicators)

	for _, col := range columns {
		name := strings.ToLower(col)
		for _, ind := range idIndicators {
			if name == ind || strings.HasSuffix(name, ind) {
				cols.ID = col
				break
			}
		}
		if cols.ID != "" {
			break
		}
	}
	if cols.ID == "" && len(columns) > 0 {
		cols.ID = columns[0]
	}

	return cols
}

func resolveIndexColumns(columns []string) IndexColumns {
	cols := IndexColumns{
		Title: firstColumnContaining(columns, titleIndicators),
		Level: firstColumnContaining(columns, levelIndicators),
	}

	for _, col := range columns {
		name := strings.ToLower(col)
		for _, ind := range idIndicators {
			if name == ind || strings.HasSuffix(name, ind) {
				cols.ID = col
				break
			}
		}
		if cols.ID != "" {
			break
		}
	}
	if cols.ID == "" && len(columns) > 0 {
		cols.ID = columns[0]
	}

	return cols
}

func firstColumnContaining(columns []string, indicators []string) string {
	for _, col := range columns {
		if nameContains(col, indicators) {
			return col
		}
	}
	return ""
}
