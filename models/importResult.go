package models

// ImportRowError pairs a 1-based spreadsheet row number with the reason the
// row was rejected.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult reports a whole batch. Row failures never abort the batch:
// valid rows commit, failed rows are listed here.
type ImportResult struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    []*ImportRowError `json:"errors"`
}

func (r *ImportResult) addError(row int, message string) {
	r.Failed++
	r.Errors = append(r.Errors, &ImportRowError{Row: row, Message: message})
}

// cellValue tolerates short rows; excelize trims trailing empty cells.
func cellValue(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
