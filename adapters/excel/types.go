package excel

// RawRowData represents a row of raw tabular data keyed by trimmed header
type RawRowData map[string]string

// TableData represents one parsed input file
type TableData struct {
	Path    string       // Source file
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
	Raw     []byte       // Undecoded file content
}

// MissingColumns returns the required columns missing from the header row.
func (t *TableData) MissingColumns(required []string) []string {
	present := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		present[h] = true
	}
	var missing []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
