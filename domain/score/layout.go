package score

import "unicode/utf8"

// Grid geometry of the printed report.
const (
	FieldsPerBlock = 4
	PageWidth      = 8
	RowsPerBlock   = 55
	HeaderRows     = 4 // title, two banner rows, column header
	FirstDataRow   = HeaderRows + 1

	BaseFontSize = 11
	MinFontSize  = 6
	fontFreeLen  = 10
)

// Layout describes how records are laid across pages of one sheet.
type Layout struct {
	PageWidth    int // columns per page
	RowsPerBlock int // data rows per column-block
	HeaderRows   int // rows reserved on the first page
}

// DefaultLayout is the 8-column, 55-row layout of the posted report.
func DefaultLayout() Layout {
	return Layout{PageWidth: PageWidth, RowsPerBlock: RowsPerBlock, HeaderRows: HeaderRows}
}

// BlocksPerPage is the number of column-blocks that fit side by side.
func (l Layout) BlocksPerPage() int {
	n := l.PageWidth / FieldsPerBlock
	if n < 1 {
		return 1
	}
	return n
}

// PageCapacity is the number of records one page holds.
func (l Layout) PageCapacity() int {
	return l.BlocksPerPage() * l.RowsPerBlock
}

// Pages returns the number of pages needed for n records.
func (l Layout) Pages(n int) int {
	c := l.PageCapacity()
	if n <= 0 || c <= 0 {
		return 0
	}
	return (n + c - 1) / c
}

// PageOrigin returns the physical sheet row of the first data row on page p
// (0-based). Page 0 starts below the header rows; later pages start right
// after the previous page with page-local row 1.
func (l Layout) PageOrigin(p int) int {
	first := l.HeaderRows + 1
	if p == 0 {
		return first
	}
	return first + l.RowsPerBlock + (p-1)*l.RowsPerBlock
}

// Placement is where one record lands. Row and Column are 1-based sheet
// coordinates of the record's first field; LocalRow is 1-based within its block.
type Placement struct {
	Index    int `json:"index"`
	Page     int `json:"page"`
	Block    int `json:"block"`
	LocalRow int `json:"local_row"`
	Row      int `json:"row"`
	Column   int `json:"column"`
}

// Paginate computes placements for n records in order: a block fills down to
// RowsPerBlock rows, then the next block on the same page starts at the page
// origin, then a new page starts.
func (l Layout) Paginate(n int) []Placement {
	if n <= 0 || l.RowsPerBlock <= 0 {
		return nil
	}
	out := make([]Placement, 0, n)
	capacity := l.PageCapacity()
	for i := 0; i < n; i++ {
		page := i / capacity
		k := i % capacity
		block := k / l.RowsPerBlock
		local := k % l.RowsPerBlock
		out = append(out, Placement{
			Index:    i,
			Page:     page,
			Block:    block,
			LocalRow: local + 1,
			Row:      l.PageOrigin(page) + local,
			Column:   1 + block*FieldsPerBlock,
		})
	}
	return out
}

// LastRow returns the last physical row used by n records, or the header
// row when there are none.
func (l Layout) LastRow(n int) int {
	if n <= 0 {
		return l.HeaderRows
	}
	pages := l.Pages(n)
	last := pages - 1
	used := n - last*l.PageCapacity()
	rows := used
	if rows > l.RowsPerBlock {
		rows = l.RowsPerBlock
	}
	return l.PageOrigin(last) + rows - 1
}

// FontSize shrinks the base size by one point for every two runes beyond ten,
// never going below MinFontSize.
func FontSize(s string) int {
	over := utf8.RuneCountInString(s) - fontFreeLen
	size := BaseFontSize
	if over > 0 {
		size -= over / 2
	}
	if size < MinFontSize {
		return MinFontSize
	}
	return size
}
