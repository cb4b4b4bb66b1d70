package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const paperA4 = 9

// PrintSetup controls how a report sheet is paged when printed or converted.
type PrintSetup struct {
	MarginInches float64
	Orientation  string // "portrait" or "landscape"
	PaperSize    int    // excelize paper size index
}

// DefaultPrintSetup is A4 portrait with narrow margins.
func DefaultPrintSetup() PrintSetup {
	return PrintSetup{MarginInches: 0.3, Orientation: "portrait", PaperSize: paperA4}
}

// ApplyPrintSetup scales the sheet to one page wide (any number of pages
// tall) and sets the margins.
func ApplyPrintSetup(f *excelize.File, sheet string, s PrintSetup) error {
	fit := true
	if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{FitToPage: &fit}); err != nil {
		return fmt.Errorf("set fit to page: %w", err)
	}

	width, height := 1, 0
	orientation := s.Orientation
	if orientation == "" {
		orientation = "portrait"
	}
	size := s.PaperSize
	if size == 0 {
		size = paperA4
	}
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
		FitToWidth:  &width,
		FitToHeight: &height,
	}); err != nil {
		return fmt.Errorf("set page layout: %w", err)
	}

	m := s.MarginInches
	center := true
	if err := f.SetPageMargins(sheet, &excelize.PageLayoutMarginsOptions{
		Top:          &m,
		Bottom:       &m,
		Left:         &m,
		Right:        &m,
		Horizontally: &center,
	}); err != nil {
		return fmt.Errorf("set page margins: %w", err)
	}
	return nil
}
