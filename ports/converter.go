package ports

import (
	"context"
)

// ConverterPort produces a fixed-layout (print-ready) rendition of a workbook
type ConverterPort interface {
	// Name identifies the backing service in logs and summaries.
	Name() string
	// Convert writes the rendition of the workbook at src to dst.
	Convert(ctx context.Context, src, dst string) error
}
