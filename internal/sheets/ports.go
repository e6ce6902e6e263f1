package sheets

import (
	"context"
)

// RowWriter is the port for the tabular export sinks. Rows include the
// header row.
type RowWriter interface {
	// ReplaceRows overwrites the whole sheet with rows.
	ReplaceRows(ctx context.Context, rows [][]string) error
}
