package domain

import "context"

// SpreadsheetMirror is the best-effort spreadsheet replica of the registrants table.
type SpreadsheetMirror interface {
	AppendRow(ctx context.Context, values []any) error
	// FindRowByColumnValue returns the zero-based row index whose column equals value,
	// or ErrNotFound.
	FindRowByColumnValue(ctx context.Context, column int, value string) (int, error)
	DeleteRow(ctx context.Context, rowIndex int) error
}
