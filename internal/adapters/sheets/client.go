// Package sheets mirrors registrants into a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"eventregistration/internal/domain"
)

// mirrorColumns is the A1 column span of a mirrored registrant row.
const mirrorColumns = "A:J"

// Config selects the spreadsheet and the service account used to edit it.
type Config struct {
	SpreadsheetID string
	SheetName     string
	ClientEmail   string
	PrivateKey    string
	// Options are appended to the client options, e.g. option.WithEndpoint in tests.
	Options []option.ClientOption
	Logger  *slog.Logger
}

type sheetsMirror struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// NewMirror returns a SpreadsheetMirror for cfg. With no SpreadsheetID it returns a mirror
// that accepts every call and writes nothing.
func NewMirror(ctx context.Context, cfg Config) (domain.SpreadsheetMirror, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SpreadsheetID == "" {
		logger.Warn("no spreadsheet configured, mirror disabled")
		return &noopMirror{}, nil
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}

	var opts []option.ClientOption
	if cfg.ClientEmail != "" {
		jwtCfg := &jwt.Config{
			Email:      cfg.ClientEmail,
			PrivateKey: []byte(cfg.PrivateKey),
			TokenURL:   google.JWTTokenURL,
			Scopes:     []string{gsheets.SpreadsheetsScope},
		}
		opts = append(opts, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	}
	opts = append(opts, cfg.Options...)

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &sheetsMirror{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger,
	}, nil
}

func (m *sheetsMirror) rangeA1() string {
	return quoteSheetName(m.sheetName) + "!" + mirrorColumns
}

func quoteSheetName(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

func (m *sheetsMirror) AppendRow(ctx context.Context, values []any) error {
	vr := &gsheets.ValueRange{Values: [][]any{values}}
	_, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, m.rangeA1(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append mirror row: %w", err)
	}
	return nil
}

// FindRowByColumnValue returns the zero-based sheet row whose column holds value.
func (m *sheetsMirror) FindRowByColumnValue(ctx context.Context, column int, value string) (int, error) {
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, m.rangeA1()).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read mirror rows: %w", err)
	}
	for i, row := range resp.Values {
		if column >= len(row) {
			continue
		}
		if strings.EqualFold(fmt.Sprint(row[column]), value) {
			return i, nil
		}
	}
	return 0, domain.ErrNotFound
}

func (m *sheetsMirror) DeleteRow(ctx context.Context, rowIndex int) error {
	sheetID, err := m.sheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(rowIndex),
					EndIndex:        int64(rowIndex + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := m.svc.Spreadsheets.BatchUpdate(m.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete mirror row %d: %w", rowIndex, err)
	}
	return nil
}

// sheetID resolves the numeric ID of the configured tab, which row deletion needs.
func (m *sheetsMirror) sheetID(ctx context.Context) (int64, error) {
	ss, err := m.svc.Spreadsheets.Get(m.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == m.sheetName {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q: %w", m.sheetName, domain.ErrNotFound)
}

type noopMirror struct{}

func (noopMirror) AppendRow(context.Context, []any) error { return nil }

func (noopMirror) FindRowByColumnValue(context.Context, int, string) (int, error) { return 0, nil }

func (noopMirror) DeleteRow(context.Context, int) error { return nil }
