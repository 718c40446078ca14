package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsDocument is a Google Sheets spreadsheet. Each worksheet is a table.
type SheetsDocument struct {
	svc    *sheets.Service
	id     string
	titles map[string]bool
}

// NewSheetsDocument authenticates with a service-account key and opens the
// spreadsheet. When id is empty the spreadsheet is looked up by name through
// Drive, which only sees files shared with the service account.
func NewSheetsDocument(ctx context.Context, credentialsJSON []byte, name, id string) (*SheetsDocument, error) {
	// The token source outlives this call, so it must not inherit ctx.
	creds, err := google.CredentialsFromJSON(context.Background(), credentialsJSON,
		sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account: %w", err)
	}

	svc, err := sheets.NewService(context.Background(), option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	if id == "" {
		drv, err := drive.NewService(context.Background(), option.WithCredentials(creds))
		if err != nil {
			return nil, fmt.Errorf("failed to create drive client: %w", err)
		}
		id, err = findSpreadsheet(ctx, drv, name)
		if err != nil {
			return nil, err
		}
	}

	ss, err := svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to open spreadsheet %s: %w", id, err))
	}
	titles := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles[sh.Properties.Title] = true
		}
	}

	return &SheetsDocument{svc: svc, id: id, titles: titles}, nil
}

func findSpreadsheet(ctx context.Context, drv *drive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := drv.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", classify(fmt.Errorf("failed to look up spreadsheet %q: %w", name, err))
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: spreadsheet %q is not shared with the service account", ErrUnavailable, name)
	}
	return list.Files[0].Id, nil
}

func (d *SheetsDocument) Table(ctx context.Context, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.titles[name] {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return &sheetsTable{doc: d, name: name}, nil
}

type sheetsTable struct {
	doc  *SheetsDocument
	name string
}

func (t *sheetsTable) Name() string { return t.name }

func (t *sheetsTable) Header(ctx context.Context) ([]string, error) {
	rows, err := t.get(ctx, quoteSheet(t.name)+"!1:1")
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (t *sheetsTable) Rows(ctx context.Context) ([][]string, error) {
	return t.get(ctx, quoteSheet(t.name))
}

func (t *sheetsTable) get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := t.doc.svc.Spreadsheets.Values.Get(t.doc.id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to read %s: %w", rng, err))
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (t *sheetsTable) AppendRow(ctx context.Context, values []string) error {
	header := Schemas[t.name]
	cells := make([]interface{}, len(values))
	for i, v := range values {
		var column string
		if i < len(header) {
			column = header[i]
		}
		cells[i] = sheetCell(column, v)
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cells}}
	_, err := t.doc.svc.Spreadsheets.Values.Append(t.doc.id, quoteSheet(t.name)+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classify(fmt.Errorf("failed to append to %s: %w", t.name, err))
	}
	return nil
}

func (t *sheetsTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: %s row %d col %d", ErrOutOfRange, t.name, row, col)
	}
	rng := fmt.Sprintf("%s!%s%d", quoteSheet(t.name), columnLetter(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := t.doc.svc.Spreadsheets.Values.Update(t.doc.id, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return classify(fmt.Errorf("failed to update %s: %w", rng, err))
	}
	return nil
}

// sheetCell sends amounts as numbers and everything else as text. RAW input
// keeps text such as "2024-05-01" or "007" from being reinterpreted.
func sheetCell(column, value string) interface{} {
	if !NumericColumns[column] {
		return value
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return json.Number(d.String())
}

// cellString renders an unformatted cell value the way it was typed.
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}

// classify maps API and network failures onto ErrUnavailable, marking the
// ones worth retrying.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return Transient(fmt.Errorf("%w: %w", ErrUnavailable, err))
		case apiErr.Code == 401 || apiErr.Code == 403 || apiErr.Code == 404:
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient(fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	return err
}

// quoteSheet quotes a worksheet title for use in an A1 range.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a 1-based column number to its A1 letters.
func columnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}
