package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finweb/internal/core"
	"finweb/internal/log"
	ports "finweb/internal/sheets"
)

// Ensure interface conformance
var _ ports.TransactionExporter = (*Client)(nil)

// Config selects the target spreadsheet and the service account credentials.
// JSON takes precedence over File.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// valuesAppender is the subset of the Sheets API used by the exporter.
type valuesAppender interface {
	append(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

type sheetsAppender struct {
	svc *gsheet.Service
}

func (a sheetsAppender) append(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := a.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// Client appends exported transactions to a Google Sheet.
type Client struct {
	appender      valuesAppender
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
	now           func() time.Time
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return newClient(sheetsAppender{svc: svc}, cfg, logger), nil
}

func newClient(appender valuesAppender, cfg Config, logger *log.Logger) *Client {
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Transactions"
	}
	return &Client{
		appender:      appender,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetName:     sheet,
		logger:        logger,
		now:           time.Now,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportTransactions appends a heading line, the column header and one line per
// transaction to the configured sheet.
func (c *Client) ExportTransactions(ctx context.Context, account core.Account, rows []ports.Row) (int, error) {
	if c.appender == nil {
		return 0, errors.New("sheets service not initialized")
	}

	values := buildValues(account, rows, c.now())
	rng := fmt.Sprintf("%s!A:F", quoteSheetName(c.sheetName))

	start := time.Now()
	if err := c.appender.append(ctx, c.spreadsheetID, rng, values); err != nil {
		return 0, fmt.Errorf("append rows: %w", err)
	}

	c.logger.InfoContext(ctx, "Exported transactions to Google Sheets",
		log.FieldAccountID, account.ID,
		"rows", len(rows),
		"range", rng,
		log.FieldDuration, time.Since(start).Milliseconds())

	return len(rows), nil
}

func buildValues(account core.Account, rows []ports.Row, exportedAt time.Time) [][]any {
	heading := fmt.Sprintf("%s (%s)", account.Name, account.CurrencyCode)
	if account.AccountNumber != "" {
		heading += " " + account.AccountNumber
	}

	values := make([][]any, 0, len(rows)+2)
	values = append(values, []any{heading, "exported " + exportedAt.UTC().Format(time.RFC3339)})

	header := make([]any, len(ports.Columns))
	for i, col := range ports.Columns {
		header[i] = col
	}
	values = append(values, header)

	for _, r := range rows {
		values = append(values, r.Values())
	}
	return values
}

// quoteSheetName wraps names containing spaces or punctuation in single quotes,
// as required by A1 notation.
func quoteSheetName(name string) string {
	if strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) < 0 {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
