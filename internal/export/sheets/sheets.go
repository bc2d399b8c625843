// Package sheets exports computed statements to a Google spreadsheet, one
// row per occupant line.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bollette/internal/config"
	"bollette/internal/core"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromConfig creates an exporter from the sheets section of the config.
// Credentials are a service account key, inline or from a file.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Exporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing Google spreadsheet ID")
	}

	sheetName := strings.TrimSpace(cfg.GoogleSheetName)
	if sheetName == "" {
		sheetName = "Statements"
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials(cfg *config.Config) ([]byte, error) {
	if cfg.GoogleCredentialsJSON != "" {
		return []byte(cfg.GoogleCredentialsJSON), nil
	}
	if cfg.GoogleCredentialsFile != "" {
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
}

// AppendStatement writes one row per statement line, followed by a total
// row, and returns the range reference of the appended block.
func (e *Exporter) AppendStatement(ctx context.Context, st core.Statement) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	generated := st.GeneratedAt.Format("2006-01-02 15:04")
	values := make([][]any, 0, len(st.Lines)+1)
	for _, line := range st.Lines {
		values = append(values, []any{
			generated,
			st.From.String(),
			st.To.String(),
			line.Name + " " + line.Surname,
			line.Owed,
			line.Paid,
			line.Balance,
		})
	}
	values = append(values, []any{
		generated, st.From.String(), st.To.String(), "TOTAL", st.Total, "", "",
	})

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: values}

	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append statement to sheet %s: %w", e.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}
