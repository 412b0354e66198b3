package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stantpm/propflow/internal/common"
	"github.com/stantpm/propflow/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client implements the DocumentStore interface for Google Sheets.
type Client struct {
	service *sheetsapi.Service
	logger  *slog.Logger
	retry   service.RetryOptions
}

// NewClient creates a new Google Sheets document store client.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient, err := createHTTPClient(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &Client{
		service: srv,
		logger:  logger,
		retry: service.RetryOptions{
			MaxAttempts:  config.RetryAttempts,
			InitialDelay: config.RetryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// createHTTPClient builds an authenticated HTTP client shared by the Sheets
// and Drive services.
func createHTTPClient(ctx context.Context, config Config) (*http.Client, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, scopes...)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	return oauth2.NewClient(ctx, tokenSource), nil
}

// withRetry runs a single API call with the configured backoff.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, op, c.retry)
}

// ReadRange implements DocumentStore.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]any, error) {
	var values [][]any
	err := c.withRetry(ctx, func() error {
		resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, a1Range).Context(ctx).Do()
		if err != nil {
			return err
		}
		values = resp.Values
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", a1Range, err)
	}
	return values, nil
}

// UpdateRange implements DocumentStore.
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]any) error {
	vr := &sheetsapi.ValueRange{Values: values}
	err := c.withRetry(ctx, func() error {
		_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, a1Range, vr).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", a1Range, err)
	}
	return nil
}

// AppendRows implements DocumentStore. The append is a single request, so
// either all rows are written or none are.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, a1Range string, values [][]any) (string, error) {
	vr := &sheetsapi.ValueRange{Values: values}
	var updatedRange string
	err := c.withRetry(ctx, func() error {
		resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, a1Range, vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if resp.Updates != nil {
			updatedRange = resp.Updates.UpdatedRange
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to append %d rows: %w", len(values), err)
	}

	c.logger.Debug("appended rows", "range", updatedRange, "rows", len(values))
	return updatedRange, nil
}

// ClearRange implements DocumentStore.
func (c *Client) ClearRange(ctx context.Context, spreadsheetID, a1Range string) error {
	err := c.withRetry(ctx, func() error {
		_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, a1Range, &sheetsapi.ClearValuesRequest{}).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear range %s: %w", a1Range, err)
	}
	return nil
}

// WriteFormulas implements DocumentStore. Formulas are written as
// user-entered values so the document recomputes them on edit.
func (c *Client) WriteFormulas(ctx context.Context, spreadsheetID, sheetTitle string, formulas []service.CellFormula) error {
	if len(formulas) == 0 {
		return nil
	}

	data := make([]*sheetsapi.ValueRange, 0, len(formulas))
	for _, f := range formulas {
		data = append(data, &sheetsapi.ValueRange{
			Range:  fmt.Sprintf("'%s'!%s", sheetTitle, f.Cell),
			Values: [][]any{{f.Formula}},
		})
	}

	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}

	err := c.withRetry(ctx, func() error {
		_, err := c.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write %d formulas to %s: %w", len(formulas), sheetTitle, err)
	}
	return nil
}

// CreateSpreadsheet implements DocumentStore.
func (c *Client) CreateSpreadsheet(ctx context.Context, title, timeZone string) (string, error) {
	spreadsheet := &sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{
			Title:    title,
			TimeZone: timeZone,
		},
	}

	var id string
	err := c.withRetry(ctx, func() error {
		created, err := c.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = created.SpreadsheetId
		c.logger.Info("created new spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet %q: %w", title, err)
	}
	return id, nil
}

// CopySheetTo implements DocumentStore.
func (c *Client) CopySheetTo(ctx context.Context, srcSpreadsheetID, sheetTitle, dstSpreadsheetID, newTitle string) (int64, error) {
	info, err := c.SheetInfo(ctx, srcSpreadsheetID, sheetTitle)
	if err != nil {
		return 0, err
	}

	var copied *sheetsapi.SheetProperties
	err = c.withRetry(ctx, func() error {
		req := &sheetsapi.CopySheetToAnotherSpreadsheetRequest{
			DestinationSpreadsheetId: dstSpreadsheetID,
		}
		props, err := c.service.Spreadsheets.Sheets.CopyTo(srcSpreadsheetID, info.SheetID, req).Context(ctx).Do()
		if err != nil {
			return err
		}
		copied = props
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy sheet %q: %w", sheetTitle, err)
	}

	// The copy arrives titled "Copy of <name>"; rename it.
	rename := &sheetsapi.Request{
		UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
			Properties: &sheetsapi.SheetProperties{
				SheetId: copied.SheetId,
				Title:   newTitle,
			},
			Fields: "title",
		},
	}
	if err := c.batchUpdate(ctx, dstSpreadsheetID, rename); err != nil {
		return 0, fmt.Errorf("failed to rename copied sheet to %q: %w", newTitle, err)
	}

	return copied.SheetId, nil
}

// AddSheet implements DocumentStore.
func (c *Client) AddSheet(ctx context.Context, spreadsheetID, title string, index int64) (int64, error) {
	props := &sheetsapi.SheetProperties{Title: title}
	if index >= 0 {
		props.Index = index
		props.ForceSendFields = append(props.ForceSendFields, "Index")
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{Properties: props},
		}},
	}

	var sheetID int64
	err := c.withRetry(ctx, func() error {
		resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
		if err != nil {
			return err
		}
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add sheet %q: %w", title, err)
	}
	return sheetID, nil
}

// DeleteSheet implements DocumentStore.
func (c *Client) DeleteSheet(ctx context.Context, spreadsheetID, title string) error {
	info, err := c.SheetInfo(ctx, spreadsheetID, title)
	if err != nil {
		return err
	}

	req := &sheetsapi.Request{
		DeleteSheet: &sheetsapi.DeleteSheetRequest{SheetId: info.SheetID},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to delete sheet %q: %w", title, err)
	}
	return nil
}

// SheetInfo implements DocumentStore. Row and column counts reflect the
// sheet's grid size, not its data extent.
func (c *Client) SheetInfo(ctx context.Context, spreadsheetID, title string) (service.SheetInfo, error) {
	var info service.SheetInfo
	err := c.withRetry(ctx, func() error {
		resp, err := c.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		if err != nil {
			return err
		}
		for _, sheet := range resp.Sheets {
			if sheet.Properties != nil && sheet.Properties.Title == title {
				info = service.SheetInfo{
					Title:   sheet.Properties.Title,
					SheetID: sheet.Properties.SheetId,
				}
				if gp := sheet.Properties.GridProperties; gp != nil {
					info.RowCount = gp.RowCount
					info.ColCount = gp.ColumnCount
				}
				return nil
			}
		}
		return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrSheetNotFound, title), Retryable: false}
	})
	if err != nil {
		return service.SheetInfo{}, err
	}
	return info, nil
}

// CopyPaste implements DocumentStore.
func (c *Client) CopyPaste(ctx context.Context, spreadsheetID string, src, dst service.GridRect, pasteType string) error {
	req := &sheetsapi.Request{
		CopyPaste: &sheetsapi.CopyPasteRequest{
			Source:           gridRange(src),
			Destination:      gridRange(dst),
			PasteType:        pasteType,
			PasteOrientation: "NORMAL",
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to copy block: %w", err)
	}
	return nil
}

// InsertRows implements DocumentStore.
func (c *Client) InsertRows(ctx context.Context, spreadsheetID string, sheetID, startRow, count int64) error {
	req := &sheetsapi.Request{
		InsertDimension: &sheetsapi.InsertDimensionRequest{
			Range: &sheetsapi.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: startRow,
				EndIndex:   startRow + count,
			},
			InheritFromBefore: true,
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to insert %d rows: %w", count, err)
	}
	return nil
}

// SetNumberFormat implements DocumentStore.
func (c *Client) SetNumberFormat(ctx context.Context, spreadsheetID string, rect service.GridRect, formatType, pattern string) error {
	req := &sheetsapi.Request{
		RepeatCell: &sheetsapi.RepeatCellRequest{
			Range: gridRange(rect),
			Cell: &sheetsapi.CellData{
				UserEnteredFormat: &sheetsapi.CellFormat{
					NumberFormat: &sheetsapi.NumberFormat{
						Type:    formatType,
						Pattern: pattern,
					},
				},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to set number format: %w", err)
	}
	return nil
}

// BoldRange implements DocumentStore.
func (c *Client) BoldRange(ctx context.Context, spreadsheetID string, rect service.GridRect) error {
	req := &sheetsapi.Request{
		RepeatCell: &sheetsapi.RepeatCellRequest{
			Range: gridRange(rect),
			Cell: &sheetsapi.CellData{
				UserEnteredFormat: &sheetsapi.CellFormat{
					TextFormat: &sheetsapi.TextFormat{Bold: true},
				},
			},
			Fields: "userEnteredFormat.textFormat",
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to bold range: %w", err)
	}
	return nil
}

// AutoResizeColumns implements DocumentStore.
func (c *Client) AutoResizeColumns(ctx context.Context, spreadsheetID string, sheetID, startCol, endCol int64) error {
	req := &sheetsapi.Request{
		AutoResizeDimensions: &sheetsapi.AutoResizeDimensionsRequest{
			Dimensions: &sheetsapi.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: startCol,
				EndIndex:   endCol,
			},
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to auto-resize columns: %w", err)
	}
	return nil
}

// batchUpdate sends a single structural request with retry.
func (c *Client) batchUpdate(ctx context.Context, spreadsheetID string, reqs ...*sheetsapi.Request) error {
	batch := &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: reqs}
	return c.withRetry(ctx, func() error {
		_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, batch).Context(ctx).Do()
		return err
	})
}

func gridRange(r service.GridRect) *sheetsapi.GridRange {
	return &sheetsapi.GridRange{
		SheetId:          r.SheetID,
		StartRowIndex:    r.StartRow,
		EndRowIndex:      r.EndRow,
		StartColumnIndex: r.StartCol,
		EndColumnIndex:   r.EndCol,
	}
}
