package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"stolik/internal/models"
)

// Ledger appends accepted bookings to a Google spreadsheet, one row per
// booking. It is an audit trail only; sheet failures never affect bookings.
type Ledger struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetName     string
}

// NewLedger authenticates with a service account credentials file and builds
// the ledger for the given spreadsheet.
func NewLedger(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*Ledger, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Ledger{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendBooking adds one booking row at the bottom of the ledger sheet.
func (l *Ledger) AppendBooking(ctx context.Context, booking *models.Booking) error {
	date := booking.BookingDate
	if date == "" {
		date = models.SentinelNoDate
	}

	row := []interface{}{
		booking.ID,
		booking.TableID,
		date,
		booking.TimeSlot,
		booking.Guests,
		booking.Phone,
		booking.UserName,
		booking.UserID,
		booking.BookedAt.Format("2006-01-02 15:04:05"),
	}

	rangeData := fmt.Sprintf("%s!A:A", l.sheetName)
	valueRange := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	_, err := l.service.Spreadsheets.Values.Append(l.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append booking row: %w", err)
	}
	return nil
}

// TestConnection reads the first cell to verify access to the spreadsheet.
func (l *Ledger) TestConnection(ctx context.Context) error {
	cell := fmt.Sprintf("%s!A1", l.sheetName)
	if _, err := l.service.Spreadsheets.Values.Get(l.spreadsheetID, cell).Context(ctx).Do(); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}
