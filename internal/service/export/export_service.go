// Package export renders the ledger into portable formats: CSV and XLSX for
// accountants, a full JSON backup, and an append-only Google Sheets mirror.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
	"github.com/ricetradesolutions/riceledger/internal/repository/sheets"
)

// ErrMirrorDisabled is returned when a sheet push is requested but no
// spreadsheet mirror is configured.
var ErrMirrorDisabled = errors.New("sheet mirror is not configured")

// Store is the record-store slice the export service reads from.
type Store interface {
	mongodb.SettingsStore
	mongodb.MasterStore
	mongodb.LoadStore
	mongodb.PaymentStore
}

// Service renders ledger data for consumption outside the application.
type Service struct {
	store  Store
	sheet  sheets.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds an export service. The sheet repository may be nil when
// the mirror is not configured.
func NewService(store Store, sheet sheets.Repository, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, sheet: sheet, logger: logger, now: now}
}

var loadHeader = []string{
	"load_number", "date", "farmer", "mill", "vehicle", "case",
	"gross_kg", "tare_kg", "declared_bags", "net_kg", "net_bags",
	"buy_rate", "sell_rate", "commission_policy", "commission_amount",
	"farmer_payable", "mill_receivable",
	"mill_payment_status", "mill_paid", "farmer_payment_status", "farmer_paid",
	"credit_cut", "notes",
}

// LoadsCSV renders the matching loads as a CSV document.
func (s *Service) LoadsCSV(ctx context.Context, filter mongodb.LoadFilter) ([]byte, error) {
	rows, err := s.loadRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(loadHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = fmt.Sprint(cell)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadsJSON renders the matching loads as an indented JSON array.
func (s *Service) LoadsJSON(ctx context.Context, filter mongodb.LoadFilter) ([]byte, error) {
	loads, err := s.store.ListLoads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}
	if loads == nil {
		loads = []models.Load{}
	}

	data, err := json.MarshalIndent(loads, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize loads: %w", err)
	}
	return data, nil
}

// LoadsXLSX renders the matching loads as a single-sheet workbook.
func (s *Service) LoadsXLSX(ctx context.Context, filter mongodb.LoadFilter) ([]byte, error) {
	rows, err := s.loadRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", zap.Error(err))
		}
	}()

	const sheetName = "Loads"
	f.SetSheetName(f.GetSheetName(0), sheetName)

	header := make([]interface{}, len(loadHeader))
	for i, h := range loadHeader {
		header[i] = h
	}
	if err := writeRow(f, sheetName, 1, header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeRow(f, sheetName, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheetName string, rowIndex int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowIndex, err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowIndex, err)
	}
	return nil
}

// Backup is a complete JSON snapshot of the ledger, including soft-deleted
// records.
type Backup struct {
	CreatedAt     time.Time             `json:"created_at"`
	Settings      models.Settings       `json:"settings"`
	Farmers       []models.Farmer       `json:"farmers"`
	Mills         []models.Mill         `json:"mills"`
	Vehicles      []models.Vehicle      `json:"vehicles"`
	Loads         []models.Load         `json:"loads"`
	MillPayments  []models.MillPayment  `json:"mill_payments"`
	FarmerPayouts []models.FarmerPayout `json:"farmer_payouts"`
	Advances      []models.Advance      `json:"advances"`
}

// BackupJSON serializes the whole ledger as an indented JSON document.
func (s *Service) BackupJSON(ctx context.Context) ([]byte, error) {
	backup := Backup{CreatedAt: s.now()}

	var err error
	if backup.Settings, err = s.store.GetSettings(ctx); err != nil {
		return nil, fmt.Errorf("backup settings: %w", err)
	}
	if backup.Farmers, err = s.store.ListFarmers(ctx, true); err != nil {
		return nil, fmt.Errorf("backup farmers: %w", err)
	}
	if backup.Mills, err = s.store.ListMills(ctx, true); err != nil {
		return nil, fmt.Errorf("backup mills: %w", err)
	}
	if backup.Vehicles, err = s.store.ListVehicles(ctx, true); err != nil {
		return nil, fmt.Errorf("backup vehicles: %w", err)
	}
	if backup.Loads, err = s.store.ListLoads(ctx, mongodb.LoadFilter{IncludeInactive: true}); err != nil {
		return nil, fmt.Errorf("backup loads: %w", err)
	}
	if backup.MillPayments, err = s.store.ListMillPayments(ctx, nil); err != nil {
		return nil, fmt.Errorf("backup mill payments: %w", err)
	}
	if backup.FarmerPayouts, err = s.store.ListFarmerPayouts(ctx, nil); err != nil {
		return nil, fmt.Errorf("backup farmer payouts: %w", err)
	}
	if backup.Advances, err = s.store.ListAdvances(ctx, nil); err != nil {
		return nil, fmt.Errorf("backup advances: %w", err)
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize backup: %w", err)
	}
	return data, nil
}

// PushLoadsToSheet appends the matching loads to the configured spreadsheet
// mirror and returns how many rows were pushed.
func (s *Service) PushLoadsToSheet(ctx context.Context, filter mongodb.LoadFilter) (int, error) {
	if s.sheet == nil {
		return 0, ErrMirrorDisabled
	}

	rows, err := s.loadRows(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.sheet.AppendRows(ctx, sheets.LoadsRange, rows); err != nil {
		return 0, fmt.Errorf("mirror loads to sheet: %w", err)
	}

	s.logger.Info("loads mirrored to sheet", zap.Int("rows", len(rows)))
	return len(rows), nil
}

func (s *Service) loadRows(ctx context.Context, filter mongodb.LoadFilter) ([][]interface{}, error) {
	loads, err := s.store.ListLoads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	farmers, mills, vehicles := s.partyNames(ctx)

	rows := make([][]interface{}, 0, len(loads))
	for _, load := range loads {
		st := load.Settlement
		rows = append(rows, []interface{}{
			load.LoadNumber,
			load.Date.Format("2006-01-02"),
			nameOrUnknown(farmers, load.FarmerID),
			nameOrUnknown(mills, load.MillID),
			nameOrUnknown(vehicles, load.VehicleID),
			string(load.Case),
			load.GrossKg,
			load.TareKg,
			load.DeclaredBags,
			st.NetKg,
			st.NetBags,
			load.BuyRatePerBag,
			load.SellRatePerBag,
			string(load.CommissionPolicy),
			st.CommissionAmount,
			st.FarmerPayableRounded,
			st.MillReceivableRounded,
			string(load.MillPaymentStatus),
			load.MillPaidAmount,
			string(load.FarmerPaymentStatus),
			load.FarmerPaidAmount,
			load.CreditCutAmount,
			load.Notes,
		})
	}
	return rows, nil
}

func (s *Service) partyNames(ctx context.Context) (farmers, mills, vehicles map[primitive.ObjectID]string) {
	farmers = map[primitive.ObjectID]string{}
	mills = map[primitive.ObjectID]string{}
	vehicles = map[primitive.ObjectID]string{}

	if list, err := s.store.ListFarmers(ctx, true); err == nil {
		for _, f := range list {
			farmers[f.ID] = f.Name
		}
	} else {
		s.logger.Warn("farmer lookup failed for export", zap.Error(err))
	}
	if list, err := s.store.ListMills(ctx, true); err == nil {
		for _, m := range list {
			mills[m.ID] = m.Name
		}
	} else {
		s.logger.Warn("mill lookup failed for export", zap.Error(err))
	}
	if list, err := s.store.ListVehicles(ctx, true); err == nil {
		for _, v := range list {
			vehicles[v.ID] = v.Number
		}
	} else {
		s.logger.Warn("vehicle lookup failed for export", zap.Error(err))
	}
	return farmers, mills, vehicles
}

func nameOrUnknown(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return models.UnknownPartyName
}
