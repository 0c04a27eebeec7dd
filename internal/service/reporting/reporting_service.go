// Package reporting aggregates the ledger into daily summaries, outstanding
// balances and period profit reports.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/engine"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
	"github.com/ricetradesolutions/riceledger/pkg/format"
)

const dateLayout = "2006-01-02"

// Store is the record-store slice the reporting service reads from.
type Store interface {
	mongodb.LoadStore
	mongodb.MasterStore
	mongodb.PaymentStore
}

// Service computes read-only aggregates over the ledger.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store Store, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, logger: logger, now: now}
}

// DailySummary aggregates the loads recorded on a single calendar day.
func (s *Service) DailySummary(ctx context.Context, day time.Time) (models.DailySummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24*time.Hour - time.Nanosecond)

	loads, err := s.store.ListLoads(ctx, mongodb.LoadFilter{From: &from, To: &to})
	if err != nil {
		return models.DailySummary{}, fmt.Errorf("list loads for %s: %w", from.Format(dateLayout), err)
	}

	summary := models.DailySummary{Date: from}
	for _, load := range loads {
		profit := engine.CalculateProfit(load)
		summary.LoadCount++
		summary.NetBags += load.Settlement.NetBags
		summary.NetKg += load.Settlement.NetKg
		summary.FarmerPayable += load.Settlement.FarmerPayableRounded
		summary.MillReceivable += load.Settlement.MillReceivableRounded
		summary.CommissionTotal += load.Settlement.CommissionAmount
		summary.NetProfit += profit.NetProfit
	}

	return summary, nil
}

// OutstandingByMill reports, per mill, how much has been billed, received and
// is still pending across active loads.
func (s *Service) OutstandingByMill(ctx context.Context) ([]models.PartyOutstanding, error) {
	loads, err := s.store.ListLoads(ctx, mongodb.LoadFilter{})
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	names := s.millNames(ctx)

	rows := map[primitive.ObjectID]*models.PartyOutstanding{}
	for _, load := range loads {
		row, ok := rows[load.MillID]
		if !ok {
			name, found := names[load.MillID]
			if !found {
				name = models.UnknownPartyName
			}
			row = &models.PartyOutstanding{PartyID: load.MillID.Hex(), PartyName: name}
			rows[load.MillID] = row
		}
		row.LoadCount++
		row.Billed += load.Settlement.MillReceivableRounded
		row.Paid += load.MillPaidAmount
		row.Pending += load.MillPending()
	}

	return sortedRows(rows), nil
}

// OutstandingByFarmer reports, per farmer, how much is owed, paid out and
// still pending across active loads. Applied credit cuts count as settled.
func (s *Service) OutstandingByFarmer(ctx context.Context) ([]models.PartyOutstanding, error) {
	loads, err := s.store.ListLoads(ctx, mongodb.LoadFilter{})
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	names := s.farmerNames(ctx)

	rows := map[primitive.ObjectID]*models.PartyOutstanding{}
	for _, load := range loads {
		row, ok := rows[load.FarmerID]
		if !ok {
			name, found := names[load.FarmerID]
			if !found {
				name = models.UnknownPartyName
			}
			row = &models.PartyOutstanding{PartyID: load.FarmerID.Hex(), PartyName: name}
			rows[load.FarmerID] = row
		}
		row.LoadCount++
		row.Billed += load.Settlement.FarmerPayableRounded
		row.Paid += load.FarmerPaidAmount + load.CreditCutAmount
		row.Pending += load.FarmerPending()
	}

	return sortedRows(rows), nil
}

// ProfitReport aggregates per-load profit over an inclusive date range.
func (s *Service) ProfitReport(ctx context.Context, from, to time.Time) (models.ProfitReport, error) {
	loads, err := s.store.ListLoads(ctx, mongodb.LoadFilter{From: &from, To: &to})
	if err != nil {
		return models.ProfitReport{}, fmt.Errorf("list loads: %w", err)
	}

	report := models.ProfitReport{From: from, To: to}
	for _, load := range loads {
		profit := engine.CalculateProfit(load)
		report.LoadCount++
		report.RateMargin += profit.RateMargin
		report.CommissionTotal += profit.CommissionIncome
		report.CreditCutTotal += profit.CreditCutIncome
		report.ExpensesTotal += profit.TotalExpenses
		report.NetProfit += profit.NetProfit
	}

	return report, nil
}

// OverdueMillLoads returns active loads whose mill payment is still open
// after the given number of days.
func (s *Service) OverdueMillLoads(ctx context.Context, olderThanDays int) ([]models.Load, error) {
	loads, err := s.store.ListLoads(ctx, mongodb.LoadFilter{})
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -olderThanDays)
	var overdue []models.Load
	for _, load := range loads {
		if load.MillPaymentStatus == models.PaymentFull {
			continue
		}
		if load.Date.After(cutoff) {
			continue
		}
		overdue = append(overdue, load)
	}
	return overdue, nil
}

// FormatDailySummary renders a summary as the plain-text body of a reminder
// notification.
func (s *Service) FormatDailySummary(summary models.DailySummary) string {
	if summary.LoadCount == 0 {
		return fmt.Sprintf("Daily summary (%s): no loads recorded.", summary.Date.Format(dateLayout))
	}
	return fmt.Sprintf("Daily summary (%s): %s loads, %s bags (%s kg). Farmer payable %s, mill receivable %s, commission %s, profit %s.",
		summary.Date.Format(dateLayout),
		format.Count(summary.LoadCount),
		format.Count(summary.NetBags),
		format.Quantity(summary.NetKg),
		format.Rupees(summary.FarmerPayable),
		format.Rupees(summary.MillReceivable),
		format.Rupees(summary.CommissionTotal),
		format.Rupees(summary.NetProfit))
}

// FormatOverdue renders an overdue-loads reminder body, or "" when there is
// nothing to chase.
func (s *Service) FormatOverdue(loads []models.Load) string {
	if len(loads) == 0 {
		return ""
	}
	var totalPending float64
	for _, load := range loads {
		totalPending += load.MillPending()
	}
	return fmt.Sprintf("%s loads await mill payment, %s pending in total. Oldest: %s (%s).",
		format.Count(len(loads)),
		format.Rupees(totalPending),
		loads[0].LoadNumber,
		loads[0].Date.Format(dateLayout))
}

func (s *Service) millNames(ctx context.Context) map[primitive.ObjectID]string {
	names := map[primitive.ObjectID]string{}
	mills, err := s.store.ListMills(ctx, true)
	if err != nil {
		s.logger.Warn("mill lookup failed, reporting with unknown names", zap.Error(err))
		return names
	}
	for _, mill := range mills {
		names[mill.ID] = mill.Name
	}
	return names
}

func (s *Service) farmerNames(ctx context.Context) map[primitive.ObjectID]string {
	names := map[primitive.ObjectID]string{}
	farmers, err := s.store.ListFarmers(ctx, true)
	if err != nil {
		s.logger.Warn("farmer lookup failed, reporting with unknown names", zap.Error(err))
		return names
	}
	for _, farmer := range farmers {
		names[farmer.ID] = farmer.Name
	}
	return names
}

func sortedRows(rows map[primitive.ObjectID]*models.PartyOutstanding) []models.PartyOutstanding {
	out := make([]models.PartyOutstanding, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pending != out[j].Pending {
			return out[i].Pending > out[j].Pending
		}
		return out[i].PartyName < out[j].PartyName
	})
	return out
}
