package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"
	"dispatch-console/pkg/utils"
)

// BookingSheet is the only sheet an import reads
const BookingSheet = "BOOKING"

// DefaultCompany is the operator name used when a row leaves the company empty
const DefaultCompany = "OLStar Transport"

// Column layout of the BOOKING sheet, A through U
const (
	colDate = iota
	colTime
	colClient
	colContact
	colNote
	colPax
	colFlight
	colPickup
	colDropOff
	colDriverName
	colUnitType
	colAmount
	colDriverRate
	colCompany
	colBookingType
	colDriverPhone
	colTransportUnit
	colColor
	colPlate
	colLuggage
	colTripType
)

var (
	// ErrSheetNotFound aborts an import whose workbook has no BOOKING sheet
	ErrSheetNotFound = errors.New("sheet BOOKING not found")
	// ErrNoSchedules reports that no row matched the target date. It is
	// informational; nothing was written.
	ErrNoSchedules = errors.New("no schedules found for target date")
)

// ImportResult summarizes one workbook import
type ImportResult struct {
	TargetDate string
	Schedules  []entity.Schedule
	Skipped    int
}

// RowContext carries what BuildSchedules needs besides the rows
type RowContext struct {
	TargetDate string
	Directory  Directory
	Units      map[string]entity.TransportUnit
	Company    string
	NextID     func() (string, error)
}

// BuildSchedules turns sheet rows into schedules for the target date. The
// first row is the header. Rows whose date cannot be read are skipped and
// counted; rows for other dates are left out silently.
func BuildSchedules(rows [][]string, rc RowContext) ([]entity.Schedule, int, error) {
	company := rc.Company
	if company == "" {
		company = DefaultCompany
	}

	var schedules []entity.Schedule
	skipped := 0
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}

		date, ok := utils.NormalizeSheetDate(utils.Cell(row, colDate))
		if !ok {
			skipped++
			continue
		}
		if date != rc.TargetDate {
			continue
		}

		id, err := rc.NextID()
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to assign transaction id for row %d: %w", i+1, err)
		}

		cellPhone := utils.ExtractMobile(utils.Cell(row, colDriverPhone))
		s := entity.Schedule{
			TransactionID: id,
			Date:          date,
			Time:          utils.NormalizeSheetTime(utils.Cell(row, colTime)),
			ClientName:    utils.Cell(row, colClient),
			ContactNumber: utils.Cell(row, colContact),
			Note:          utils.Cell(row, colNote),
			Pax:           entity.FlexString(utils.Cell(row, colPax)),
			FlightNumber:  utils.Cell(row, colFlight),
			Pickup:        utils.Cell(row, colPickup),
			DropOff:       utils.Cell(row, colDropOff),
			UnitType:      utils.Cell(row, colUnitType),
			Amount:        entity.FlexString(utils.Cell(row, colAmount)),
			DriverRate:    entity.FlexString(utils.Cell(row, colDriverRate)),
			Company:       orDefault(utils.Cell(row, colCompany), company),
			BookingType:   utils.Cell(row, colBookingType),
			TransportUnit: utils.Cell(row, colTransportUnit),
			Color:         utils.Cell(row, colColor),
			PlateNumber:   utils.Cell(row, colPlate),
			Luggage:       entity.FlexString(orDefault(utils.Cell(row, colLuggage), "1")),
			TripType:      utils.Cell(row, colTripType),
			Current: entity.Assignment{
				DriverName: rc.Directory.Resolve(cellPhone, utils.Cell(row, colDriverName)),
				CellPhone:  cellPhone,
			},
			Status: entity.Pending,
		}
		fillFromUnit(&s, rc.Units)
		schedules = append(schedules, s)
	}
	return schedules, skipped, nil
}

// fillFromUnit completes the vehicle snapshot from the fleet entry with the
// same plate. Values present on the row win.
func fillFromUnit(s *entity.Schedule, units map[string]entity.TransportUnit) {
	if s.PlateNumber == "" {
		return
	}
	unit, ok := units[plateKey(s.PlateNumber)]
	if !ok {
		return
	}
	if s.UnitType == "" {
		s.UnitType = unit.UnitType
	}
	if s.TransportUnit == "" {
		s.TransportUnit = unit.Name
	}
	if s.Color == "" {
		s.Color = unit.Color
	}
}

// IndexUnits keys transport units by normalized plate number
func IndexUnits(units []entity.TransportUnit) map[string]entity.TransportUnit {
	index := make(map[string]entity.TransportUnit, len(units))
	for _, u := range units {
		if key := plateKey(u.PlateNo); key != "" {
			index[key] = u
		}
	}
	return index
}

func plateKey(plate string) string {
	return strings.ToUpper(strings.Join(strings.FieldsFunc(plate, func(r rune) bool {
		return r == ' ' || r == '-'
	}), ""))
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Importer reads booking workbooks and creates their schedules
type Importer struct {
	schedules repository.ScheduleGateway
	roster    repository.RosterGateway
	ids       *TransactionIDs
	store     *Store
	outbox    Publisher
	company   string
	location  *time.Location
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

// NewImporter creates a new importer. store and outbox may be nil.
func NewImporter(
	schedules repository.ScheduleGateway,
	roster repository.RosterGateway,
	ids *TransactionIDs,
	store *Store,
	outbox Publisher,
	company string,
	location *time.Location,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Importer {
	if location == nil {
		location = time.UTC
	}
	return &Importer{
		schedules: schedules,
		roster:    roster,
		ids:       ids,
		store:     store,
		outbox:    outbox,
		company:   company,
		location:  location,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Import reads the BOOKING sheet of a workbook and persists the rows dated
// targetDate, tomorrow when targetDate is empty. Notifications are queued
// only after the batch is saved; their failures never undo the import.
func (i *Importer) Import(ctx context.Context, filename string, data []byte, targetDate string) (*ImportResult, error) {
	start := i.now()
	defer func() {
		i.metrics.ImportTime.Observe(time.Since(start).Seconds())
	}()

	if targetDate == "" {
		targetDate = utils.TomorrowIn(i.now(), i.location)
	}
	result := &ImportResult{TargetDate: targetDate}

	workbook, err := utils.OpenWorkbook(filename, data)
	if err != nil {
		i.metrics.ImportsTotal.WithLabelValues("failed").Inc()
		return result, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	rows, ok := workbook.Sheet(BookingSheet)
	if !ok {
		i.metrics.ImportsTotal.WithLabelValues("failed").Inc()
		return result, ErrSheetNotFound
	}

	directory := LoadDirectory(ctx, i.roster, i.logger)
	units, err := i.roster.ListTransportUnits(ctx)
	if err != nil {
		i.logger.Warn("Failed to fetch transport units, skipping vehicle auto-fill", "error", err)
	}

	taken := make(map[string]bool)
	if i.store != nil {
		for _, s := range i.store.All() {
			taken[s.TransactionID] = true
		}
	}

	schedules, skipped, err := BuildSchedules(rows, RowContext{
		TargetDate: targetDate,
		Directory:  directory,
		Units:      IndexUnits(units),
		Company:    i.company,
		NextID: func() (string, error) {
			return i.ids.Next(ctx, taken)
		},
	})
	result.Skipped = skipped
	i.metrics.RowsSkipped.Add(float64(skipped))
	if err != nil {
		i.metrics.ImportsTotal.WithLabelValues("failed").Inc()
		return result, err
	}
	if len(schedules) == 0 {
		i.metrics.ImportsTotal.WithLabelValues("empty").Inc()
		i.logger.Info("No schedules found for target date", "file", filename, "targetDate", targetDate, "skipped", skipped)
		return result, ErrNoSchedules
	}

	if err := i.schedules.CreateSchedules(ctx, schedules); err != nil {
		i.metrics.ImportsTotal.WithLabelValues("failed").Inc()
		i.metrics.ErrorsCount.WithLabelValues("import").Inc()
		return result, fmt.Errorf("failed to save schedules: %w", err)
	}
	result.Schedules = schedules
	i.metrics.ImportsTotal.WithLabelValues("saved").Inc()
	i.metrics.SchedulesImported.Add(float64(len(schedules)))

	if i.store != nil {
		i.store.Upsert(schedules...)
	}
	i.queueNotifications(schedules)

	i.logger.Info("Imported schedules",
		"file", filename,
		"targetDate", targetDate,
		"count", len(schedules),
		"skipped", skipped)
	return result, nil
}

func (i *Importer) queueNotifications(schedules []entity.Schedule) {
	if i.outbox == nil {
		return
	}
	now := i.now()
	var batch []*entity.OutboundMessage
	for _, s := range schedules {
		if msg := NewBookingNotification(s, now); msg != nil {
			batch = append(batch, msg)
		}
	}
	if len(batch) > 0 {
		i.outbox.Publish(batch)
	}
}
