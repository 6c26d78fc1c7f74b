package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var errBackendDown = errors.New("backend down")

func testMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func testLogger() logger.Logger {
	return logger.NewNopLogger()
}

// fakeGateway is an in-memory ScheduleGateway
type fakeGateway struct {
	mu        sync.Mutex
	list      func(ctx context.Context) ([]entity.Schedule, error)
	created   [][]entity.Schedule
	updated   []entity.Schedule
	deleted   []string
	createErr error
	updateErr error
	deleteErr error
}

func (g *fakeGateway) ListSchedules(ctx context.Context) ([]entity.Schedule, error) {
	if g.list == nil {
		return nil, nil
	}
	return g.list(ctx)
}

func (g *fakeGateway) CreateSchedules(ctx context.Context, schedules []entity.Schedule) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return g.createErr
	}
	g.created = append(g.created, schedules)
	return nil
}

func (g *fakeGateway) UpdateSchedule(ctx context.Context, schedule entity.Schedule) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateErr != nil {
		return g.updateErr
	}
	g.updated = append(g.updated, schedule)
	return nil
}

func (g *fakeGateway) DeleteSchedule(ctx context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, transactionID)
	return nil
}

// fakeRoster is an in-memory RosterGateway
type fakeRoster struct {
	users    []entity.User
	units    []entity.TransportUnit
	usersErr error
	unitsErr error
}

func (r *fakeRoster) ListUsers(ctx context.Context) ([]entity.User, error) {
	return r.users, r.usersErr
}

func (r *fakeRoster) ListTransportUnits(ctx context.Context) ([]entity.TransportUnit, error) {
	return r.units, r.unitsErr
}

// fakeRegistry reserves IDs in a map
type fakeRegistry struct {
	mu    sync.Mutex
	taken map[string]bool
	err   error
}

func (r *fakeRegistry) Reserve(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if r.taken == nil {
		r.taken = make(map[string]bool)
	}
	if r.taken[id] {
		return false, nil
	}
	r.taken[id] = true
	return true, nil
}

// fakePublisher records published batches
type fakePublisher struct {
	batches [][]*entity.OutboundMessage
}

func (p *fakePublisher) Publish(batch []*entity.OutboundMessage) bool {
	p.batches = append(p.batches, batch)
	return true
}

// fakeSender fails for the phones listed in fail
type fakeSender struct {
	mu   sync.Mutex
	fail map[string]bool
	sent []string
}

func (s *fakeSender) Send(ctx context.Context, msg *entity.OutboundMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[msg.Phone] {
		return "", errBackendDown
	}
	s.sent = append(s.sent, msg.Phone)
	return "task-" + msg.TransactionID, nil
}

// fakeScheduleRepo is an in-memory server-side ScheduleRepository
type fakeScheduleRepo struct {
	mu       sync.Mutex
	arrivals []*entity.Schedule
	etas     map[string]entity.ETA
}

func (r *fakeScheduleRepo) FindAll(ctx context.Context) ([]*entity.Schedule, error) {
	return r.arrivals, nil
}

func (r *fakeScheduleRepo) FindByTransactionID(ctx context.Context, id string) (*entity.Schedule, error) {
	for _, s := range r.arrivals {
		if s.TransactionID == id {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeScheduleRepo) FindActiveArrivals(ctx context.Context, date string) ([]*entity.Schedule, error) {
	var out []*entity.Schedule
	for _, s := range r.arrivals {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) CreateMany(ctx context.Context, schedules []*entity.Schedule) ([]string, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (r *fakeScheduleRepo) SetETA(ctx context.Context, id string, eta entity.ETA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.etas == nil {
		r.etas = make(map[string]entity.ETA)
	}
	r.etas[id] = eta
	return nil
}

// fakeFlights returns the same position for every known flight
type fakeFlights struct {
	positions map[string]*entity.FlightPosition
	asked     []string
}

func (f *fakeFlights) GetLivePosition(ctx context.Context, flight string) (*entity.FlightPosition, error) {
	f.asked = append(f.asked, flight)
	pos, ok := f.positions[flight]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return pos, nil
}

// bookingRow builds a 21-column BOOKING row from the named cells
func bookingRow(cells map[int]interface{}) []interface{} {
	row := make([]interface{}, colTripType+1)
	for i := range row {
		row[i] = ""
	}
	for i, v := range cells {
		row[i] = v
	}
	return row
}

var bookingHeader = []interface{}{
	"DATE", "TIME", "CLIENT", "CONTACT", "NOTE", "PAX", "FLIGHT", "PICKUP", "DROP OFF",
	"DRIVER", "UNIT TYPE", "AMOUNT", "DRIVER RATE", "COMPANY", "BOOKING TYPE",
	"DRIVER PHONE", "TRANSPORT UNIT", "COLOR", "PLATE", "LUGGAGE", "TRIP TYPE",
}

// buildWorkbook writes rows into an in-memory .xlsx under sheet
func buildWorkbook(t *testing.T, sheet string, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
