package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peakform/trainer-crm/internal/repository"
)

// DashboardHandler aggregates the landing-page numbers.
type DashboardHandler struct {
	Clients  *repository.ClientRepo
	Sessions *repository.SessionRepo
	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo
}

func NewDashboardHandler(cl *repository.ClientRepo, s *repository.SessionRepo, b *repository.BookingRepo, p *repository.PaymentRepo) *DashboardHandler {
	return &DashboardHandler{Clients: cl, Sessions: s, Bookings: b, Payments: p}
}

// Get returns active client, session, pending booking and revenue
// figures for the trainer.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tid := trainerID(c)

	activeClients, err := h.Clients.CountActive(ctx, tid)
	if err != nil {
		return repoErr(c, err)
	}
	stats, err := h.Sessions.Stats(ctx, tid)
	if err != nil {
		return repoErr(c, err)
	}
	pendingBookings, err := h.Bookings.CountPending(ctx, tid)
	if err != nil {
		return repoErr(c, err)
	}
	monthStart := time.Now().UTC().AddDate(0, 0, -30)
	revenue, err := h.Payments.Revenue(ctx, tid, monthStart)
	if err != nil {
		return repoErr(c, err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"active_clients":   activeClients,
		"pending_bookings": pendingBookings,
		"sessions": echo.Map{
			"total":     stats.Total,
			"by_status": stats.ByStatus,
			"by_type":   stats.ByType,
			"upcoming":  stats.Upcoming,
		},
		"revenue": echo.Map{
			"total_cents":        revenue.TotalCents,
			"last_30_days_cents": revenue.RecentCents,
		},
	})
}
