package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/repository"
)

// SettingsHandler serves the per-trainer booking configuration.
type SettingsHandler struct {
	Settings *repository.SettingsRepo
}

func NewSettingsHandler(r *repository.SettingsRepo) *SettingsHandler {
	return &SettingsHandler{Settings: r}
}

type settingsPatchReq struct {
	EnableOnlineBooking    *bool   `json:"enable_online_booking"`
	RequireApproval        *bool   `json:"require_approval"`
	AllowGuestBooking      *bool   `json:"allow_guest_booking"`
	MinAdvanceHours        *int    `json:"min_advance_hours"`
	MaxAdvanceDays         *int    `json:"max_advance_days"`
	DefaultDurationMinutes *int    `json:"default_duration_minutes"`
	BufferTimeMinutes      *int    `json:"buffer_time_minutes"`
	CancellationHours      *int    `json:"cancellation_hours"`
	NotifyNewBooking       *bool   `json:"notify_new_booking"`
	NotifyCancellation     *bool   `json:"notify_cancellation"`
	SendReminders          *bool   `json:"send_reminders"`
	ReminderHoursBefore    *int    `json:"reminder_hours_before"`
	BookingPageSlug        *string `json:"booking_page_slug"`
	BookingPageTitle       *string `json:"booking_page_title"`
	BookingPageDescription *string `json:"booking_page_description"`
}

type settingsView struct {
	EnableOnlineBooking    bool    `json:"enable_online_booking"`
	RequireApproval        bool    `json:"require_approval"`
	AllowGuestBooking      bool    `json:"allow_guest_booking"`
	MinAdvanceHours        int     `json:"min_advance_hours"`
	MaxAdvanceDays         int     `json:"max_advance_days"`
	DefaultDurationMinutes int     `json:"default_duration_minutes"`
	BufferTimeMinutes      int     `json:"buffer_time_minutes"`
	CancellationHours      int     `json:"cancellation_hours"`
	NotifyNewBooking       bool    `json:"notify_new_booking"`
	NotifyCancellation     bool    `json:"notify_cancellation"`
	SendReminders          bool    `json:"send_reminders"`
	ReminderHoursBefore    int     `json:"reminder_hours_before"`
	BookingPageSlug        *string `json:"booking_page_slug"`
	BookingPageTitle       *string `json:"booking_page_title"`
	BookingPageDescription *string `json:"booking_page_description"`
	UpdatedAt              string  `json:"updated_at"`
}

func settingsToView(s *model.BookingSettings) settingsView {
	return settingsView{
		EnableOnlineBooking:    s.EnableOnlineBooking,
		RequireApproval:        s.RequireApproval,
		AllowGuestBooking:      s.AllowGuestBooking,
		MinAdvanceHours:        s.MinAdvanceHours,
		MaxAdvanceDays:         s.MaxAdvanceDays,
		DefaultDurationMinutes: s.DefaultDurationMinutes,
		BufferTimeMinutes:      s.BufferTimeMinutes,
		CancellationHours:      s.CancellationHours,
		NotifyNewBooking:       s.NotifyNewBooking,
		NotifyCancellation:     s.NotifyCancellation,
		SendReminders:          s.SendReminders,
		ReminderHoursBefore:    s.ReminderHoursBefore,
		BookingPageSlug:        s.BookingPageSlug,
		BookingPageTitle:       s.BookingPageTitle,
		BookingPageDescription: s.BookingPageDescription,
		UpdatedAt:              s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// Get returns the trainer's booking settings, creating the default row
// on first access.
func (h *SettingsHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Settings.GetOrCreate(ctx, trainerID(c))
	if err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, settingsToView(s))
}

// Patch merges the present fields into the settings row.  The booking
// page slug must be unique across trainers.
func (h *SettingsHandler) Patch(c echo.Context) error {
	var req settingsPatchReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tid := trainerID(c)
	s, err := h.Settings.GetOrCreate(ctx, tid)
	if err != nil {
		return repoErr(c, err)
	}

	if req.EnableOnlineBooking != nil {
		s.EnableOnlineBooking = *req.EnableOnlineBooking
	}
	if req.RequireApproval != nil {
		s.RequireApproval = *req.RequireApproval
	}
	if req.AllowGuestBooking != nil {
		s.AllowGuestBooking = *req.AllowGuestBooking
	}
	if req.MinAdvanceHours != nil {
		if *req.MinAdvanceHours < 0 {
			return fail(c, http.StatusBadRequest, "min_advance_hours must be >= 0")
		}
		s.MinAdvanceHours = *req.MinAdvanceHours
	}
	if req.MaxAdvanceDays != nil {
		if *req.MaxAdvanceDays < 1 {
			return fail(c, http.StatusBadRequest, "max_advance_days must be >= 1")
		}
		s.MaxAdvanceDays = *req.MaxAdvanceDays
	}
	if req.DefaultDurationMinutes != nil {
		if *req.DefaultDurationMinutes < 15 || *req.DefaultDurationMinutes > 480 {
			return fail(c, http.StatusBadRequest, "default_duration_minutes must be between 15 and 480")
		}
		s.DefaultDurationMinutes = *req.DefaultDurationMinutes
	}
	if req.BufferTimeMinutes != nil {
		if *req.BufferTimeMinutes < 0 {
			return fail(c, http.StatusBadRequest, "buffer_time_minutes must be >= 0")
		}
		s.BufferTimeMinutes = *req.BufferTimeMinutes
	}
	if req.CancellationHours != nil {
		if *req.CancellationHours < 0 {
			return fail(c, http.StatusBadRequest, "cancellation_hours must be >= 0")
		}
		s.CancellationHours = *req.CancellationHours
	}
	if req.NotifyNewBooking != nil {
		s.NotifyNewBooking = *req.NotifyNewBooking
	}
	if req.NotifyCancellation != nil {
		s.NotifyCancellation = *req.NotifyCancellation
	}
	if req.SendReminders != nil {
		s.SendReminders = *req.SendReminders
	}
	if req.ReminderHoursBefore != nil {
		if *req.ReminderHoursBefore < 1 {
			return fail(c, http.StatusBadRequest, "reminder_hours_before must be >= 1")
		}
		s.ReminderHoursBefore = *req.ReminderHoursBefore
	}
	if req.BookingPageSlug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.BookingPageSlug))
		if slug == "" {
			s.BookingPageSlug = nil
		} else {
			if !slugPattern.MatchString(slug) {
				return fail(c, http.StatusBadRequest, "booking_page_slug must be 3-64 lowercase letters, digits or hyphens")
			}
			taken, err := h.Settings.SlugTaken(ctx, slug, tid)
			if err != nil {
				return repoErr(c, err)
			}
			if taken {
				return fail(c, http.StatusConflict, "booking_page_slug already in use")
			}
			s.BookingPageSlug = &slug
		}
	}
	if req.BookingPageTitle != nil {
		s.BookingPageTitle = req.BookingPageTitle
	}
	if req.BookingPageDescription != nil {
		s.BookingPageDescription = req.BookingPageDescription
	}

	if err := h.Settings.Update(ctx, s); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, settingsToView(s))
}
