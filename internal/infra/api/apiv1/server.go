package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/infra/logging"
	"gym-membership-service/internal/infra/metrics"
	red "gym-membership-service/internal/infra/redis"
	"gym-membership-service/internal/usecase"
)

// Server exposes the membership lifecycle over JSON/HTTP.
type Server struct {
	membershipUC usecase.MembershipUseCase
	freezeUC     usecase.FreezeUseCase
	billingUC    usecase.BillingUseCase
	reminderUC   usecase.ReminderUseCase
	checkInUC    usecase.CheckInUseCase
	planUC       usecase.PlanUseCase
	statsUC      usecase.StatsUseCase

	limiter       *red.RateLimiter
	checkInPerMin int
	log           *zerolog.Logger
}

type Deps struct {
	MembershipUC usecase.MembershipUseCase
	FreezeUC     usecase.FreezeUseCase
	BillingUC    usecase.BillingUseCase
	ReminderUC   usecase.ReminderUseCase
	CheckInUC    usecase.CheckInUseCase
	PlanUC       usecase.PlanUseCase
	StatsUC      usecase.StatsUseCase

	// Limiter may be nil; kiosk check-in throttling is then disabled.
	Limiter       *red.RateLimiter
	CheckInPerMin int
}

func NewServer(deps Deps, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "apiv1").Logger()
	return &Server{
		membershipUC:  deps.MembershipUC,
		freezeUC:      deps.FreezeUC,
		billingUC:     deps.BillingUC,
		reminderUC:    deps.ReminderUC,
		checkInUC:     deps.CheckInUC,
		planUC:        deps.PlanUC,
		statsUC:       deps.StatsUC,
		limiter:       deps.Limiter,
		checkInPerMin: deps.CheckInPerMin,
		log:           &srvLog,
	}
}

// RegisterAPIV1 mounts all /api/v1 routes on the router.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/memberships", s.handleCreateMembership)
		r.Get("/memberships/{id}", s.handleGetMembership)
		r.Get("/members/{memberID}/memberships", s.handleListMemberships)

		r.Post("/memberships/{id}/suspend", s.handleSuspend)
		r.Post("/memberships/{id}/reactivate", s.handleReactivate)
		r.Post("/memberships/{id}/blacklist", s.handleBlacklist)
		r.Post("/memberships/{id}/cancel", s.handleCancel)

		r.Post("/memberships/{id}/freezes", s.handleScheduleFreeze)
		r.Get("/memberships/{id}/freezes", s.handleListFreezes)
		r.Post("/memberships/{id}/unfreeze", s.handleUnfreeze)

		r.Post("/memberships/{id}/checkin", s.handleCheckIn)
		r.Post("/checkins/{id}/checkout", s.handleCheckOut)
		r.Get("/memberships/{id}/visits", s.handleVisitCount)

		r.Get("/memberships/{id}/payments", s.handleListPayments)
		r.Post("/payments/{id}/paid", s.handleMarkPaid)
		r.Post("/payments/{id}/failed", s.handleMarkFailed)
		r.Post("/payments/{id}/reminders", s.handleSendReminder)
		r.Get("/payments/{id}/reminders", s.handleReminderHistory)

		r.Get("/plans", s.handleListPlans)
	})
}

// RegisterAdmin mounts the admin-only routes. The caller wraps the router in
// its auth middleware.
func RegisterAdmin(r chi.Router, s *Server) {
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/plans", s.handleCreatePlan)
		r.Post("/plans/{id}/deactivate", s.handleDeactivatePlan)
		r.Get("/stats", s.handleStats)
	})
}

//
// ---------------- memberships ----------------
//

type createMembershipRequest struct {
	MemberID  string     `json:"member_id"`
	PlanID    string     `json:"plan_id"`
	StartDate *time.Time `json:"start_date,omitempty"`
	AutoRenew *bool      `json:"auto_renew,omitempty"`
}

func (s *Server) handleCreateMembership(w http.ResponseWriter, r *http.Request) {
	var req createMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now().UTC()
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	m, err := s.membershipUC.Create(r.Context(), req.MemberID, req.PlanID, start, autoRenew)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMembership(w http.ResponseWriter, r *http.Request) {
	m, err := s.membershipUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	list, err := s.membershipUC.ListByMember(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type transitionRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

func (s *Server) handleSuspend(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := s.membershipUC.Suspend(r.Context(), chi.URLParam(r, "id"), req.Reason, req.Actor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncMembershipTransition(model.MembershipStatusSuspended)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleReactivate(w http.ResponseWriter, r *http.Request) {
	m, err := s.membershipUC.Reactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncMembershipTransition(model.MembershipStatusActive)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := s.membershipUC.Blacklist(r.Context(), chi.URLParam(r, "id"), req.Reason, req.Actor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncMembershipTransition(model.MembershipStatusBlacklisted)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := s.membershipUC.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncMembershipTransition(model.MembershipStatusCancelled)
	writeJSON(w, http.StatusOK, m)
}

//
// ---------------- freezes ----------------
//

type scheduleFreezeRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

func (s *Server) handleScheduleFreeze(w http.ResponseWriter, r *http.Request) {
	var req scheduleFreezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f, err := s.freezeUC.Schedule(r.Context(), chi.URLParam(r, "id"), req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncFreezeScheduled()
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleListFreezes(w http.ResponseWriter, r *http.Request) {
	list, err := s.freezeUC.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUnfreeze(w http.ResponseWriter, r *http.Request) {
	m, err := s.freezeUC.Unfreeze(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncMembershipTransition(model.MembershipStatusActive)
	writeJSON(w, http.StatusOK, m)
}

//
// ---------------- check-ins ----------------
//

type checkInRequest struct {
	Location string `json:"location"`
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && s.checkInPerMin > 0 {
		terminal := r.Header.Get("X-Terminal-ID")
		if terminal != "" {
			ok, err := s.limiter.Allow(r.Context(), red.TerminalKey(terminal), s.checkInPerMin, time.Minute)
			if err != nil {
				// Redis down must not lock the front door.
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
			} else if !ok {
				metrics.IncCheckInDenied("rate_limited")
				writeError(w, http.StatusTooManyRequests, "terminal rate limit exceeded")
				return
			}
		}
	}

	var req checkInRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := s.checkInUC.CheckIn(r.Context(), chi.URLParam(r, "id"), req.Location)
	if err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			metrics.IncCheckInDenied("membership_not_active")
		} else if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			metrics.IncCheckInDenied("already_checked_in")
		}
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncCheckIn()
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	c, err := s.checkInUC.CheckOut(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleVisitCount(w http.ResponseWriter, r *http.Request) {
	var from, until time.Time
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'from' timestamp")
			return
		}
		from = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'until' timestamp")
			return
		}
		until = t
	}

	n, err := s.checkInUC.VisitCount(r.Context(), chi.URLParam(r, "id"), from, until)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"visits": n})
}

//
// ---------------- payments & reminders ----------------
//

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	list, err := s.billingUC.ListByMembership(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	p, err := s.billingUC.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncPayment(string(p.Status))
	metrics.AddPaymentRevenue(p.Currency, p.AmountCents)
	writeJSON(w, http.StatusOK, p)
}

type markFailedRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleMarkFailed(w http.ResponseWriter, r *http.Request) {
	var req markFailedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.billingUC.MarkFailed(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncPayment(string(p.Status))
	writeJSON(w, http.StatusOK, p)
}

type sendReminderRequest struct {
	Method string `json:"method"`
}

func (s *Server) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	var req sendReminderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	rem, err := s.reminderUC.Send(r.Context(), chi.URLParam(r, "id"), model.ReminderMethod(req.Method))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.IncReminderSent(string(rem.Type))
	writeJSON(w, http.StatusCreated, rem)
}

func (s *Server) handleReminderHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.reminderUC.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

//
// ---------------- plans & stats ----------------
//

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	list, err := s.planUC.ListActive(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createPlanRequest struct {
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval"`
	IntervalCount int    `json:"interval_count"`
	TrialDays     int    `json:"trial_days"`
	MaxFreezes    int    `json:"max_freezes"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IntervalCount == 0 {
		req.IntervalCount = 1
	}
	p, err := s.planUC.Create(r.Context(), req.Name, req.PriceCents, req.Currency, model.BillingInterval(req.Interval), req.IntervalCount, req.TrialDays, req.MaxFreezes)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeactivatePlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.planUC.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Collect(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	metrics.SetMembershipsTotal(stats.MembershipsByStatus)
	metrics.SetOpenCheckIns(stats.OpenCheckIns)
	writeJSON(w, http.StatusOK, stats)
}

//
// ---------------- helpers ----------------
//

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrMissingReason),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrOverlappingFreeze),
		errors.Is(err, domain.ErrFreezeQuotaExceeded),
		errors.Is(err, domain.ErrAlreadyCheckedIn),
		errors.Is(err, domain.ErrNotCheckedIn),
		errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrLockNotAcquired):
		writeError(w, http.StatusTooManyRequests, "busy, retry shortly")
	default:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
