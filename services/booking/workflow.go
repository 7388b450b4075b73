package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"beautycita/models"

	"go.uber.org/zap"
)

// Step is a booking workflow state.
type Step string

const (
	StepSelectingService  Step = "selecting_service"
	StepSelectingDateTime Step = "selecting_datetime"
	StepSelectingStylist  Step = "selecting_stylist"
	StepConfirming        Step = "confirming"
	StepSubmitted         Step = "submitted"
	StepCancelled         Step = "cancelled"
)

var previousStep = map[Step]Step{
	StepSelectingDateTime: StepSelectingService,
	StepSelectingStylist:  StepSelectingDateTime,
	StepConfirming:        StepSelectingStylist,
}

// User-visible notices raised by the workflow.
var (
	NoticeRequestSent   = models.Notice{Level: "info", Message: "Appointment request sent! Waiting for stylist confirmation..."}
	NoticeConfirmed     = models.Notice{Level: "success", Message: "Appointment confirmed! You will receive booking details shortly."}
	NoticeGraceWindow   = models.Notice{Level: "info", Message: "Stylist has 5 more minutes to respond"}
	NoticeExpired       = models.Notice{Level: "warning", Message: "Appointment request expired. Please try booking with another stylist."}
	NoticeSearchFailed  = models.Notice{Level: "error", Message: "Failed to load stylists. Please try again."}
	NoticeBookingFailed = models.Notice{Level: "error", Message: "Booking failed. Please try again."}
)

// closeTimeout bounds the store call that ends an expired or withdrawn request.
const closeTimeout = 5 * time.Second

// Dependencies are the collaborators a Workflow talks to. Locator, Closer,
// Confirmations and Notifier may be nil. Locator is always wrapped in a
// LocationResolver bounded by LocateTimeout.
type Dependencies struct {
	Search        StylistSearcher
	Appointments  AppointmentCreator
	Closer        AppointmentCloser
	Locator       Locator
	LocateTimeout time.Duration
	Confirmations ConfirmationChannel
	Notifier      Notifier
	Clock         Clock
	Logger        *zap.Logger
}

// Snapshot is a read-only copy of a workflow's state.
type Snapshot struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"userId"`
	Step         Step                   `json:"step"`
	Draft        models.BookingDraft    `json:"draft"`
	Price        *models.PriceBreakdown `json:"price,omitempty"`
	StylistCount int                    `json:"stylistCount"`
	SearchError  string                 `json:"searchError,omitempty"`
	Appointment  *models.Appointment    `json:"appointment,omitempty"`
	Confirmation *ConfirmationTimer     `json:"confirmation,omitempty"`
	Notices      []models.Notice        `json:"notices"`
	Closed       bool                   `json:"closed"`
}

// Workflow drives one client through a booking attempt. Each method takes the
// workflow lock, so calls for one session are serialised. Lock order is workflow
// then confirmation protocol; protocol callbacks arrive without the protocol lock.
type Workflow struct {
	mu sync.Mutex

	id     string
	userID string
	deps   Dependencies
	locate *LocationResolver
	ranker *Ranker
	timers *ConfirmationProtocol
	logger *zap.Logger

	step        Step
	draft       models.BookingDraft
	stylists    []models.CandidateStylist
	searchError string
	appointment *models.Appointment
	unsubscribe func()
	notices     []models.Notice
	pending     []models.Notice
	deferred    []func()
	closed      bool
	lastActive  time.Time
}

// NewWorkflow starts a booking attempt for userID, optionally pre-seeded with a category.
func NewWorkflow(id, userID, category string, deps Dependencies) *Workflow {
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	w := &Workflow{
		id:     id,
		userID: userID,
		deps:   deps,
		ranker: NewRanker(deps.Clock.Now),
		logger: deps.Logger.With(zap.String("sessionID", id), zap.String("userID", userID)),
		step:   StepSelectingService,
		draft:  models.NewBookingDraft(category),
	}
	w.locate = NewLocationResolver(deps.Locator, deps.LocateTimeout, deps.Logger)
	w.timers = NewConfirmationProtocol(deps.Clock, w.logger, w.onConfirmation)
	w.lastActive = deps.Clock.Now()
	return w
}

func (w *Workflow) ID() string     { return w.id }
func (w *Workflow) UserID() string { return w.userID }

func (w *Workflow) lock() {
	w.mu.Lock()
	w.lastActive = w.deps.Clock.Now()
}

// unlock releases the workflow, runs queued store calls and then delivers queued notices.
func (w *Workflow) unlock() {
	out, calls := w.pending, w.deferred
	w.pending, w.deferred = nil, nil
	w.mu.Unlock()
	for _, fn := range calls {
		fn()
	}
	if w.deps.Notifier == nil {
		return
	}
	for _, n := range out {
		w.deps.Notifier.Notify(context.Background(), w.userID, n)
	}
}

func (w *Workflow) notice(n models.Notice) {
	w.notices = append(w.notices, n)
	w.pending = append(w.pending, n)
}

func (w *Workflow) requireStep(steps ...Step) error {
	if w.closed {
		return ErrWorkflowClosed
	}
	for _, s := range steps {
		if w.step == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrStepNotAllowed, w.step)
}

// SelectCategory sets the service category. Changing it clears a chosen service.
func (w *Workflow) SelectCategory(category string) error {
	w.lock()
	defer w.unlock()
	if err := w.requireStep(StepSelectingService); err != nil {
		return err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return newValidationError("category", "Please select a category")
	}
	if w.draft.Service != nil && w.draft.Service.Category != "" && w.draft.Service.Category != category {
		w.draft.Service = nil
	}
	w.draft.Category = category
	return nil
}

// SelectService sets the service to book.
func (w *Workflow) SelectService(service models.ServiceRef) error {
	w.lock()
	defer w.unlock()
	if err := w.requireStep(StepSelectingService); err != nil {
		return err
	}
	if service.ID == "" {
		return newValidationError("service", "Please select a service")
	}
	if service.Category != "" {
		w.draft.Category = service.Category
	}
	svc := service
	w.draft.Service = &svc
	return nil
}

// SetSchedule sets the requested date ("YYYY-MM-DD") and time ("HH:MM"). The slot
// must respect the service's booking advance.
func (w *Workflow) SetSchedule(date, clock string, flexible bool) error {
	w.lock()
	defer w.unlock()
	if err := w.requireStep(StepSelectingDateTime); err != nil {
		return err
	}
	if date == "" {
		return newValidationError("date", "Please select date and time")
	}
	if clock == "" {
		return newValidationError("time", "Please select date and time")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return newValidationError("date", "Date must be YYYY-MM-DD")
	}
	if _, err := parseClock(clock); err != nil {
		return newValidationError("time", "Time must be HH:MM")
	}

	now := w.deps.Clock.Now()
	at, err := time.ParseInLocation("2006-01-02T15:04", date+"T"+clock, now.Location())
	if err != nil {
		return newValidationError("time", "Time must be HH:MM")
	}
	earliest := now
	if w.draft.Service != nil && w.draft.Service.BookingAdvanceHours > 0 {
		earliest = now.Add(time.Duration(w.draft.Service.BookingAdvanceHours) * time.Hour)
	}
	if at.Before(earliest) {
		return newValidationError("date", "Selected time is too soon for this service")
	}

	w.draft.Date = date
	w.draft.Time = clock
	w.draft.FlexibleTime = flexible
	return nil
}

// SetLocation records the client's own coordinates, used instead of the locator.
func (w *Workflow) SetLocation(p models.GeoPoint) error {
	w.lock()
	defer w.unlock()
	if err := w.requireStep(StepSelectingService, StepSelectingDateTime, StepSelectingStylist, StepConfirming); err != nil {
		return err
	}
	if !ValidPoint(p) {
		return newValidationError("location", "Invalid coordinates")
	}
	w.draft.Location = &p
	return nil
}

// SelectStylist picks a stylist from the current ranked results.
func (w *Workflow) SelectStylist(stylistID string) error {
	w.lock()
	defer w.unlock()
	if err := w.requireStep(StepSelectingStylist); err != nil {
		return err
	}
	if stylistID == "" {
		return newValidationError("stylistId", "Please select a stylist")
	}
	for _, c := range w.stylists {
		if c.ID == stylistID {
			w.draft.StylistID = stylistID
			return nil
		}
	}
	return ErrUnknownStylist
}

// SetDetails records notes and the payment method.
func (w *Workflow) SetDetails(notes string, method models.PaymentMethod) error {
	w.lock()
	defer w.unlock()
	if err := w.requireStep(StepSelectingStylist, StepConfirming); err != nil {
		return err
	}
	if method != "" && !method.Valid() {
		return newValidationError("paymentMethod", "Please select a payment method")
	}
	w.draft.Notes = notes
	if method != "" {
		w.draft.PaymentMethod = method
	}
	return nil
}

// Advance validates the current step and moves forward. Entering the stylist step runs
// the search; advancing from Confirming submits the appointment.
func (w *Workflow) Advance(ctx context.Context) error {
	w.lock()
	defer w.unlock()
	if w.closed {
		return ErrWorkflowClosed
	}

	switch w.step {
	case StepSelectingService:
		if w.draft.Service == nil {
			return newValidationError("service", "Please select a service")
		}
		w.step = StepSelectingDateTime
	case StepSelectingDateTime:
		if w.draft.Date == "" {
			return newValidationError("date", "Please select date and time")
		}
		if w.draft.Time == "" {
			return newValidationError("time", "Please select date and time")
		}
		w.step = StepSelectingStylist
		w.search(ctx)
	case StepSelectingStylist:
		if w.draft.StylistID == "" {
			return newValidationError("stylistId", "Please select a stylist")
		}
		w.step = StepConfirming
	case StepConfirming:
		if w.draft.StylistID == "" {
			return newValidationError("stylistId", "Please select a stylist")
		}
		if !w.draft.PaymentMethod.Valid() {
			return newValidationError("paymentMethod", "Please select a payment method")
		}
		return w.submit(ctx)
	default:
		return ErrWorkflowClosed
	}
	w.logger.Debug("Booking step advanced", zap.String("step", string(w.step)))
	return nil
}

// Back returns to the previous step. The draft keeps its values.
func (w *Workflow) Back() error {
	w.lock()
	defer w.unlock()
	if w.closed {
		return ErrWorkflowClosed
	}
	prev, ok := previousStep[w.step]
	if !ok {
		if w.step == StepSelectingService {
			return ErrNoPreviousStep
		}
		return ErrWorkflowClosed
	}
	if w.step == StepSelectingStylist {
		w.stylists = nil
		w.searchError = ""
	}
	w.step = prev
	return nil
}

// RetrySearch reruns the stylist search on the stylist step.
func (w *Workflow) RetrySearch(ctx context.Context) error {
	w.lock()
	defer w.unlock()
	if err := w.requireStep(StepSelectingStylist); err != nil {
		return err
	}
	return w.search(ctx)
}

// search replaces the working set. A failure leaves an empty set and a notice.
func (w *Workflow) search(ctx context.Context) error {
	loc := DefaultLocation
	if w.draft.Location != nil {
		loc = *w.draft.Location
	} else if p, err := w.locate.Locate(ctx); err == nil {
		loc = p
	}

	params := models.StylistSearchParams{
		Category:         w.draft.Category,
		Date:             w.draft.Date,
		Time:             w.draft.Time,
		FlexibleTime:     w.draft.FlexibleTime,
		Location:         loc,
		MaxDistanceMiles: MaxSearchDistanceMiles,
	}
	if w.draft.Service != nil {
		params.ServiceID = w.draft.Service.ID
	}

	found, err := w.deps.Search.SearchStylists(ctx, params)
	if err != nil {
		w.logger.Warn("Stylist search failed", zap.Error(err))
		w.stylists = []models.CandidateStylist{}
		w.searchError = NoticeSearchFailed.Message
		w.draft.StylistID = ""
		w.notice(NoticeSearchFailed)
		return &SearchFailure{Err: err}
	}

	w.stylists = w.ranker.Rank(found, RankRequest{Date: w.draft.Date, Time: w.draft.Time}, loc)
	w.searchError = ""
	if w.draft.StylistID != "" && !w.hasStylist(w.draft.StylistID) {
		w.draft.StylistID = ""
	}
	w.logger.Info("Stylists ranked", zap.Int("count", len(w.stylists)))
	return nil
}

func (w *Workflow) hasStylist(id string) bool {
	for _, c := range w.stylists {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (w *Workflow) submit(ctx context.Context) error {
	req := models.AppointmentRequest{
		ClientID:      w.userID,
		ServiceID:     w.draft.Service.ID,
		StylistID:     w.draft.StylistID,
		ScheduledAt:   w.draft.ScheduledAt(),
		FlexibleTime:  w.draft.FlexibleTime,
		Notes:         w.draft.Notes,
		PaymentMethod: w.draft.PaymentMethod,
	}
	res, err := w.deps.Appointments.CreateAppointment(ctx, req)
	if err == nil && res == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		w.logger.Warn("Appointment submission failed", zap.Error(err))
		w.notice(NoticeBookingFailed)
		return &SubmissionFailure{Err: err}
	}

	appt := res.Appointment
	w.appointment = &appt
	w.step = StepSubmitted
	w.draft = models.NewBookingDraft("")
	w.stylists = nil

	if res.Status == models.AppointmentConfirmed {
		w.appointment.Status = models.AppointmentConfirmed
		w.notice(NoticeConfirmed)
		w.logger.Info("Appointment confirmed on submission", zap.String("appointmentID", appt.ID))
		return nil
	}

	w.appointment.Status = models.AppointmentPending
	if _, err := w.timers.Start(appt.ID); err != nil {
		w.logger.Warn("Confirmation timers not started", zap.String("appointmentID", appt.ID), zap.Error(err))
	}
	if w.deps.Confirmations != nil {
		w.unsubscribe = w.deps.Confirmations.SubscribeAppointment(appt.ID, w.handleConfirmed)
	}
	w.notice(NoticeRequestSent)
	w.logger.Info("Appointment pending stylist confirmation", zap.String("appointmentID", appt.ID))
	return nil
}

// handleConfirmed is the real-time subscription callback for appointment_confirmed.
func (w *Workflow) handleConfirmed(ev models.AppointmentConfirmedEvent) {
	if ev.AppointmentID == "" {
		return
	}
	w.timers.Confirm(ev.AppointmentID)
}

// ConfirmAppointment feeds a confirmation received outside the subscription.
func (w *Workflow) ConfirmAppointment(appointmentID string) bool {
	return w.timers.Confirm(appointmentID)
}

func (w *Workflow) onConfirmation(t ConfirmationTimer) {
	w.mu.Lock()
	defer w.unlock()
	if w.closed || w.step != StepSubmitted || w.appointment == nil || w.appointment.ID != t.AppointmentID {
		return
	}
	switch t.State {
	case AwaitingHardConfirm:
		w.notice(NoticeGraceWindow)
	case Confirmed:
		now := w.deps.Clock.Now()
		w.appointment.Status = models.AppointmentConfirmed
		w.appointment.ConfirmedAt = &now
		w.release()
		w.notice(NoticeConfirmed)
	case Expired:
		w.release()
		w.appointment.Status = models.AppointmentExpired
		w.closeStored(t.AppointmentID, true)
		w.draft = models.NewBookingDraft("")
		w.closed = true
		w.notice(NoticeExpired)
	}
}

// release drops the appointment subscription and any live timers.
func (w *Workflow) release() {
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
	w.timers.CancelAll()
}

// closeStored queues the store update for a request the client no longer waits on.
// It runs after the workflow lock is released.
func (w *Workflow) closeStored(appointmentID string, expired bool) {
	if w.deps.Closer == nil {
		return
	}
	closer, userID, logger := w.deps.Closer, w.userID, w.logger
	w.deferred = append(w.deferred, func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		var err error
		if expired {
			err = closer.ExpireAppointment(ctx, appointmentID)
		} else {
			err = closer.WithdrawAppointment(ctx, userID, appointmentID)
		}
		if err != nil {
			logger.Warn("Failed to close stored appointment",
				zap.String("appointmentID", appointmentID),
				zap.Bool("expired", expired),
				zap.Error(err))
		}
	})
}

// Cancel closes the booking. Timers and subscriptions are released before the draft
// is discarded, and a request still awaiting the stylist is withdrawn. Calling it
// again is a no-op.
func (w *Workflow) Cancel() {
	w.lock()
	defer w.unlock()
	if w.closed {
		return
	}
	if w.step == StepSubmitted && w.appointment != nil && w.appointment.Status == models.AppointmentPending {
		w.appointment.Status = models.AppointmentCancelled
		w.closeStored(w.appointment.ID, false)
	}
	w.release()
	w.draft = models.NewBookingDraft("")
	w.stylists = nil
	if w.step != StepSubmitted {
		w.step = StepCancelled
	}
	w.closed = true
	w.logger.Info("Booking workflow closed")
}

// AwaitingConfirmation reports whether confirmation timers are still running.
func (w *Workflow) AwaitingConfirmation() bool {
	return w.timers.HasLive()
}

// Stylists returns the ranked working set, filtered by query and reordered by mode.
func (w *Workflow) Stylists(query string, mode SortMode) []models.CandidateStylist {
	w.lock()
	defer w.unlock()
	return Sort(Filter(w.stylists, query), mode)
}

// LastActive is when the workflow was last touched by a client call.
func (w *Workflow) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// Snapshot returns a copy of the workflow state.
func (w *Workflow) Snapshot() Snapshot {
	w.lock()
	defer w.unlock()

	s := Snapshot{
		ID:           w.id,
		UserID:       w.userID,
		Step:         w.step,
		Draft:        w.draft,
		StylistCount: len(w.stylists),
		SearchError:  w.searchError,
		Notices:      append([]models.Notice(nil), w.notices...),
		Closed:       w.closed,
	}
	if w.draft.Service != nil {
		svc := *w.draft.Service
		s.Draft.Service = &svc
		price := CalculateTotalPrice(svc)
		s.Price = &price
	}
	if w.draft.Location != nil {
		loc := *w.draft.Location
		s.Draft.Location = &loc
	}
	if w.appointment != nil {
		appt := *w.appointment
		s.Appointment = &appt
		if t, ok := w.timers.Get(appt.ID); ok {
			s.Confirmation = &t
		}
	}
	return s
}
