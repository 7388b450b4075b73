package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"beautycita/models"
)

type fakeSearch struct {
	mu      sync.Mutex
	results []models.CandidateStylist
	err     error
	calls   []models.StylistSearchParams
}

func (f *fakeSearch) SearchStylists(_ context.Context, p models.StylistSearchParams) ([]models.CandidateStylist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.CandidateStylist(nil), f.results...), nil
}

type fakeCreator struct {
	status string
	err    error
	got    []models.AppointmentRequest
}

func (f *fakeCreator) CreateAppointment(_ context.Context, req models.AppointmentRequest) (*models.AppointmentResult, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentResult{
		Status: f.status,
		Appointment: models.Appointment{
			ID: "appt-1", ClientID: req.ClientID, StylistID: req.StylistID,
			ServiceID: req.ServiceID, ScheduledAt: req.ScheduledAt, Status: f.status,
		},
	}, nil
}

type fakeChannel struct {
	mu   sync.Mutex
	subs map[string]map[int]func(models.AppointmentConfirmedEvent)
	next int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{subs: make(map[string]map[int]func(models.AppointmentConfirmedEvent))}
}

func (c *fakeChannel) SubscribeAppointment(id string, fn func(models.AppointmentConfirmedEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs[id] == nil {
		c.subs[id] = make(map[int]func(models.AppointmentConfirmedEvent))
	}
	c.next++
	key := c.next
	c.subs[id][key] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[id], key)
	}
}

func (c *fakeChannel) publish(id string) {
	c.mu.Lock()
	var fns []func(models.AppointmentConfirmedEvent)
	for _, fn := range c.subs[id] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(models.AppointmentConfirmedEvent{AppointmentID: id})
	}
}

func (c *fakeChannel) count(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs[id])
}

type fakeCloser struct {
	mu        sync.Mutex
	expired   []string
	withdrawn []string
}

func (f *fakeCloser) ExpireAppointment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, id)
	return nil
}

func (f *fakeCloser) WithdrawAppointment(_ context.Context, clientID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawn = append(f.withdrawn, clientID+"/"+id)
	return nil
}

func (f *fakeCloser) calls() (expired, withdrawn []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.expired...), append([]string(nil), f.withdrawn...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, notice models.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.notices))
	for i, x := range n.notices {
		out[i] = x.Message
	}
	return out
}

type testEnv struct {
	clock    *fakeClock
	search   *fakeSearch
	creator  *fakeCreator
	channel  *fakeChannel
	closer   *fakeCloser
	notifier *recordingNotifier
}

var haircut = models.ServiceRef{ID: "svc-cut", Name: "Haircut", Category: "hair", BasePrice: 50, DurationMinutes: 45}

func newTestWorkflow(status string) (*Workflow, *testEnv) {
	env := &testEnv{
		clock: newFakeClock(frozenNow),
		search: &fakeSearch{results: []models.CandidateStylist{
			{ID: "far", RatingAverage: 5, DistanceMiles: 20},
			{ID: "near", RatingAverage: 4.8, DistanceMiles: 1, Availability: []models.AvailabilitySlot{{Date: "2024-03-05", Time: "09:00"}}},
		}},
		creator:  &fakeCreator{status: status},
		channel:  newFakeChannel(),
		closer:   &fakeCloser{},
		notifier: &recordingNotifier{},
	}
	w := NewWorkflow("sess-1", "client-1", "", Dependencies{
		Search:        env.search,
		Appointments:  env.creator,
		Closer:        env.closer,
		Confirmations: env.channel,
		Notifier:      env.notifier,
		Clock:         env.clock,
	})
	return w, env
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// driveToConfirming takes a fresh workflow up to the confirm step with "near" selected.
func driveToConfirming(t *testing.T, w *Workflow) {
	t.Helper()
	ctx := context.Background()
	mustNil(t, w.SelectService(haircut))
	mustNil(t, w.Advance(ctx))
	mustNil(t, w.SetSchedule("2024-03-05", "09:15", true))
	mustNil(t, w.Advance(ctx))
	mustNil(t, w.SelectStylist("near"))
	mustNil(t, w.Advance(ctx))
	mustNil(t, w.SetDetails("first visit", models.PaymentCard))
}

func TestAdvanceWithoutServiceFails(t *testing.T) {
	w, _ := newTestWorkflow(models.AppointmentConfirmed)
	err := w.Advance(context.Background())

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "service" {
		t.Fatalf("Advance err = %v, want ValidationError on service", err)
	}
	if got := w.Snapshot().Step; got != StepSelectingService {
		t.Fatalf("step = %s, want %s", got, StepSelectingService)
	}
}

func TestStepGatingOnEachStep(t *testing.T) {
	w, _ := newTestWorkflow(models.AppointmentConfirmed)
	ctx := context.Background()
	mustNil(t, w.SelectService(haircut))
	mustNil(t, w.Advance(ctx))

	var verr *ValidationError
	if err := w.Advance(ctx); !errors.As(err, &verr) || verr.Field != "date" {
		t.Fatalf("advance without schedule = %v", err)
	}
	if err := w.SetSchedule("2024-03-05", "", true); !errors.As(err, &verr) || verr.Field != "time" {
		t.Fatalf("schedule without time = %v", err)
	}
	w.draft.Date = "2024-03-05"
	if err := w.Advance(ctx); !errors.As(err, &verr) || verr.Field != "time" {
		t.Fatalf("advance with date only = %v", err)
	}
	mustNil(t, w.SetSchedule("2024-03-05", "09:15", true))
	mustNil(t, w.Advance(ctx))

	if err := w.Advance(ctx); !errors.As(err, &verr) || verr.Field != "stylistId" {
		t.Fatalf("advance without stylist = %v", err)
	}
	mustNil(t, w.SelectStylist("near"))
	mustNil(t, w.Advance(ctx))

	if err := w.Advance(ctx); !errors.As(err, &verr) || verr.Field != "paymentMethod" {
		t.Fatalf("submit without payment = %v", err)
	}
	if got := w.Snapshot().Step; got != StepConfirming {
		t.Fatalf("step = %s", got)
	}
}

func TestSearchRanksResultsWithDefaultLocation(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentConfirmed)
	ctx := context.Background()
	mustNil(t, w.SelectService(haircut))
	mustNil(t, w.Advance(ctx))
	mustNil(t, w.SetSchedule("2024-03-05", "09:15", false))
	mustNil(t, w.Advance(ctx))

	if len(env.search.calls) != 1 {
		t.Fatalf("search calls = %d", len(env.search.calls))
	}
	p := env.search.calls[0]
	if p.Location != DefaultLocation || p.MaxDistanceMiles != 25 || p.ServiceID != "svc-cut" || p.Category != "hair" || p.FlexibleTime {
		t.Fatalf("search params = %+v", p)
	}

	got := w.Stylists("", SortByMatch)
	if len(got) != 2 || got[0].ID != "near" {
		t.Fatalf("ranked = %v", ids(got))
	}
	if got[0].MatchScore == 0 {
		t.Fatalf("ranked candidates were not scored")
	}
}

func TestSearchUsesClientLocation(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentConfirmed)
	ctx := context.Background()
	here := models.GeoPoint{Lat: 34.05, Lng: -118.24}
	mustNil(t, w.SetLocation(here))
	mustNil(t, w.SelectService(haircut))
	mustNil(t, w.Advance(ctx))
	mustNil(t, w.SetSchedule("2024-03-05", "09:15", true))
	mustNil(t, w.Advance(ctx))
	if env.search.calls[0].Location != here {
		t.Fatalf("location = %v, want %v", env.search.calls[0].Location, here)
	}
	if err := w.SetLocation(models.GeoPoint{Lat: 120}); err == nil {
		t.Fatalf("out of range latitude accepted")
	}
}

func TestSearchFailureLeavesStepActionable(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentConfirmed)
	ctx := context.Background()
	env.search.err = errors.New("connection refused")

	mustNil(t, w.SelectService(haircut))
	mustNil(t, w.Advance(ctx))
	mustNil(t, w.SetSchedule("2024-03-05", "09:15", true))
	mustNil(t, w.Advance(ctx))

	snap := w.Snapshot()
	if snap.Step != StepSelectingStylist || snap.StylistCount != 0 || snap.SearchError == "" {
		t.Fatalf("after failed search: %+v", snap)
	}
	if msgs := env.notifier.messages(); len(msgs) != 1 || msgs[0] != NoticeSearchFailed.Message {
		t.Fatalf("notices = %v", msgs)
	}

	var sf *SearchFailure
	if err := w.RetrySearch(ctx); !errors.As(err, &sf) {
		t.Fatalf("RetrySearch err = %v, want SearchFailure", err)
	}

	env.search.err = nil
	mustNil(t, w.RetrySearch(ctx))
	if snap := w.Snapshot(); snap.StylistCount != 2 || snap.SearchError != "" {
		t.Fatalf("after retry: %+v", snap)
	}
}

func TestSelectStylistMustBeInResults(t *testing.T) {
	w, _ := newTestWorkflow(models.AppointmentConfirmed)
	ctx := context.Background()
	mustNil(t, w.SelectService(haircut))
	mustNil(t, w.Advance(ctx))
	mustNil(t, w.SetSchedule("2024-03-05", "09:15", true))
	mustNil(t, w.Advance(ctx))
	if err := w.SelectStylist("nobody"); !errors.Is(err, ErrUnknownStylist) {
		t.Fatalf("SelectStylist err = %v", err)
	}
}

func TestSetScheduleRespectsAdvanceHours(t *testing.T) {
	w, _ := newTestWorkflow(models.AppointmentConfirmed)
	svc := haircut
	svc.BookingAdvanceHours = 48
	mustNil(t, w.SelectService(svc))
	mustNil(t, w.Advance(context.Background()))

	var verr *ValidationError
	if err := w.SetSchedule("2024-03-02", "10:00", true); !errors.As(err, &verr) {
		t.Fatalf("schedule inside advance window accepted: %v", err)
	}
	if err := w.SetSchedule("2024-03-05", "25:00", true); !errors.As(err, &verr) || verr.Field != "time" {
		t.Fatalf("bad time err = %v", err)
	}
	mustNil(t, w.SetSchedule("2024-03-03", "00:00", true))
}

func TestBackNavigation(t *testing.T) {
	w, _ := newTestWorkflow(models.AppointmentConfirmed)
	if err := w.Back(); !errors.Is(err, ErrNoPreviousStep) {
		t.Fatalf("Back from first step = %v", err)
	}
	mustNil(t, w.SelectService(haircut))
	mustNil(t, w.Advance(context.Background()))
	mustNil(t, w.Back())
	snap := w.Snapshot()
	if snap.Step != StepSelectingService || snap.Draft.Service == nil || snap.Draft.Service.ID != "svc-cut" {
		t.Fatalf("after Back: %+v", snap)
	}
	if snap.Price == nil || snap.Price.Total != 65 {
		t.Fatalf("price = %+v", snap.Price)
	}
}

func TestSubmitConfirmedStartsNoTimers(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentConfirmed)
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	req := env.creator.got[0]
	if req.ScheduledAt != "2024-03-05T09:15" || req.StylistID != "near" || req.ServiceID != "svc-cut" || req.ClientID != "client-1" || req.Notes != "first visit" {
		t.Fatalf("request = %+v", req)
	}

	snap := w.Snapshot()
	if snap.Step != StepSubmitted || snap.Appointment.Status != models.AppointmentConfirmed || snap.Confirmation != nil {
		t.Fatalf("after confirmed submit: %+v", snap)
	}
	if snap.Draft.Service != nil || snap.Draft.StylistID != "" {
		t.Fatalf("draft not discarded: %+v", snap.Draft)
	}
	if env.clock.pending() != 0 || env.channel.count("appt-1") != 0 {
		t.Fatalf("timers or subscriptions left behind")
	}
	if err := w.Advance(context.Background()); !errors.Is(err, ErrWorkflowClosed) {
		t.Fatalf("Advance after submit = %v", err)
	}
}

func TestSubmitFailureStaysOnConfirm(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentPending)
	driveToConfirming(t, w)
	env.creator.err = errors.New("503")

	var sf *SubmissionFailure
	if err := w.Advance(context.Background()); !errors.As(err, &sf) {
		t.Fatalf("Advance err = %v, want SubmissionFailure", err)
	}
	snap := w.Snapshot()
	if snap.Step != StepConfirming || snap.Draft.StylistID != "near" {
		t.Fatalf("after failed submit: %+v", snap)
	}
	msgs := env.notifier.messages()
	if msgs[len(msgs)-1] != NoticeBookingFailed.Message {
		t.Fatalf("notices = %v", msgs)
	}
}

func TestPendingConfirmedBeforeSoftDeadline(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentPending)
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	if !w.AwaitingConfirmation() || env.channel.count("appt-1") != 1 {
		t.Fatalf("pending submission did not arm timers and subscribe")
	}

	env.clock.Advance(4 * time.Minute)
	env.channel.publish("appt-1")

	snap := w.Snapshot()
	if snap.Confirmation == nil || snap.Confirmation.State != Confirmed || snap.Appointment.Status != models.AppointmentConfirmed {
		t.Fatalf("after confirmation: %+v", snap)
	}
	if env.channel.count("appt-1") != 0 || env.clock.pending() != 0 {
		t.Fatalf("confirmation left timers or subscription behind")
	}

	env.clock.fireStopped()
	env.clock.Advance(time.Hour)
	w.ConfirmAppointment("appt-1")

	want := []string{NoticeRequestSent.Message, NoticeConfirmed.Message}
	if got := env.notifier.messages(); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("notices = %v, want %v", got, want)
	}
}

func TestPendingExpires(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentPending)
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	env.clock.Advance(5 * time.Minute)
	if snap := w.Snapshot(); snap.Confirmation.State != AwaitingHardConfirm || snap.Closed {
		t.Fatalf("at t=5m: %+v", snap.Confirmation)
	}

	env.clock.Advance(5 * time.Minute)
	snap := w.Snapshot()
	if snap.Confirmation.State != Expired || !snap.Closed {
		t.Fatalf("at t=10m: %+v closed=%v", snap.Confirmation, snap.Closed)
	}
	if env.channel.count("appt-1") != 0 {
		t.Fatalf("expired workflow still subscribed")
	}

	env.channel.publish("appt-1")
	env.clock.Advance(time.Hour)

	want := []string{NoticeRequestSent.Message, NoticeGraceWindow.Message, NoticeExpired.Message}
	got := env.notifier.messages()
	if len(got) != len(want) {
		t.Fatalf("notices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notices = %v, want %v", got, want)
		}
	}
}

func TestCancelReleasesTimersAndSubscription(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentPending)
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	w.Cancel()
	if env.clock.pending() != 0 || env.channel.count("appt-1") != 0 || w.AwaitingConfirmation() {
		t.Fatalf("Cancel left timers or subscriptions behind")
	}

	env.clock.fireStopped()
	env.clock.Advance(time.Hour)
	w.ConfirmAppointment("appt-1")
	if got := env.notifier.messages(); len(got) != 1 {
		t.Fatalf("cancelled workflow kept notifying: %v", got)
	}

	w.Cancel()
	if !w.Snapshot().Closed {
		t.Fatalf("workflow not closed")
	}
}

func TestCancelBeforeSubmit(t *testing.T) {
	w, _ := newTestWorkflow(models.AppointmentPending)
	mustNil(t, w.SelectService(haircut))
	w.Cancel()
	snap := w.Snapshot()
	if snap.Step != StepCancelled || snap.Draft.Service != nil {
		t.Fatalf("after cancel: %+v", snap)
	}
	if err := w.SelectService(haircut); !errors.Is(err, ErrWorkflowClosed) {
		t.Fatalf("SelectService after cancel = %v", err)
	}
}

func TestExpiryClosesStoredRequest(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentPending)
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	env.clock.Advance(5 * time.Minute)
	if expired, _ := env.closer.calls(); len(expired) != 0 {
		t.Fatalf("expired during grace window: %v", expired)
	}

	env.clock.Advance(5 * time.Minute)
	expired, withdrawn := env.closer.calls()
	if len(expired) != 1 || expired[0] != "appt-1" || len(withdrawn) != 0 {
		t.Fatalf("expired = %v withdrawn = %v", expired, withdrawn)
	}
	if snap := w.Snapshot(); snap.Appointment.Status != models.AppointmentExpired {
		t.Fatalf("appointment status = %s", snap.Appointment.Status)
	}

	w.Cancel()
	if _, withdrawn := env.closer.calls(); len(withdrawn) != 0 {
		t.Fatalf("cancel after expiry withdrew: %v", withdrawn)
	}
}

func TestCancelWithdrawsPendingRequest(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentPending)
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	w.Cancel()
	w.Cancel()
	expired, withdrawn := env.closer.calls()
	if len(withdrawn) != 1 || withdrawn[0] != "client-1/appt-1" || len(expired) != 0 {
		t.Fatalf("expired = %v withdrawn = %v", expired, withdrawn)
	}
	if snap := w.Snapshot(); snap.Appointment.Status != models.AppointmentCancelled {
		t.Fatalf("appointment status = %s", snap.Appointment.Status)
	}
}

func TestCancelKeepsConfirmedAppointment(t *testing.T) {
	w, env := newTestWorkflow(models.AppointmentConfirmed)
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	w.Cancel()
	if expired, withdrawn := env.closer.calls(); len(expired)+len(withdrawn) != 0 {
		t.Fatalf("confirmed appointment closed: expired = %v withdrawn = %v", expired, withdrawn)
	}
}

func TestWorkflowBoundsLocator(t *testing.T) {
	located := models.GeoPoint{Lat: 34.05, Lng: -118.24}
	cases := []struct {
		name    string
		locator Locator
		want    models.GeoPoint
	}{
		{"located", locatorFunc(func(context.Context) (models.GeoPoint, error) { return located, nil }), located},
		{"stalled", locatorFunc(func(ctx context.Context) (models.GeoPoint, error) {
			<-ctx.Done()
			return models.GeoPoint{}, ctx.Err()
		}), DefaultLocation},
	}
	for _, tc := range cases {
		search := &fakeSearch{}
		w := NewWorkflow("sess-"+tc.name, "client-1", "", Dependencies{
			Search:        search,
			Appointments:  &fakeCreator{status: models.AppointmentConfirmed},
			Locator:       tc.locator,
			LocateTimeout: 20 * time.Millisecond,
			Clock:         newFakeClock(frozenNow),
		})
		if w.locate.Timeout != 20*time.Millisecond {
			t.Fatalf("%s: locate timeout = %v", tc.name, w.locate.Timeout)
		}
		ctx := context.Background()
		mustNil(t, w.SelectService(haircut))
		mustNil(t, w.Advance(ctx))
		mustNil(t, w.SetSchedule("2024-03-05", "09:15", true))
		mustNil(t, w.Advance(ctx))
		if len(search.calls) != 1 || search.calls[0].Location != tc.want {
			t.Fatalf("%s: search calls = %+v", tc.name, search.calls)
		}
	}
}
