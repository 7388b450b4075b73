package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"beautycita/models"
	"beautycita/services/geo"
	"beautycita/services/realtime"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// BlurRadiusMeters is how far a relayed client position may be moved from the real one.
	BlurRadiusMeters = 100
	// ProximityMeters is the distance at which the stylist is told the client is close.
	ProximityMeters = 3000

	keyTTL = 12 * time.Hour

	memberClient  = "client"
	memberStylist = "stylist"
)

// NoticeApproaching is shown to the client when the proximity alert fires.
var NoticeApproaching = models.Notice{Level: "info", Type: "location", Message: "You are approaching your appointment location"}

// Appointments resolves the appointment a location update belongs to.
type Appointments interface {
	GetForParticipant(ctx context.Context, userID, appointmentID string) (*models.Appointment, error)
}

// Stylists resolves a stylist's stored location when they have not shared a live one.
type Stylists interface {
	GetByID(ctx context.Context, id string) (*models.Stylist, error)
}

// Notifier shows a notice to a user.
type Notifier interface {
	Notify(ctx context.Context, userID string, notice models.Notice)
}

// Tracker stores live positions of appointment participants in Redis and relays the
// client's blurred position to the stylist.
type Tracker struct {
	rdb          *redis.Client
	bus          realtime.Bus
	appointments Appointments
	stylists     Stylists
	notifier     Notifier
	logger       *zap.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewTracker(rdb *redis.Client, bus realtime.Bus, appointments Appointments, stylists Stylists, notifier Notifier, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		rdb:          rdb,
		bus:          bus,
		appointments: appointments,
		stylists:     stylists,
		notifier:     notifier,
		logger:       logger,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func positionsKey(appointmentID string) string { return "tracking:" + appointmentID + ":pos" }
func alertKey(appointmentID string) string     { return "tracking:" + appointmentID + ":alerted" }

// Update records userID's position for the appointment. Client updates are relayed
// blurred to the stylist and may raise the one-time proximity alert.
func (t *Tracker) Update(ctx context.Context, userID string, u models.LocationUpdate) error {
	p := models.GeoPoint{Lat: u.Lat, Lng: u.Lng}
	if p.Lat < -85 || p.Lat > 85 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("invalid coordinates")
	}
	appt, err := t.appointments.GetForParticipant(ctx, userID, u.AppointmentID)
	if err != nil {
		return err
	}
	if appt.Status != models.AppointmentConfirmed {
		return fmt.Errorf("appointment %s is not confirmed", appt.ID)
	}

	member := memberStylist
	if userID == appt.ClientID {
		member = memberClient
	}
	if err := t.store(ctx, appt.ID, member, p); err != nil {
		return err
	}
	if member != memberClient {
		return nil
	}

	if err := t.relay(ctx, appt, p); err != nil {
		t.logger.Warn("Failed to relay client location", zap.String("appointmentID", appt.ID), zap.Error(err))
	}
	return t.checkProximity(ctx, appt, p)
}

// Position returns the last stored position of the client or stylist of an appointment.
func (t *Tracker) Position(ctx context.Context, appointmentID, member string) (models.GeoPoint, bool, error) {
	res, err := t.rdb.GeoPos(ctx, positionsKey(appointmentID), member).Result()
	if err != nil {
		return models.GeoPoint{}, false, err
	}
	if len(res) == 0 || res[0] == nil {
		return models.GeoPoint{}, false, nil
	}
	return models.GeoPoint{Lat: res[0].Latitude, Lng: res[0].Longitude}, true, nil
}

// Stop forgets every tracked position of the appointment.
func (t *Tracker) Stop(ctx context.Context, appointmentID string) error {
	return t.rdb.Del(ctx, positionsKey(appointmentID), alertKey(appointmentID)).Err()
}

func (t *Tracker) store(ctx context.Context, appointmentID, member string, p models.GeoPoint) error {
	key := positionsKey(appointmentID)
	pipe := t.rdb.TxPipeline()
	pipe.GeoAdd(ctx, key, &redis.GeoLocation{Name: member, Longitude: p.Lng, Latitude: p.Lat})
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store location: %w", err)
	}
	return nil
}

func (t *Tracker) relay(ctx context.Context, appt *models.Appointment, p models.GeoPoint) error {
	t.rndMu.Lock()
	blurred := geo.BlurLocation(p, BlurRadiusMeters, t.rnd)
	t.rndMu.Unlock()

	ev, err := realtime.NewEvent(models.EventClientLocation, models.LocationUpdate{
		AppointmentID: appt.ID,
		Lat:           blurred.Lat,
		Lng:           blurred.Lng,
	})
	if err != nil {
		return err
	}
	return t.bus.Publish(ctx, realtime.UserTopic(appt.StylistID), ev)
}

func (t *Tracker) checkProximity(ctx context.Context, appt *models.Appointment, client models.GeoPoint) error {
	target, ok := t.stylistPosition(ctx, appt)
	if !ok {
		return nil
	}
	distance := geo.DistanceMeters(client, target)
	if distance > ProximityMeters {
		return nil
	}

	first, err := t.rdb.SetNX(ctx, alertKey(appt.ID), time.Now().Unix(), keyTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to record proximity alert: %w", err)
	}
	if !first {
		return nil
	}

	ev, err := realtime.NewEvent(models.EventClientProximityAlert, models.ProximityAlert{
		AppointmentID:  appt.ID,
		DistanceMeters: distance,
	})
	if err != nil {
		return err
	}
	if err := t.bus.Publish(ctx, realtime.UserTopic(appt.StylistID), ev); err != nil {
		return err
	}
	if t.notifier != nil {
		t.notifier.Notify(ctx, appt.ClientID, NoticeApproaching)
	}
	t.logger.Info("Client proximity alert sent", zap.String("appointmentID", appt.ID), zap.Float64("distance", distance))
	return nil
}

// stylistPosition prefers a live stylist position and falls back to the stylist's profile location.
func (t *Tracker) stylistPosition(ctx context.Context, appt *models.Appointment) (models.GeoPoint, bool) {
	if p, ok, err := t.Position(ctx, appt.ID, memberStylist); err == nil && ok {
		return p, true
	}
	if t.stylists == nil {
		return models.GeoPoint{}, false
	}
	st, err := t.stylists.GetByID(ctx, appt.StylistID)
	if err != nil {
		t.logger.Debug("No stylist location for proximity check", zap.String("stylistID", appt.StylistID), zap.Error(err))
		return models.GeoPoint{}, false
	}
	return st.LocationGeo.Point()
}

// Register installs the location_update socket event on hub.
func (t *Tracker) Register(hub *realtime.Hub) {
	hub.Handle(models.EventLocationUpdate, func(ctx context.Context, c *realtime.Client, data json.RawMessage) error {
		var u models.LocationUpdate
		if err := json.Unmarshal(data, &u); err != nil {
			return fmt.Errorf("invalid location_update payload: %w", err)
		}
		return t.Update(ctx, c.UserID, u)
	})
}
