package notification

import (
	"context"
	"errors"
	"testing"

	"beautycita/models"
	"beautycita/services/realtime"

	"firebase.google.com/go/v4/messaging"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

type fakePusher struct {
	sent []*messaging.Message
}

func (p *fakePusher) Send(_ context.Context, m *messaging.Message) (string, error) {
	p.sent = append(p.sent, m)
	return "msg-1", nil
}

type stylistLookup map[string]*models.Stylist

func (s stylistLookup) GetByID(_ context.Context, id string) (*models.Stylist, error) {
	if st, ok := s[id]; ok {
		return st, nil
	}
	return nil, errors.New("not found")
}

func newTestService(t *testing.T) (*DefaultNotificationService, *realtime.LocalBus, *fakePusher) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	bus := realtime.NewLocalBus()
	push := &fakePusher{}
	svc, err := NewDefaultNotificationService(bus, NewDeviceTokenStore(client),
		stylistLookup{"sty-1": {ID: "sty-1", FCMToken: "profile-token"}}, push, nil)
	if err != nil {
		t.Fatalf("NewDefaultNotificationService: %v", err)
	}
	return svc, bus, push
}

func TestNotifyPublishesToUserTopic(t *testing.T) {
	svc, bus, _ := newTestService(t)
	var got models.Notice
	bus.Subscribe(realtime.UserTopic("client-1"), func(ev realtime.Event) {
		if ev.Name == models.EventNotification {
			ev.Decode(&got)
		}
	})
	svc.Notify(context.Background(), "client-1", models.Notice{Level: "info", Message: "Stylist has 5 more minutes to respond"})
	if got.Message != "Stylist has 5 more minutes to respond" || got.Level != "info" {
		t.Fatalf("notice = %+v", got)
	}
}

func TestPushUsesRegisteredTokenThenProfile(t *testing.T) {
	svc, _, push := newTestService(t)
	ctx := context.Background()

	if err := svc.SendClientPushNotification(ctx, "client-1", "t", "b", nil); !errors.Is(err, ErrNoPushToken) {
		t.Fatalf("client without token err = %v", err)
	}

	if err := svc.RegisterDevice(ctx, models.ReminderTargetClient, "client-1", "device-abc"); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	if err := svc.SendClientPushNotification(ctx, "client-1", "Reminder", "Soon", map[string]string{"type": "reminder"}); err != nil {
		t.Fatalf("SendClientPushNotification: %v", err)
	}
	if err := svc.SendStylistPushNotification(ctx, "sty-1", "New request", "Haircut", nil); err != nil {
		t.Fatalf("SendStylistPushNotification: %v", err)
	}

	if len(push.sent) != 2 {
		t.Fatalf("sent %d messages", len(push.sent))
	}
	if push.sent[0].Token != "device-abc" || push.sent[0].Data["role"] != "client" || push.sent[0].Data["type"] != "reminder" {
		t.Fatalf("client message = %+v", push.sent[0])
	}
	if push.sent[1].Token != "profile-token" || push.sent[1].Data["role"] != "stylist" {
		t.Fatalf("stylist message = %+v", push.sent[1])
	}
}
