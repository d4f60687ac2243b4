package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/alert"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/flock"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/metrics"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/protocol/atu"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/memory"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// frame 构造一帧固件上报
func frame(ax int, lat, lon float64) []byte {
	return atu.EncodeReport(&atu.SensorReport{AcceleroX: ax, Latitude: lat, Longitude: lon, Sats: 7})
}

type memDedup struct{ seen map[string]bool }

func (d *memDedup) FirstSeen(_ context.Context, devEUI string, fCnt int64) (bool, error) {
	k := fmt.Sprintf("%s:%d", devEUI, fCnt)
	if d.seen[k] {
		return false, nil
	}
	d.seen[k] = true
	return true, nil
}

func (d *memDedup) Forget(_ context.Context, devEUI string, fCnt int64) error {
	delete(d.seen, fmt.Sprintf("%s:%d", devEUI, fCnt))
	return nil
}

// flakyRepo 前 failures 次写入失败
type flakyRepo struct {
	*memory.Repository
	failures int
}

func (r *flakyRepo) CreatePin(ctx context.Context, pin *models.Pin) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("db down")
	}
	return r.Repository.CreatePin(ctx, pin)
}

type feed struct{ pins []models.Pin }

func (f *feed) Broadcast(p models.Pin) { f.pins = append(f.pins, p) }

type sender struct{ events []alert.Event }

func (s *sender) Send(_ context.Context, ev alert.Event) error {
	s.events = append(s.events, ev)
	return nil
}

func newService(t *testing.T) (*Service, *memory.Repository, *feed, *sender, *metrics.AppMetrics) {
	t.Helper()
	repo := memory.New()
	f := &feed{}
	snd := &sender{}
	m := metrics.NewAppMetrics(metrics.NewRegistry())
	svc := NewService(repo, Options{
		Deduper: &memDedup{seen: map[string]bool{}},
		Flock:   flock.Empty(),
		Alerts:  alert.NewMonitor(alert.NewDetector(alert.NewMemoryCounter(), 2), snd, m, zap.NewNop()),
		Feed:    f,
		Metrics: m,
		Logger:  zap.NewNop(),
	})
	return svc, repo, f, snd, m
}

func fcnt(n int64) *int64 { return &n }

func TestHandleUplink_RawFrame(t *testing.T) {
	ctx := context.Background()
	svc, repo, f, _, m := newService(t)

	up := Uplink{
		DevEUI:     "0080E11500000001",
		DeviceName: "collar-1",
		FPort:      2,
		FCnt:       fcnt(10),
		Data:       base64.StdEncoding.EncodeToString(frame(-120, 53.2707, -9.0568)),
	}
	pin, err := svc.HandleUplink(ctx, up, SourceHTTP)
	require.NoError(t, err)

	assert.NotEmpty(t, pin.GenID)
	assert.Equal(t, "collar-1", pin.SheepID)
	assert.Equal(t, int32(-120), pin.AcceleroX)
	assert.InDelta(t, 53.2707, pin.Latitude, 1e-9)
	assert.InDelta(t, -9.0568, pin.Longitude, 1e-9)
	assert.Equal(t, int32(7), pin.Sats)
	assert.JSONEq(t, `{"accelero_x":-120,"latitude":53.2707,"longitude":-9.0568,"sats":7,"name":"ATU"}`, pin.ObjectJSON)

	stored, err := repo.ListPins(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Len(t, f.pins, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PinStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UplinkDecode.WithLabelValues(metrics.ResultOK)))
}

func TestHandleUplink_ObjectJSON(t *testing.T) {
	svc, _, _, _, _ := newService(t)

	pin, err := svc.HandleUplink(context.Background(), Uplink{
		ObjectJSON: `{"accelero_x":5,"latitude":1.5,"longitude":-2.25,"sats":4,"name":"ATU"}`,
	}, SourceHTTP)
	require.NoError(t, err)
	assert.Equal(t, "ATU", pin.SheepID)
	assert.Equal(t, 1.5, pin.Latitude)

	_, err = svc.HandleUplink(context.Background(), Uplink{ObjectJSON: `{"latitude":1}`}, SourceHTTP)
	assert.ErrorIs(t, err, ErrBadObject)

	_, err = svc.HandleUplink(context.Background(), Uplink{ObjectJSON: `not json`}, SourceHTTP)
	assert.ErrorIs(t, err, ErrBadObject)

	_, err = svc.HandleUplink(context.Background(), Uplink{}, SourceHTTP)
	assert.ErrorIs(t, err, ErrNoPayload)

	_, err = svc.HandleUplink(context.Background(), Uplink{Data: "%%%"}, SourceHTTP)
	assert.ErrorIs(t, err, ErrBadData)
}

func TestHandleUplink_ShortFrame(t *testing.T) {
	svc, repo, _, _, m := newService(t)

	_, err := svc.HandleUplink(context.Background(), Uplink{
		Data: base64.StdEncoding.EncodeToString(make([]byte, 39)),
	}, SourceMQTT)
	require.Error(t, err)
	assert.True(t, errors.Is(err, atu.ErrFrameTooShort))

	var short *atu.FrameTooShortError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 39, short.Len)

	pins, _ := repo.ListPins(context.Background(), 0, 0)
	assert.Empty(t, pins)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UplinkDecode.WithLabelValues(metrics.ResultTooShort)))
}

func TestHandleUplink_Duplicate(t *testing.T) {
	svc, repo, _, _, m := newService(t)
	up := Uplink{DevEUI: "AA", FCnt: fcnt(1), Data: base64.StdEncoding.EncodeToString(frame(1, 0, 0))}

	_, err := svc.HandleUplink(context.Background(), up, SourceMQTT)
	require.NoError(t, err)
	_, err = svc.HandleUplink(context.Background(), up, SourceHTTP)
	assert.ErrorIs(t, err, ErrDuplicate)

	// 无 fCnt 不去重
	up.FCnt = nil
	_, err = svc.HandleUplink(context.Background(), up, SourceHTTP)
	require.NoError(t, err)

	pins, _ := repo.ListPins(context.Background(), 0, 0)
	assert.Len(t, pins, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UplinkDuplicate))
}

func TestHandleUplink_PostureAlert(t *testing.T) {
	svc, _, _, snd, _ := newService(t)
	for i, ax := range []int{-300, -310, 250} {
		_, err := svc.HandleUplink(context.Background(), Uplink{
			DeviceName: "Dolly",
			FCnt:       fcnt(int64(i)),
			DevEUI:     "BB",
			Data:       base64.StdEncoding.EncodeToString(frame(ax, 0, 0)),
		}, SourceMQTT)
		require.NoError(t, err)
	}
	svc.Close()

	require.Len(t, snd.events, 2)
	assert.Equal(t, alert.KindUpsideDown, snd.events[0].Event)
	assert.Equal(t, "Dolly", snd.events[0].SheepID)
	assert.Equal(t, alert.KindBackUp, snd.events[1].Event)
}

func TestHandleUplink_RetryAfterStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{Repository: memory.New(), failures: 1}
	m := metrics.NewAppMetrics(metrics.NewRegistry())
	svc := NewService(repo, Options{
		Deduper: &memDedup{seen: map[string]bool{}},
		Metrics: m,
		Logger:  zap.NewNop(),
	})
	up := Uplink{DevEUI: "0080E11500000007", FCnt: fcnt(7), Data: base64.StdEncoding.EncodeToString(frame(3, 1, 2))}

	_, err := svc.HandleUplink(ctx, up, SourceHTTP)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)

	// 网络服务器重投应当入库
	pin, err := svc.HandleUplink(ctx, up, SourceHTTP)
	require.NoError(t, err)
	assert.Equal(t, "0080E11500000007", pin.DevEUI)

	// 成功后再重复才算重复帧
	_, err = svc.HandleUplink(ctx, up, SourceHTTP)
	assert.ErrorIs(t, err, ErrDuplicate)

	pins, err := repo.ListPins(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pins, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UplinkDuplicate))
}

func TestParsePayload(t *testing.T) {
	b, err := ParsePayload("0x01 02 ff", "")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0xff}, b)

	b, err = ParsePayload("AQL/", "")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0xff}, b)

	b, err = ParsePayload("AAAA", EncodingBase64)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0}, b)

	_, err = ParsePayload("zz?", "")
	assert.Error(t, err)
	_, err = ParsePayload("00", "bin")
	assert.Error(t, err)
}
