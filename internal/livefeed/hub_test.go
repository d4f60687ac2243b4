package livefeed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/metrics"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

func TestHub_BroadcastToClient(t *testing.T) {
	m := metrics.NewAppMetrics(metrics.NewRegistry())
	hub := NewHub(m, zap.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveClients))

	created := time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)
	hub.Broadcast(models.Pin{GenID: "g-1", SheepID: "Dolly", Latitude: 53.27, CreatedAt: created})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "pin", msg.Type)
	assert.Equal(t, "Dolly", msg.Pin.SheepID)
	assert.Equal(t, "05/03/2024, 14:07:09", msg.Date)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(nil, nil)
	assert.NotPanics(t, func() { hub.Broadcast(models.Pin{SheepID: "x"}) })
	assert.Equal(t, 0, hub.Count())
}
