package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/protocol/atu"
)

func TestRun(t *testing.T) {
	frame := atu.EncodeReport(&atu.SensorReport{AcceleroX: 12, Latitude: 53.2707, Longitude: -9.0568, Sats: 6})
	b64 := base64.StdEncoding.EncodeToString(frame)

	t.Run("参数", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(nil, &out, []string{b64}, "base64", 2, false))
		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Len(t, got, 5)
		assert.Equal(t, "ATU", got["name"])
		assert.Equal(t, 12.0, got["accelero_x"])
	})

	t.Run("标准输入多行", func(t *testing.T) {
		var out bytes.Buffer
		in := strings.NewReader(b64 + "\n\n" + b64 + "\n")
		require.NoError(t, run(in, &out, nil, "base64", 0, true))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"battery_mv"`)
	})

	t.Run("帧过短", func(t *testing.T) {
		err := run(nil, &bytes.Buffer{}, []string{"0102"}, "", 0, false)
		assert.ErrorIs(t, err, atu.ErrFrameTooShort)
	})

	t.Run("无输入", func(t *testing.T) {
		assert.Error(t, run(strings.NewReader(""), &bytes.Buffer{}, nil, "", 0, false))
	})
}
