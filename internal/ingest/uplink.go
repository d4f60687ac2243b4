package ingest

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/protocol/atu"
)

// Uplink 网络服务器（ChirpStack 风格）上行事件
type Uplink struct {
	DevEUI     string            `json:"devEUI"`
	DeviceName string            `json:"deviceName"`
	FPort      int               `json:"fPort"`
	FCnt       *int64            `json:"fCnt,omitempty"`
	Data       string            `json:"data,omitempty"`       // base64 原始帧
	ObjectJSON string            `json:"objectJSON,omitempty"` // 网络服务器侧已解码的 JSON
	Variables  map[string]string `json:"variables,omitempty"`
}

var (
	ErrNoPayload = errors.New("uplink has neither data nor objectJSON")
	ErrBadData   = errors.New("invalid base64 data")
	ErrBadObject = errors.New("invalid objectJSON")
	ErrDuplicate = errors.New("duplicate uplink")
)

// objectFields objectJSON 中必须出现的键
type objectFields struct {
	AcceleroX *int     `json:"accelero_x"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Sats      *uint    `json:"sats"`
	Name      string   `json:"name"`
}

// Telemetry 优先解码原始帧；没有原始帧时使用 objectJSON
func (u *Uplink) Telemetry() (*atu.Telemetry, error) {
	if u.Data != "" {
		frame, err := base64.StdEncoding.DecodeString(u.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadData, err)
		}
		return atu.DecodeUplink(u.FPort, frame, u.Variables)
	}
	if u.ObjectJSON == "" {
		return nil, ErrNoPayload
	}
	var o objectFields
	if err := json.Unmarshal([]byte(u.ObjectJSON), &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadObject, err)
	}
	if o.AcceleroX == nil || o.Latitude == nil || o.Longitude == nil || o.Sats == nil {
		return nil, fmt.Errorf("%w: missing telemetry keys", ErrBadObject)
	}
	name := o.Name
	if name == "" {
		name = atu.ProfileName
	}
	return &atu.Telemetry{
		AcceleroX: *o.AcceleroX,
		Latitude:  *o.Latitude,
		Longitude: *o.Longitude,
		Sats:      *o.Sats,
		Name:      name,
	}, nil
}

// 帧文本编码
const (
	EncodingHex    = "hex"
	EncodingBase64 = "base64"
)

// ParsePayload 解析 hex（可带 0x 前缀与空白）或 base64 编码的帧。
// encoding 为空时自动识别，偶数长度的纯十六进制串按 hex 处理。
func ParsePayload(s, encoding string) ([]byte, error) {
	s = strings.TrimSpace(s)
	clean := strings.Join(strings.Fields(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")), "")
	switch encoding {
	case EncodingHex:
		return hex.DecodeString(clean)
	case EncodingBase64:
		return base64.StdEncoding.DecodeString(s)
	case "":
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", encoding)
	}
	if len(clean)%2 == 0 && isHex(clean) {
		return hex.DecodeString(clean)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("payload is neither hex nor base64: %w", err)
	}
	return b, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
