// Package atu 解码 ATU 羊只追踪节点（STEVAL-ASTRA1B 固件）的 LoRaWAN 上行帧。
//
// 帧为固定布局的字节序列（固件 LoraSendPacket 生成，至少 40 字节），
// 所有多字节字段均为大端，有符号字段为二进制补码，坐标为 1e-4 度定点数。
// 解码器是纯函数：不记录日志、不修改也不持有输入帧，可并发调用。
package atu

import (
	"errors"
	"fmt"
)

// ProfileName 解码档案标签，固定输出，不来自帧内容
const ProfileName = "ATU"

// ATU 档案字段表
var (
	FieldAcceleroX = Field{Name: "accelero_x", Offset: 13, Width: 2, Signed: true, Scale: 1}
	FieldLatitude  = Field{Name: "latitude", Offset: 21, Width: 3, Signed: true, Scale: 10000}
	FieldLongitude = Field{Name: "longitude", Offset: 24, Width: 3, Signed: true, Scale: 10000}
	FieldSats      = Field{Name: "sats", Offset: 38, Width: 2, Signed: false, Scale: 1}
)

// Profile ATU 档案读取的全部字段
var Profile = []Field{FieldAcceleroX, FieldLatitude, FieldLongitude, FieldSats}

// MinFrameLength 最小帧长度：任一字段读取的最高字节下标 + 1
const MinFrameLength = 40

// ErrFrameTooShort 帧长度不足以覆盖全部字段
var ErrFrameTooShort = errors.New("frame too short")

// FrameTooShortError 携带实际长度与要求长度
type FrameTooShortError struct {
	Len int
	Min int
}

func (e *FrameTooShortError) Error() string {
	return fmt.Sprintf("frame too short: got %d bytes, need at least %d", e.Len, e.Min)
}

// Is 使 errors.Is(err, ErrFrameTooShort) 成立
func (e *FrameTooShortError) Is(target error) bool { return target == ErrFrameTooShort }

// Telemetry 单次上行解码结果（值对象）。
// JSON 仅包含 accelero_x/latitude/longitude/sats/name 五个键。
type Telemetry struct {
	AcceleroX int     `json:"accelero_x"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Sats      uint    `json:"sats"`
	Name      string  `json:"name"`
}

// Decode 解码一帧。长度不足返回 *FrameTooShortError，不产生部分结果。
func Decode(frame []byte) (*Telemetry, error) {
	if len(frame) < MinFrameLength {
		return nil, &FrameTooShortError{Len: len(frame), Min: MinFrameLength}
	}
	return &Telemetry{
		AcceleroX: int(FieldAcceleroX.Raw(frame)),
		Latitude:  FieldLatitude.Value(frame),
		Longitude: FieldLongitude.Value(frame),
		Sats:      uint(FieldSats.Raw(frame)),
		Name:      ProfileName,
	}, nil
}

// DecodeUplink 网络服务器调用约定：fPort 与 vars 仅为接口兼容而接收，不参与解码
func DecodeUplink(fPort int, payload []byte, vars map[string]string) (*Telemetry, error) {
	return Decode(payload)
}
