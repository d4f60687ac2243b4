package atu

import "math"

// LPP 数据类型（与固件一致）
const (
	lppDigitalOutput = 0x01
	lppAnalogInput   = 0x02
	lppTemperature   = 0x67
	lppHumidity      = 0x68
	lppAccelerometer = 0x71
	lppBarometer     = 0x73
	lppGPSLocation   = 0x88
)

// PutField 将整数按字段宽度大端写入 frame（截断到 Width 字节，负数即补码低位）
func PutField(frame []byte, f Field, v int32) {
	u := uint32(v)
	for i := f.Width - 1; i >= 0; i-- {
		frame[f.Offset+i] = byte(u)
		u >>= 8
	}
}

// putScaled 将物理量乘以比例并四舍五入后写入
func putScaled(frame []byte, f Field, v float64) {
	scale := f.Scale
	if scale == 0 {
		scale = 1
	}
	PutField(frame, f, int32(math.Round(v*scale)))
}

// EncodeReport 按固件布局组帧（含通道号与 LPP 类型字节），用于模拟节点与测试
func EncodeReport(r *SensorReport) []byte {
	frame := make([]byte, MinFrameLength)
	header := []struct {
		at  int
		typ byte
	}{
		{0, lppBarometer},
		{4, lppTemperature},
		{8, lppHumidity},
		{11, lppAccelerometer},
		{19, lppGPSLocation},
		{30, lppAnalogInput},
		{34, lppDigitalOutput},
	}
	for ch, h := range header {
		frame[h.at] = byte(ch)
		frame[h.at+1] = h.typ
	}
	frame[37] = byte(len(header))

	putScaled(frame, FieldPressure, r.PressureHPa)
	putScaled(frame, FieldTemperature, r.TemperatureC)
	putScaled(frame, FieldHumidity, r.HumidityPct)
	PutField(frame, FieldAcceleroX, int32(r.AcceleroX))
	PutField(frame, FieldAcceleroY, int32(r.AcceleroY))
	PutField(frame, FieldAcceleroZ, int32(r.AcceleroZ))
	putScaled(frame, FieldLatitude, r.Latitude)
	putScaled(frame, FieldLongitude, r.Longitude)
	putScaled(frame, FieldAltitude, r.AltitudeM)
	PutField(frame, FieldBattery, int32(r.BatteryMV))
	if r.LEDOn {
		PutField(frame, FieldLED, 1)
	}
	PutField(frame, FieldSats, int32(r.Sats))
	return frame
}
