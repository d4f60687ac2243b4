package atu

// 完整传感器报告档案。固件按以下顺序组帧（通道号、LPP 类型、数据）：
//
//	0 ch | 1 0x73 | 2-3 pressure(u16, x10)
//	4 ch | 5 0x67 | 6-7 temperature(i16, x10)
//	8 ch | 9 0x68 | 10 humidity(u8, x2)
//	11 ch | 12 0x71 | 13-18 accel x/y/z(i16, mg)
//	19 ch | 20 0x88 | 21-23 lat(i24, x1e4) | 24-26 lon(i24, x1e4) | 27-29 alt(i24, x100)
//	30 ch | 31 0x02 | 32-33 battery(u16, mV)
//	34 ch | 35 0x01 | 36 led(u8)
//	37 ch | 38-39 sats(u16)
var (
	FieldPressure    = Field{Name: "pressure", Offset: 2, Width: 2, Scale: 10}
	FieldTemperature = Field{Name: "temperature", Offset: 6, Width: 2, Signed: true, Scale: 10}
	FieldHumidity    = Field{Name: "humidity", Offset: 10, Width: 1, Scale: 2}
	FieldAcceleroY   = Field{Name: "accelero_y", Offset: 15, Width: 2, Signed: true, Scale: 1}
	FieldAcceleroZ   = Field{Name: "accelero_z", Offset: 17, Width: 2, Signed: true, Scale: 1}
	FieldAltitude    = Field{Name: "altitude", Offset: 27, Width: 3, Signed: true, Scale: 100}
	FieldBattery     = Field{Name: "battery", Offset: 32, Width: 2, Scale: 1}
	FieldLED         = Field{Name: "led", Offset: 36, Width: 1, Scale: 1}
)

// ReportProfile 完整报告读取的全部字段
var ReportProfile = []Field{
	FieldPressure, FieldTemperature, FieldHumidity,
	FieldAcceleroX, FieldAcceleroY, FieldAcceleroZ,
	FieldLatitude, FieldLongitude, FieldAltitude,
	FieldBattery, FieldLED, FieldSats,
}

// SensorReport 同一帧的全通道解码结果
type SensorReport struct {
	PressureHPa  float64 `json:"pressure_hpa"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	AcceleroX    int     `json:"accelero_x"`
	AcceleroY    int     `json:"accelero_y"`
	AcceleroZ    int     `json:"accelero_z"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AltitudeM    float64 `json:"altitude_m"`
	BatteryMV    uint    `json:"battery_mv"`
	LEDOn        bool    `json:"led_on"`
	Sats         uint    `json:"sats"`
}

// DecodeReport 按完整档案解码；长度要求与 Decode 相同
func DecodeReport(frame []byte) (*SensorReport, error) {
	if n := minLength(ReportProfile...); len(frame) < n {
		return nil, &FrameTooShortError{Len: len(frame), Min: n}
	}
	return &SensorReport{
		PressureHPa:  FieldPressure.Value(frame),
		TemperatureC: FieldTemperature.Value(frame),
		HumidityPct:  FieldHumidity.Value(frame),
		AcceleroX:    int(FieldAcceleroX.Raw(frame)),
		AcceleroY:    int(FieldAcceleroY.Raw(frame)),
		AcceleroZ:    int(FieldAcceleroZ.Raw(frame)),
		Latitude:     FieldLatitude.Value(frame),
		Longitude:    FieldLongitude.Value(frame),
		AltitudeM:    FieldAltitude.Value(frame),
		BatteryMV:    uint(FieldBattery.Raw(frame)),
		LEDOn:        FieldLED.Raw(frame) != 0,
		Sats:         uint(FieldSats.Raw(frame)),
	}, nil
}

// Telemetry 投影为 ATU 档案记录
func (r *SensorReport) Telemetry() *Telemetry {
	return &Telemetry{
		AcceleroX: r.AcceleroX,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Sats:      r.Sats,
		Name:      ProfileName,
	}
}
