package atu

import "testing"

func TestReadField(t *testing.T) {
	tests := []struct {
		name   string
		frame  []byte
		offset int
		width  int
		signed bool
		want   int32
	}{
		{"1字节无符号", []byte{0xFE}, 0, 1, false, 254},
		{"1字节有符号", []byte{0xFE}, 0, 1, true, -2},
		{"2字节低字节高位不影响符号", []byte{0x00, 0x80}, 0, 2, true, 128},
		{"2字节有符号负数", []byte{0xFF, 0xF6}, 0, 2, true, -10},
		{"2字节无符号不扩展", []byte{0xFF, 0xF6}, 0, 2, false, 65526},
		{"3字节正数", []byte{0x00, 0x83, 0x1A}, 0, 3, true, 33562},
		{"3字节最小值", []byte{0x80, 0x00, 0x00}, 0, 3, true, -8388608},
		{"3字节无符号", []byte{0x80, 0x00, 0x00}, 0, 3, false, 8388608},
		{"带偏移", []byte{0xAA, 0xBB, 0x01, 0x02, 0xCC}, 2, 2, true, 0x0102},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadField(tt.frame, tt.offset, tt.width, tt.signed); got != tt.want {
				t.Fatalf("ReadField = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestField_ValueScalesAfterSignExtension(t *testing.T) {
	f := Field{Offset: 0, Width: 3, Signed: true, Scale: 10000}
	if got := f.Value([]byte{0xFF, 0xFF, 0xF6}); got != -0.001 {
		t.Fatalf("value: %v", got)
	}
	// 未设置 Scale 视为 1
	g := Field{Offset: 0, Width: 2, Signed: true}
	if got := g.Value([]byte{0xFF, 0xFF}); got != -1 {
		t.Fatalf("value: %v", got)
	}
}

func TestPutField_RoundTrip(t *testing.T) {
	frame := make([]byte, 4)
	f := Field{Offset: 1, Width: 3, Signed: true}
	for _, v := range []int32{0, 1, -1, 33562, -8388608, 8388607} {
		PutField(frame, f, v)
		if got := f.Raw(frame); got != v {
			t.Fatalf("put %d read %d", v, got)
		}
		if frame[0] != 0 {
			t.Fatalf("wrote outside field: % x", frame)
		}
	}
}
