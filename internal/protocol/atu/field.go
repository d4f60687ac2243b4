package atu

// Field 帧内单个定点字段的描述（偏移、宽度、符号、比例）
type Field struct {
	Name   string
	Offset int
	Width  int  // 字节数：1..3
	Signed bool // 二进制补码
	Scale  float64
}

// End 返回字段最后一个字节之后的位置
func (f Field) End() int { return f.Offset + f.Width }

// Raw 读取字段原始整数值（已符号扩展，未缩放）
func (f Field) Raw(frame []byte) int32 {
	return ReadField(frame, f.Offset, f.Width, f.Signed)
}

// Value 读取字段并按比例换算为浮点值；先符号扩展再除以 Scale
func (f Field) Value(frame []byte) float64 {
	v := float64(f.Raw(frame))
	if f.Scale == 0 || f.Scale == 1 {
		return v
	}
	return v / f.Scale
}

// ReadField 从 frame[offset:] 读取 width 字节的大端整数。
// signed 为 true 且最高字节的 0x80 位被置位时，字段以上的所有字节强制为 0xFF，
// 得到 32 位二进制补码表示；signed 为 false 时从不做符号扩展。
// 调用方保证 offset >= 0 且 offset+width <= len(frame)，width 取 1..3。
func ReadField(frame []byte, offset, width int, signed bool) int32 {
	var acc uint32
	if signed && frame[offset]&0x80 != 0 {
		acc = 0xFFFFFFFF
	}
	for i := 0; i < width; i++ {
		acc = acc<<8 | uint32(frame[offset+i])
	}
	return int32(acc)
}

// minLength 返回一组字段要求的最小帧长度
func minLength(fields ...Field) int {
	n := 0
	for _, f := range fields {
		if e := f.End(); e > n {
			n = e
		}
	}
	return n
}
