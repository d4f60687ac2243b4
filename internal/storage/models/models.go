package models

import (
	"time"
)

// 注意：
// - 保持与 db/migrations/0001_pins_up.sql 完全对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// Pin 映射 pins 表：一次上行解码后的定位记录
type Pin struct {
	// 主键
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// 对外标识（UUID），删除接口使用
	GenID string `gorm:"column:gen_id;type:text;not null;uniqueIndex" json:"genId"`
	// 羊只名称（登记表映射，缺省为设备名或档案标签）
	SheepID    string `gorm:"column:sheep_id;type:text;not null;index:idx_pins_sheep_time,priority:1" json:"sheepId"`
	DevEUI     string `gorm:"column:dev_eui;type:text" json:"devEUI"`
	DeviceName string `gorm:"column:device_name;type:text" json:"deviceName"`
	// 帧计数器，可空
	FCnt      *int64  `gorm:"column:f_cnt" json:"fCnt,omitempty"`
	Latitude  float64 `gorm:"column:latitude;not null" json:"latitude"`
	Longitude float64 `gorm:"column:longitude;not null" json:"longitude"`
	AcceleroX int32   `gorm:"column:accelero_x;not null" json:"accelero_x"`
	Sats      int32   `gorm:"column:sats;not null" json:"sats"`
	// 解码结果原文（JSON）
	ObjectJSON string    `gorm:"column:object_json;type:text" json:"objectJSON"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index:idx_pins_sheep_time,priority:2,sort:desc" json:"createdAt"`
}

func (Pin) TableName() string { return "pins" }

// DateLayout 前端地图使用的时间格式 dd/MM/yyyy, HH:mm:ss
const DateLayout = "02/01/2006, 15:04:05"

// Date 按 DateLayout 格式化 created_at（本地时区）
func (p Pin) Date() string {
	return p.CreatedAt.Local().Format(DateLayout)
}
