// Package flock 维护设备 devEUI 到羊只名称的登记表
package flock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Sheep 登记条目
type Sheep struct {
	DevEUI string `yaml:"devEUI" toml:"devEUI"`
	Name   string `yaml:"name" toml:"name"`
	Tag    string `yaml:"tag" toml:"tag"` // 耳标号，可空
}

type file struct {
	Sheep []Sheep `yaml:"sheep" toml:"sheep"`
}

// Registry 只读登记表，加载后可并发读取
type Registry struct {
	byEUI map[string]Sheep
}

// Empty 返回空登记表
func Empty() *Registry {
	return &Registry{byEUI: map[string]Sheep{}}
}

// Load 按扩展名读取 YAML（.yaml/.yml）或 TOML（.toml）登记文件
func Load(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flock file: %w", err)
	}
	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("unmarshal flock toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("unmarshal flock yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("flock file %q: unsupported extension", path)
	}

	r := Empty()
	for i, s := range f.Sheep {
		eui := normalizeEUI(s.DevEUI)
		if eui == "" || s.Name == "" {
			return nil, fmt.Errorf("flock entry %d: devEUI and name are required", i)
		}
		if _, dup := r.byEUI[eui]; dup {
			return nil, fmt.Errorf("flock entry %d: duplicate devEUI %s", i, eui)
		}
		s.DevEUI = eui
		r.byEUI[eui] = s
	}
	return r, nil
}

// Lookup 按 devEUI 查询（大小写与分隔符不敏感）
func (r *Registry) Lookup(devEUI string) (Sheep, bool) {
	if r == nil {
		return Sheep{}, false
	}
	s, ok := r.byEUI[normalizeEUI(devEUI)]
	return s, ok
}

// Len 登记条目数
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byEUI)
}

// SheepName 依次使用登记名、设备名、解码档案标签
func (r *Registry) SheepName(devEUI, deviceName, profileName string) string {
	if s, ok := r.Lookup(devEUI); ok {
		return s.Name
	}
	if deviceName != "" {
		return deviceName
	}
	return profileName
}

func normalizeEUI(s string) string {
	s = strings.NewReplacer("-", "", ":", "", " ", "").Replace(s)
	return strings.ToUpper(s)
}
