package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 类型定义，用于存储结构化快照内容
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := normalizeColumnBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray 字符串数组类型，用于存储 images 等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := normalizeColumnBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// IntArray 整型数组类型，用于存储 SKU 的层级索引元组
type IntArray []int

// Value 实现 driver.Valuer 接口
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = IntArray{}
		return nil
	}
	bytes, ok := normalizeColumnBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Variation SPU 变体轴定义（有序，SKU 按位置引用）
type Variation struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// VariationList 变体轴列表列类型
type VariationList []Variation

// Value 实现 driver.Valuer 接口
func (v VariationList) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan 实现 sql.Scanner 接口
func (v *VariationList) Scan(value interface{}) error {
	if value == nil {
		*v = VariationList{}
		return nil
	}
	bytes, ok := normalizeColumnBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, v)
}

func normalizeColumnBytes(value interface{}) ([]byte, bool) {
	switch raw := value.(type) {
	case []byte:
		return raw, true
	case string:
		return []byte(raw), true
	default:
		return nil, false
	}
}
