package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSON 以 JSON 文本落库的动态对象
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	raw, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = JSON{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models.JSON: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*j = JSON{}
		return nil
	}
	return json.Unmarshal(raw, j)
}

// Setting 键值设置，value 为整段 JSON 文档
type Setting struct {
	Key       string    `gorm:"primarykey;size:64" json:"key"`
	ValueJSON JSON      `gorm:"type:json" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
