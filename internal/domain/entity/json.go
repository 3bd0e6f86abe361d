package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a free-form object stored in a jsonb column. An empty object is
// stored as NULL.
type JSON map[string]interface{}

func (JSON) GormDataType() string {
	return "jsonb"
}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan jsonb: unsupported type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*j = nil
		return nil
	}

	out := JSON{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan jsonb: %w", err)
	}
	*j = out
	return nil
}
