package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// UUIDList is a set of entity IDs stored as a JSONB array.
// An empty list means "no restriction" wherever it scopes eligibility.
type UUIDList []uuid.UUID

// Contains reports whether the list includes the given ID
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the list includes any of the given IDs
func (l UUIDList) ContainsAny(ids []uuid.UUID) bool {
	for _, id := range ids {
		if l.Contains(id) {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *UUIDList) Scan(value interface{}) error {
	if value == nil {
		*l = UUIDList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan UUIDList: unsupported type")
	}

	return json.Unmarshal(bytes, l)
}
