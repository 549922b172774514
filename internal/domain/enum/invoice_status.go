package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InvoiceStatus represents the lifecycle state of an invoice header
type InvoiceStatus int

const (
	InvoiceStatusDraft     InvoiceStatus = 0
	InvoiceStatusFinalized InvoiceStatus = 1
)

func (s InvoiceStatus) String() string {
	switch s {
	case InvoiceStatusDraft:
		return "DRAFT"
	case InvoiceStatusFinalized:
		return "FINALIZED"
	}
	return fmt.Sprintf("InvoiceStatus(%d)", int(s))
}

// Editable reports whether lines and customer may still change
func (s InvoiceStatus) Editable() bool {
	return s == InvoiceStatusDraft
}

// ParseInvoiceStatus accepts the names produced by String
func ParseInvoiceStatus(str string) (InvoiceStatus, error) {
	switch str {
	case "DRAFT", "draft":
		return InvoiceStatusDraft, nil
	case "FINALIZED", "finalized":
		return InvoiceStatusFinalized, nil
	}
	return 0, fmt.Errorf("unknown invoice status %q", str)
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	parsed, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into InvoiceStatus", value)
	}
	return nil
}
