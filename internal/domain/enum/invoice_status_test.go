package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceStatusJSON(t *testing.T) {
	b, err := json.Marshal(InvoiceStatusFinalized)
	require.NoError(t, err)
	assert.JSONEq(t, `"FINALIZED"`, string(b))

	var s InvoiceStatus
	require.NoError(t, json.Unmarshal([]byte(`"DRAFT"`), &s))
	assert.Equal(t, InvoiceStatusDraft, s)

	require.NoError(t, json.Unmarshal([]byte(`1`), &s))
	assert.Equal(t, InvoiceStatusFinalized, s)

	assert.Error(t, json.Unmarshal([]byte(`"PAID"`), &s))
}

func TestInvoiceStatusScan(t *testing.T) {
	var s InvoiceStatus
	require.NoError(t, s.Scan(int64(1)))
	assert.Equal(t, InvoiceStatusFinalized, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, InvoiceStatusDraft, s)

	assert.Error(t, s.Scan("x"))
}

func TestEditable(t *testing.T) {
	assert.True(t, InvoiceStatusDraft.Editable())
	assert.False(t, InvoiceStatusFinalized.Editable())
}
