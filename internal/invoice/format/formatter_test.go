package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceNumber(t *testing.T) {
	issuedAt := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)

	got, err := InvoiceNumber(DefaultNumberTemplate, issuedAt, 42)
	require.NoError(t, err)
	assert.Equal(t, "INV-20250307-000042", got)

	got, err = InvoiceNumber("{YY}{MM}/{SEQ}", issuedAt, 7)
	require.NoError(t, err)
	assert.Equal(t, "2503/7", got)
}

func TestInvoiceNumberRejectsBadInput(t *testing.T) {
	issuedAt := time.Now()

	_, err := InvoiceNumber("", issuedAt, 1)
	assert.Error(t, err)

	_, err = InvoiceNumber("INV-{SEQ}", issuedAt, 0)
	assert.Error(t, err)

	_, err = InvoiceNumber("INV-{BOGUS}", issuedAt, 1)
	assert.Error(t, err)
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "Rp 150.000", Currency("IDR", 150000))
	assert.Equal(t, "Rp 1.234.567", Currency("", 1234567))
	assert.Equal(t, "Rp 0", Currency("IDR", 0))
	assert.Equal(t, "-Rp 5.000", Currency("IDR", -5000))
	assert.Equal(t, "USD 1.000", Currency("usd", 1000.4))
}
