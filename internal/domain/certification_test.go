package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogID(t *testing.T) {
	id := LogID(12, "2026-03-02")
	assert.Equal(t, "12-2026-03-02", id)

	driverID, date, err := ParseLogID(id)
	require.NoError(t, err)
	assert.Equal(t, 12, driverID)
	assert.Equal(t, "2026-03-02", date)

	for _, bad := range []string{"12", "x-2026-03-02", "0-2026-03-02", "12-03/02/2026"} {
		_, _, err := ParseLogID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseCertificationMethod(t *testing.T) {
	m, err := ParseCertificationMethod("")
	require.NoError(t, err)
	assert.Equal(t, CertifyElectronic, m)

	m, err = ParseCertificationMethod(" pin ")
	require.NoError(t, err)
	assert.Equal(t, CertifyPIN, m)

	_, err = ParseCertificationMethod("retina")
	assert.Error(t, err)
}
