package billing_test

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kitbilling/internal/domain/billing"
)

func TestDateSequenceNumber_Formato(t *testing.T) {
	d := day(2024, time.January, 31)
	assert.Equal(t, "20240131-001", billing.DateSequenceNumber(d, 1))
	assert.Equal(t, "20240131-042", billing.DateSequenceNumber(d, 42))
	assert.Equal(t, "20240131-1000", billing.DateSequenceNumber(d, 1000))
	assert.Equal(t, "20240131", billing.DayKey(d))
}

var opaquePattern = regexp.MustCompile(`^INV-[0-9A-Z]+-[0-9A-Z]{3}$`)

func TestOpaqueNumber_Formato(t *testing.T) {
	now := time.UnixMilli(1706659200000)
	n := billing.OpaqueNumber(now)
	require.Regexp(t, opaquePattern, n)

	stamp := strings.Split(n, "-")[1]
	ms, err := strconv.ParseInt(strings.ToLower(stamp), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)
}

func TestNumberingScheme_IsValid(t *testing.T) {
	assert.True(t, billing.NumberingDateSequence.IsValid())
	assert.True(t, billing.NumberingOpaque.IsValid())
	assert.False(t, billing.NumberingScheme("uuid").IsValid())
}
