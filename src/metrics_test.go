package redbone

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsObserveGroup(t *testing.T) {
	var m = NewMetrics()

	m.observeGroup(2, 25.0, true, true)
	m.observeGroup(1, 0, false, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.groupsDecoded))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.blockErrors))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.currentBLER))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.syncState))
}
