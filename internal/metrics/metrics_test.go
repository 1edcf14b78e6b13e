package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSignIn(t *testing.T) {
	before := testutil.ToFloat64(SignInsTotal.WithLabelValues("google", "failure"))

	RecordSignIn("google", false)

	after := testutil.ToFloat64(SignInsTotal.WithLabelValues("google", "failure"))
	assert.Equal(t, before+1, after)
}

func TestRecordBackendCall(t *testing.T) {
	before := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("login", "success"))

	RecordBackendCall("login", 20*time.Millisecond, true)

	assert.Equal(t, before+1, testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("login", "success")))
}

func TestRecordBackendSwitch_DefaultLabel(t *testing.T) {
	before := testutil.ToFloat64(BackendSwitchesTotal.WithLabelValues("default"))

	RecordBackendSwitch("")

	assert.Equal(t, before+1, testutil.ToFloat64(BackendSwitchesTotal.WithLabelValues("default")))
}

func TestStreams(t *testing.T) {
	g := ActiveStreams.WithLabelValues("flash")
	before := testutil.ToFloat64(g)

	StreamOpened("flash")
	assert.Equal(t, before+1, testutil.ToFloat64(g))

	StreamClosed("flash")
	assert.Equal(t, before, testutil.ToFloat64(g))
}
