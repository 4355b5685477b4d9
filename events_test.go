// events_test.go

package vtol

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestQuadchuteReasonsHaveDistinctEventIDs(t *testing.T) {
	reasons := []QuadchuteReason{
		QuadchuteTransitionTimeout,
		QuadchuteExternalCommand,
		QuadchuteMinimumAltBreached,
		QuadchuteUncommandedDescent,
		QuadchuteTransitionAltitudeLoss,
		QuadchuteMaximumPitchExceeded,
		QuadchuteMaximumRollExceeded,
	}
	seen := make(map[string]bool)
	for _, r := range reasons {
		id := r.eventID()
		if id == "" {
			t.Errorf("reason %v has no event id", r)
		}
		if seen[id] {
			t.Errorf("duplicate event id %q", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, "vtol_att_ctrl_quadchute_") {
			t.Errorf("event id %q does not match the expected naming convention", id)
		}
		if r.message() == "" {
			t.Errorf("reason %v has no critical message", r)
		}
	}
}

func TestQuadchuteNoneHasNoEventID(t *testing.T) {
	if id := QuadchuteNone.eventID(); id != "" {
		t.Errorf("QuadchuteNone.eventID() = %q, want empty", id)
	}
}

func TestStdLoggerCriticalfPrefixesEventID(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(log.New(&buf, "", 0))

	l.Criticalf(QuadchuteMinimumAltBreached.eventID(), "%s", QuadchuteMinimumAltBreached.message())

	got := buf.String()
	if !strings.Contains(got, "CRITICAL ["+QuadchuteMinimumAltBreached.eventID()+"]") {
		t.Errorf("Criticalf output = %q, want it to contain the event id prefix", got)
	}
	if !strings.Contains(got, QuadchuteMinimumAltBreached.message()) {
		t.Errorf("Criticalf output = %q, want it to contain the message", got)
	}
}
