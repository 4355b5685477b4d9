// events.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package vtol

import "log"

// QuadchuteReason identifies why a quadchute fired. Each reason maps to
// exactly one event id and one critical log line, fired at most once per
// latch (the flag guards re-firing while already latched).
type QuadchuteReason int

// Quadchute reasons.
const (
	QuadchuteNone QuadchuteReason = iota
	QuadchuteTransitionTimeout
	QuadchuteExternalCommand
	QuadchuteMinimumAltBreached
	QuadchuteUncommandedDescent
	QuadchuteTransitionAltitudeLoss
	QuadchuteMaximumPitchExceeded
	QuadchuteMaximumRollExceeded
)

// eventID is the stable identifier logged/telemetered for a quadchute
// firing, matching the naming convention of the flight-control stack this
// module plugs into.
func (r QuadchuteReason) eventID() string {
	switch r {
	case QuadchuteTransitionTimeout:
		return "vtol_att_ctrl_quadchute_tout"
	case QuadchuteExternalCommand:
		return "vtol_att_ctrl_quadchute_ext_cmd"
	case QuadchuteMinimumAltBreached:
		return "vtol_att_ctrl_quadchute_min_alt"
	case QuadchuteUncommandedDescent:
		return "vtol_att_ctrl_quadchute_alt_loss"
	case QuadchuteTransitionAltitudeLoss:
		return "vtol_att_ctrl_quadchute_trans_alt_err"
	case QuadchuteMaximumPitchExceeded:
		return "vtol_att_ctrl_quadchute_max_pitch"
	case QuadchuteMaximumRollExceeded:
		return "vtol_att_ctrl_quadchute_max_roll"
	default:
		return ""
	}
}

func (r QuadchuteReason) message() string {
	switch r {
	case QuadchuteTransitionTimeout:
		return "Quad-chute triggered due to transition timeout"
	case QuadchuteExternalCommand:
		return "Quad-chute triggered due to external command"
	case QuadchuteMinimumAltBreached:
		return "Quad-chute triggered due to minimum altitude breach"
	case QuadchuteUncommandedDescent:
		return "Quad-chute triggered due to uncommanded descent detection"
	case QuadchuteTransitionAltitudeLoss:
		return "Quad-chute triggered due to loss of altitude during transition"
	case QuadchuteMaximumPitchExceeded:
		return "Quad-chute triggered due to maximum pitch angle exceeded"
	case QuadchuteMaximumRollExceeded:
		return "Quad-chute triggered due to maximum roll angle exceeded"
	default:
		return ""
	}
}

// Logger is the narrow logging surface the coordinator needs. The default
// implementation wraps the standard library logger; no third-party
// logging framework appears anywhere in the reference pack this module
// was grounded on, so this concern is carried on the standard library
// rather than an ecosystem dependency.
type Logger interface {
	Printf(format string, v ...any)
	Criticalf(id, format string, v ...any)
}

// stdLogger adapts *log.Logger to the Logger interface.
type stdLogger struct {
	*log.Logger
}

// NewStdLogger returns a Logger backed by l, or by the standard library's
// default logger when l is nil. Criticalf lines are prefixed with
// "CRITICAL [id]"; Printf lines are written unchanged.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}
	return stdLogger{l}
}

func (s stdLogger) Criticalf(id, format string, v ...any) {
	s.Printf("CRITICAL ["+id+"] "+format, v...)
}
