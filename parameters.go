// parameters.go

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

import "time"

// Parameters is the full set of tunables the coordinator and its airframes
// consult. It is loaded once at startup and refreshed in place whenever the
// parameter store changes; airframes only ever see it through a Context, and
// a change never touches fields an in-flight state machine has already
// captured (trans_start_ts, q_trans_start, and similar are copied out at
// entry, not read live from here).
type Parameters struct {
	// VtolType selects the airframe family. Required; there is no
	// default, an unset or out-of-range value is configuration-fatal.
	VtolType AirframeKind

	// Front-transition pusher/thrust ramp (Standard, Tiltrotor P1).
	FrontTransThrottle float64       // VT_F_TRANS_THR: target throttle
	PusherSlewRate     float64       // VT_PSHER_SLEW: 1/s, 0 = instant
	BlendAirspeed      float64       // lower bound of the MC-authority fade band
	TransitionAirspeed float64       // upper bound of the MC-authority fade band, and the FW-entry threshold
	MinFrontTransTime  time.Duration // minimum time before completion can be declared
	OpenLoopTransDur   time.Duration // hard timeout -> quadchute

	// Back-transition ramp, shared meaning across airframes.
	BackTransDuration time.Duration // VT_B_TRANS_DUR: hard max
	BackTransRampTime time.Duration // VT_B_TRANS_RAMP: MC ramp-up, clamped <= BackTransDuration
	CruiseSpeed       float64       // MPC_XY_CRUISE: back-transition exit speed threshold

	// Standard/Tiltrotor thrust blending window at the transition seam.
	ThrustBlendDuration time.Duration // B_TRANS_THRUST_BLENDING_DURATION, 0.5s in the reference stack

	// Control-surface behaviour in hover.
	ElevonsLockedInMc bool    // VT_ELEV_MC_LOCK
	SpoilerMcLandDefl float64 // VT_SPOILER_MC_LD

	// Tailsitter pitch thresholds (radians) and P1 completion pitch.
	PitchThresholdToFw float64 // -1.05 rad, ~ -60 deg
	PitchThresholdToMc float64 // -0.26 rad, ~ -15 deg

	// Front-transition attitude-setpoint composition (Standard, Tiltrotor).
	FwPitchSetpointOffset float64 // FW_PSP_OFF, radians

	// Tiltrotor tilt positions and phase durations.
	TiltMc                 float64       // VT_TILT_MC, default 0.0
	TiltTrans              float64       // VT_TILT_TRANS, default 0.4
	TiltFw                 float64       // VT_TILT_FW, default 1.0
	TransP2Dur             time.Duration // VT_TRANS_P2_DUR, default 0.5s
	BackTransTiltDur       time.Duration // VT_BT_TILT_DUR, default 1.0s
	RearMotorSpinupDuration time.Duration // time the idled rear lift motors need to spin up before back transition may complete

	// Quadchute envelope.
	QcMinAltitude       float64       // hard altitude floor, meters
	QcMaxAltLoss        float64       // cumulative altitude loss allowed during a transition, meters
	QcMaxPitchRad       float64       // hard pitch envelope
	QcMaxRollRad        float64       // hard roll envelope
	QcUncommandedDescentSec time.Duration // sustained-descent window before latching
}

// DefaultTiltrotorParameters returns the tiltrotor tilt/duration defaults
// used by the reference flight-control stack when a configuration omits
// them.
func DefaultTiltrotorParameters() (tiltMc, tiltTrans, tiltFw float64, p2Dur, btTiltDur time.Duration) {
	return 0.0, 0.4, 1.0, 500 * time.Millisecond, 1000 * time.Millisecond
}

// DefaultTailsitterPitchThresholds returns the fixed pitch thresholds the
// tailsitter transition completion predicates use.
func DefaultTailsitterPitchThresholds() (toFw, toMc float64) {
	return -1.05, -0.26
}

// DefaultThrustBlendDuration is the fixed window Standard and Tiltrotor
// airframes blend pusher/tilt throttle against TECS throttle over at the
// end of a front transition. Back transitions do not use this window.
const DefaultThrustBlendDuration = 500 * time.Millisecond

// DefaultRearMotorSpinupDuration is how long Tiltrotor's idled rear lift
// motors need to spin back up before a back transition may complete, when
// a configuration does not override it.
const DefaultRearMotorSpinupDuration = 1000 * time.Millisecond

// clampCrossParameters enforces the invariants that span more than one
// field, matching the reference stack's parameters_update() clamps. It is
// called by every airframe's ParametersUpdate before anything else.
func (p *Parameters) clampCrossParameters() {
	if p.BackTransRampTime > p.BackTransDuration {
		p.BackTransRampTime = p.BackTransDuration
	}
	if p.ThrustBlendDuration <= 0 {
		p.ThrustBlendDuration = DefaultThrustBlendDuration
	}
	if p.TiltMc == 0 && p.TiltTrans == 0 && p.TiltFw == 0 {
		p.TiltMc, p.TiltTrans, p.TiltFw, _, _ = DefaultTiltrotorParameters()
	}
	if p.TransP2Dur <= 0 {
		_, _, _, p.TransP2Dur, _ = DefaultTiltrotorParameters()
	}
	if p.BackTransTiltDur <= 0 {
		_, _, _, _, p.BackTransTiltDur = DefaultTiltrotorParameters()
	}
	if p.PitchThresholdToFw == 0 && p.PitchThresholdToMc == 0 {
		p.PitchThresholdToFw, p.PitchThresholdToMc = DefaultTailsitterPitchThresholds()
	}
	if p.RearMotorSpinupDuration <= 0 {
		p.RearMotorSpinupDuration = DefaultRearMotorSpinupDuration
	}
}
