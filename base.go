// base.go

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

// base holds the state and predicates shared by every airframe family: the
// blending weights, the transition clock, the pusher throttle, and the
// quadchute latch. It is embedded by value in each concrete airframe, never
// referenced through an interface of its own - it is not itself an
// Airframe, only a component one is built from.
type base struct {
	params *Parameters

	mode CommonMode

	weights          Weights
	pusherThrottle   float64
	pusherRampTS     Timestamp
	havePusherRampTS bool

	transStartTS    Timestamp
	transFinishedTS Timestamp
	inTransition    bool

	fixedWingSysFailure bool

	altAtTransStart      float64
	descentStartTS       Timestamp
	descentStartValid    bool
}

func newBase(params *Parameters) base {
	return base{
		params: params,
		mode:   RotaryWing,
		weights: Full(),
	}
}

// Mode implements part of Airframe; concrete airframes embed base and
// inherit this method unless they need to override it (none do today).
func (b *base) Mode() CommonMode { return b.mode }

// FixedWingFailure implements part of Airframe; concrete airframes embed
// base and inherit this unmodified.
func (b *base) FixedWingFailure() bool { return b.fixedWingSysFailure }

// enterTransition captures the shared transition-clock state common to
// every airframe. Concrete airframes call this once, on the tick they
// decide to leave RotaryWing or FixedWing, before doing any
// airframe-specific setup.
func (b *base) enterTransition(ctx Context, target CommonMode) {
	b.mode = target
	b.inTransition = true
	b.transStartTS = ctx.Now
	b.altAtTransStart = ctx.In.LocalPosition().Altitude()
	b.descentStartValid = false
	b.havePusherRampTS = false
}

// finishTransition records completion, clears the shared timer and sets
// mode to final (RotaryWing or FixedWing).
func (b *base) finishTransition(ctx Context, final CommonMode) {
	b.mode = final
	b.inTransition = false
	b.transFinishedTS = ctx.Now
	if final == RotaryWing {
		b.weights = Full()
		b.pusherThrottle = 0
	} else {
		b.weights = Zero()
	}
}

// timeSinceTransStart returns the elapsed time since enterTransition was
// last called, or zero if no transition is active.
func (b *base) timeSinceTransStart(ctx Context) time.Duration {
	if !b.inTransition {
		return 0
	}
	return ctx.Now.Sub(b.transStartTS)
}

// timeSinceTransFinished returns the elapsed time since the most recently
// completed transition, used to gate the post-transition throttle blend
// window.
func (b *base) timeSinceTransFinished(ctx Context) time.Duration {
	if b.transFinishedTS == 0 {
		return time.Duration(1<<62 - 1)
	}
	return ctx.Now.Sub(b.transFinishedTS)
}

// rampPusher advances pusherThrottle toward target by at most
// PusherSlewRate * dt this tick, where dt is the time elapsed since the
// previous rampPusher call, capped at the scheduling-stall guard so a
// delayed tick cannot make the throttle jump. The first call after
// enterTransition resets the ramp clock and advances by zero, since there
// is no prior tick within this transition to measure dt against. A
// non-positive slew rate still jumps straight to target.
func (b *base) rampPusher(ctx Context, target float64) {
	if b.params.PusherSlewRate <= 0 {
		b.pusherThrottle = target
		b.pusherRampTS = ctx.Now
		b.havePusherRampTS = true
		return
	}

	dt := time.Duration(0)
	if b.havePusherRampTS {
		dt = capDt(ctx.Now.Sub(b.pusherRampTS))
	}
	b.pusherRampTS = ctx.Now
	b.havePusherRampTS = true

	step := b.params.PusherSlewRate * dt.Seconds()
	if target >= 0 {
		b.pusherThrottle = clamp(b.pusherThrottle+step, 0, target)
	} else {
		b.pusherThrottle = clamp(b.pusherThrottle-step, target, 0)
	}
}

// frontTransitionMcWeight implements the blend policy shared by every
// airframe that fades multirotor authority against airspeed: linear in
// airspeed inside [BlendAirspeed, TransitionAirspeed] once the minimum
// front-transition time has elapsed, otherwise a time-linear fallback that
// reaches zero at the midpoint of the minimum transition time.
func (b *base) frontTransitionMcWeight(ctx Context, airspeedValid bool) float64 {
	elapsed := b.timeSinceTransStart(ctx)
	minTime := b.params.MinFrontTransTime

	if airspeedValid && elapsed >= minTime {
		as := ctx.In.Airspeed().CalibratedMs
		lo, hi := b.params.BlendAirspeed, b.params.TransitionAirspeed
		if as <= lo {
			return 1
		}
		if as >= hi {
			return 0
		}
		return clamp(1-invLerp(lo, hi, as), 0, 1)
	}

	if minTime <= 0 {
		return 0
	}
	// The factor of two folds the fade into the first half of the
	// minimum transition time: weight holds at 1 until a quarter of the
	// way through, then ramps to 0 by the midpoint, and stays there for
	// the remainder of the minimum-time wait.
	t := elapsed.Seconds() / (minTime.Seconds() / 2)
	return clamp(2*(1-t), 0, 1)
}

// isFrontTransitionCompleted implements the shared completion predicate:
// airspeed at or above the transition threshold and minimum time elapsed,
// unless immediate transition was requested or the vehicle is on the
// ground, in which case it completes at once. Without a valid airspeed
// sensor, completion instead waits for the open-loop duration to elapse.
func (b *base) isFrontTransitionCompleted(ctx Context, immediate bool) bool {
	if immediate || ctx.In.LandDetected().OnGround {
		return true
	}
	elapsed := b.timeSinceTransStart(ctx)
	as := ctx.In.Airspeed()
	if as.Valid {
		return as.CalibratedMs >= b.params.TransitionAirspeed && elapsed >= b.params.MinFrontTransTime
	}
	return elapsed >= b.params.OpenLoopTransDur
}

// isBackTransitionCompleted implements the shared TransitionToMc exit
// predicate: on ground, or slow enough (body-x speed or airspeed below
// cruise), or the hard duration has elapsed.
func (b *base) isBackTransitionCompleted(ctx Context) bool {
	if ctx.In.LandDetected().OnGround {
		return true
	}
	lp := ctx.In.LocalPosition()
	bodyXSpeed := lp.Vx
	if bodyXSpeed < b.params.CruiseSpeed {
		return true
	}
	if as := ctx.In.Airspeed(); as.Valid && as.CalibratedMs < b.params.CruiseSpeed {
		return true
	}
	return b.timeSinceTransStart(ctx) > b.params.BackTransDuration
}

// checkQuadchute runs the shared, airframe-independent quadchute checks -
// open-loop transition timeout, minimum-altitude floor, cumulative
// altitude loss during a transition, uncommanded descent, and the hard
// pitch/roll envelope - returning the first reason that fires, or
// QuadchuteNone. It does not itself latch fixedWingSysFailure; callers
// apply the effect through latchQuadchute, which also logs the firing.
func (b *base) checkQuadchute(ctx Context) QuadchuteReason {
	if b.fixedWingSysFailure {
		return QuadchuteNone
	}

	if b.inTransition && b.timeSinceTransStart(ctx) > b.params.OpenLoopTransDur {
		return QuadchuteTransitionTimeout
	}

	alt := ctx.In.LocalPosition().Altitude()
	if b.params.QcMinAltitude > 0 && alt < b.params.QcMinAltitude {
		return QuadchuteMinimumAltBreached
	}

	if b.inTransition && b.params.QcMaxAltLoss > 0 {
		if b.altAtTransStart-alt > b.params.QcMaxAltLoss {
			return QuadchuteTransitionAltitudeLoss
		}
	}

	if b.params.QcUncommandedDescentSec > 0 {
		lp := ctx.In.LocalPosition()
		descending := lp.Vz > 0.5 // NED: positive Vz is downward
		if descending {
			if !b.descentStartValid {
				b.descentStartTS = ctx.Now
				b.descentStartValid = true
			} else if ctx.Now.Sub(b.descentStartTS) > b.params.QcUncommandedDescentSec {
				return QuadchuteUncommandedDescent
			}
		} else {
			b.descentStartValid = false
		}
	}

	if b.params.QcMaxPitchRad > 0 || b.params.QcMaxRollRad > 0 {
		roll, pitch, _ := ctx.In.Attitude().Euler()
		if b.params.QcMaxPitchRad > 0 && (pitch > b.params.QcMaxPitchRad || pitch < -b.params.QcMaxPitchRad) {
			return QuadchuteMaximumPitchExceeded
		}
		if b.params.QcMaxRollRad > 0 && (roll > b.params.QcMaxRollRad || roll < -b.params.QcMaxRollRad) {
			return QuadchuteMaximumRollExceeded
		}
	}

	return QuadchuteNone
}

// latchQuadchute applies the effect a firing quadchute has regardless of
// cause: force multirotor mode, zero pusher, and latch the failure flag so
// it cannot re-fire until a fresh transition-to-FW command clears it. It
// logs the event id and critical message through ctx.Log.
func (b *base) latchQuadchute(ctx Context, reason QuadchuteReason) {
	if reason == QuadchuteNone {
		return
	}
	b.fixedWingSysFailure = true
	b.inTransition = false
	b.mode = RotaryWing
	b.weights = Full()
	b.pusherThrottle = 0

	ctx.Log.Criticalf(reason.eventID(), "%s", reason.message())
}

// clearFixedWingFailure clears the quadchute latch. Called only when a
// fresh transition-to-FW command is accepted.
func (b *base) clearFixedWingFailure() { b.fixedWingSysFailure = false }

// handleEkfResets is the shared EKF-reset hook. The base itself stores no
// attitude reference, so it changes nothing; airframes with one
// (tailsitter) rotate their own q_trans_start/q_trans_sp before calling
// it, so a slerp-based ramp doesn't see a step change.
func (b *base) handleEkfResets(ctx Context, deltaYaw float64, posReset bool) {
	// The shared state (weights, timers, pusher throttle) carries no
	// world-frame reference and needs no correction here.
	_ = ctx
	_ = deltaYaw
	_ = posReset
}

// waitingOnTecs reports whether TECS has not yet produced a status sample
// since this transition finished. Airframes with a post-transition blend window
// consult this before starting BlendThrottleAfterFrontTransition.
func (b *base) waitingOnTecs(ctx Context) bool {
	tecs := ctx.In.TecsStatus()
	return tecs.Timestamp == 0 || tecs.Timestamp < b.transFinishedTS
}

// blendThrottleAfterFrontTransition scales pusherThrottle toward the
// caller-supplied TECS throttle as scale moves from 0 (just finished) to 1
// (blend window elapsed), matching every airframe's shared post-transition
// throttle continuity rule.
func (b *base) blendThrottleAfterFrontTransition(scale float64, tecsThrottle float64) float64 {
	scale = clamp(scale, 0, 1)
	return lerp(b.pusherThrottle, tecsThrottle, scale)
}

// staleAttitudeSetpoint reports whether a virtual attitude setpoint is too
// old to drive this tick's transition attitude blend - either never
// published, or older than the one-second freshness window.
func staleAttitudeSetpoint(now Timestamp, sp AttitudeSetpoint) bool {
	return sp.Timestamp == 0 || now.Sub(sp.Timestamp) > time.Second
}

// backTransitionPitchSp is the deceleration pitch controller consulted
// during TransitionToMc when climb-rate control is enabled: nose-up
// proportional to airspeed in excess of cruise speed, so the aircraft
// bleeds speed before the multirotor controller takes back over.
func (b *base) backTransitionPitchSp(ctx Context) float64 {
	speed := ctx.In.LocalPosition().Vx
	if as := ctx.In.Airspeed(); as.Valid {
		speed = as.CalibratedMs
	}
	excess := speed - b.params.CruiseSpeed
	if excess < 0 {
		excess = 0
	}
	const decelPitchGainRadPerMs = 0.05
	const maxDecelPitchRad = 0.5
	return clamp(decelPitchGainRadPerMs*excess, 0, maxDecelPitchRad)
}

// composeTransitionAttitudeSetpoint implements the shared front/back
// transition attitude-setpoint blend: roll and yaw are taken from whichever
// virtual attitude setpoint is authoritative for the tick, pitch is either
// the front-transition FW_PSP_OFF ramp or, in back transition with
// climb-rate control enabled, the deceleration pitch controller. It reports
// false - leaving the previously published setpoint in place - when the
// virtual setpoint it needs is stale.
func (b *base) composeTransitionAttitudeSetpoint(ctx Context, mcWeight float64) (AttitudeSetpoint, bool) {
	fwSp := ctx.In.FwAttSpIn()
	if staleAttitudeSetpoint(ctx.Now, fwSp) {
		return AttitudeSetpoint{}, false
	}
	fwRoll, _, _ := quat{fwSp.QW, fwSp.QX, fwSp.QY, fwSp.QZ}.toEuler()

	sp := fwSp
	var roll, pitch, yaw float64
	if ctx.In.ControlMode().ClimbRateEnabled {
		mcSp := ctx.In.McAttSpIn()
		if staleAttitudeSetpoint(ctx.Now, mcSp) {
			return AttitudeSetpoint{}, false
		}
		sp = mcSp
		roll = fwRoll
		_, pitch, yaw = quat{mcSp.QW, mcSp.QX, mcSp.QY, mcSp.QZ}.toEuler()
	} else {
		roll, pitch, yaw = quat{fwSp.QW, fwSp.QX, fwSp.QY, fwSp.QZ}.toEuler()
		sp.ThrustBody.Z = -fwSp.ThrustBody.X
	}

	switch b.mode {
	case TransitionToFw:
		pitch = b.params.FwPitchSetpointOffset * (1 - mcWeight)
		sp.ThrustBody.X = b.pusherThrottle
	case TransitionToMc:
		if ctx.In.ControlMode().ClimbRateEnabled {
			pitch = b.backTransitionPitchSp(ctx)
		}
		sp.ThrustBody.X = 0
	}

	q := quatFromEuler(roll, pitch, yaw)
	sp.QW, sp.QX, sp.QY, sp.QZ = q.W, q.X, q.Y, q.Z
	sp.Timestamp = ctx.Now
	return sp, true
}
