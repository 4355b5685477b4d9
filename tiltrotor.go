// tiltrotor.go

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

// tiltMode subdivides tiltrotor's TransitionToFw into the two phases the
// reference stack tracks separately: P1 spools the rotors and accelerates
// like a Standard airframe, P2 tilts the rotors the rest of the way
// forward while multirotor authority fades out.
type tiltMode int

const (
	tiltP1 tiltMode = iota
	tiltP2
)

// tiltrotorAirframe physically tilts its lift rotors forward instead of
// fading a separate pusher or rotating the whole vehicle.
type tiltrotorAirframe struct {
	base

	tilt      float64
	phase     tiltMode
	p2StartTS Timestamp
}

func newTiltrotorAirframe(params *Parameters) *tiltrotorAirframe {
	return &tiltrotorAirframe{base: newBase(params)}
}

func (r *tiltrotorAirframe) Init(ctx Context) bool {
	r.tilt = r.params.TiltMc
	return true
}

func (r *tiltrotorAirframe) ParametersUpdate(ctx Context) {
	r.params.clampCrossParameters()
}

func (r *tiltrotorAirframe) UpdateVtolState(ctx Context, cmd CommandState) {
	switch r.mode {
	case RotaryWing:
		if cmd.Transition == RequestFw {
			r.clearFixedWingFailure()
			r.enterTransition(ctx, TransitionToFw)
			r.phase = tiltP1
		}
	case TransitionToFw:
		if r.rtlAbort(ctx) {
			r.enterTransition(ctx, TransitionToMc)
			return
		}
		switch r.phase {
		case tiltP1:
			as := ctx.In.Airspeed()
			reachedBlend := as.Valid && as.CalibratedMs >= r.params.BlendAirspeed
			elapsed := r.timeSinceTransStart(ctx)
			if reachedBlend || (!as.Valid && elapsed >= r.params.MinFrontTransTime) || cmd.ImmediateTransition {
				r.phase = tiltP2
				r.p2StartTS = ctx.Now
			}
		case tiltP2:
			p2Elapsed := ctx.Now.Sub(r.p2StartTS)
			if p2Elapsed >= r.params.TransP2Dur || cmd.ImmediateTransition {
				r.finishTransition(ctx, FixedWing)
				r.tilt = r.params.TiltFw
			}
		}
	case FixedWing:
		if cmd.Transition == RequestMc {
			r.pusherThrottle = ctx.In.FwIn().Thrust.X
			r.enterTransition(ctx, TransitionToMc)
		}
	case TransitionToMc:
		if r.isBackTransitionCompleted(ctx) && r.timeUntilMotorsAreUp(ctx) <= 0 {
			r.finishTransition(ctx, RotaryWing)
			r.tilt = r.params.TiltMc
		}
	}
}

// timeUntilMotorsAreUp reports how much longer the rear lift motors -
// idled during forward flight - still need before they have spun back up
// to hover-capable RPM. The back transition may not complete before this
// reaches zero.
func (r *tiltrotorAirframe) timeUntilMotorsAreUp(ctx Context) time.Duration {
	remaining := r.params.RearMotorSpinupDuration - r.timeSinceTransStart(ctx)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (r *tiltrotorAirframe) rtlAbort(ctx Context) bool {
	return r.mode == TransitionToFw && ctx.In.VehicleStatus().NavState == NavStateAutoRtl
}

func (r *tiltrotorAirframe) UpdateTransitionState(ctx Context) {
	if !r.inTransition {
		return
	}
	if reason := r.checkQuadchute(ctx); reason != QuadchuteNone {
		r.latchQuadchute(ctx, reason)
		r.tilt = r.params.TiltMc
		return
	}

	var mcWeight float64
	switch r.mode {
	case TransitionToFw:
		switch r.phase {
		case tiltP1:
			mcWeight = r.frontTransitionMcWeight(ctx, ctx.In.Airspeed().Valid)
			r.weights = Uniform(mcWeight)
			r.tilt = r.moveLinear(r.params.TiltMc, r.params.TiltTrans, r.p1Progress(ctx))
		case tiltP2:
			p2Progress := 0.0
			if r.params.TransP2Dur > 0 {
				p2Progress = clamp(ctx.Now.Sub(r.p2StartTS).Seconds()/r.params.TransP2Dur.Seconds(), 0, 1)
			}
			r.tilt = r.moveLinear(r.params.TiltTrans, r.params.TiltFw, p2Progress)
			mcWeight = 1 - p2Progress
			r.weights = Uniform(mcWeight)
		}
	case TransitionToMc:
		progress := 0.0
		if r.params.BackTransTiltDur > 0 {
			progress = clamp(r.timeSinceTransStart(ctx).Seconds()/r.params.BackTransTiltDur.Seconds(), 0, 1)
		}
		r.tilt = r.moveLinear(r.params.TiltFw, r.params.TiltMc, progress)
		r.weights = Uniform(progress)
		mcWeight = progress
		r.pusherThrottle = r.blendThrottleDuringBacktransition(progress, ctx.In.McIn().Thrust.Z)
	}

	if sp, ok := r.composeTransitionAttitudeSetpoint(ctx, mcWeight); ok {
		ctx.Out.PublishAttitudeSetpoint(sp)
	}
}

// p1Progress reports P1's completion fraction purely for the tilt ramp; P1
// itself exits on airspeed or elapsed time, not on this fraction.
func (r *tiltrotorAirframe) p1Progress(ctx Context) float64 {
	if r.params.MinFrontTransTime <= 0 {
		return 1
	}
	return clamp(r.timeSinceTransStart(ctx).Seconds()/r.params.MinFrontTransTime.Seconds(), 0, 1)
}

// moveLinear interpolates between start and stop as progress moves 0..1.
// Kept distinct from the package's generic lerp because the reference
// stack names and clamps it separately - progress here is always
// pre-clamped by the caller, whereas lerp is not.
func (r *tiltrotorAirframe) moveLinear(start, stop, progress float64) float64 {
	return lerp(start, stop, clamp(progress, 0, 1))
}

func (r *tiltrotorAirframe) UpdateMcState(ctx Context) {}
func (r *tiltrotorAirframe) UpdateFwState(ctx Context) {}

func (r *tiltrotorAirframe) FillActuatorOutputs(ctx Context) {
	mc := ctx.In.McIn()
	fw := ctx.In.FwIn()
	w := r.weights

	torque0 := Vector3{
		X: lerp(fw.Torque.X, mc.Torque.X, w.Roll),
		Y: lerp(fw.Torque.Y, mc.Torque.Y, w.Pitch),
		Z: lerp(fw.Torque.Z, mc.Torque.Z, w.Yaw),
	}
	thrust0 := Vector3{Z: lerp(fw.Thrust.Z, mc.Thrust.Z, w.Throttle)}
	switch r.mode {
	case FixedWing:
		thrust0.X = fw.Thrust.X
		if !r.waitingOnTecs(ctx) && r.timeSinceTransFinished(ctx) < r.params.ThrustBlendDuration {
			scale := r.timeSinceTransFinished(ctx).Seconds() / r.params.ThrustBlendDuration.Seconds()
			thrust0.X = r.blendThrottleAfterFrontTransition(scale, fw.Thrust.X)
		}
	case TransitionToMc:
		thrust0.X = r.pusherThrottle
	}

	ctx.Out.PublishTorque0(torque0)
	ctx.Out.PublishThrust0(thrust0)
	ctx.Out.PublishTorque1(fw.Torque)
	ctx.Out.PublishThrust1(Vector3{})

	ctx.Out.PublishTiltrotorExtras(TiltrotorExtras{
		TiltControl:       r.tilt,
		RearMotorsEnabled: r.mode != FixedWing,
		Timestamp:         ctx.Now,
	})
}

func (r *tiltrotorAirframe) HandleEkfResets(ctx Context, deltaYaw float64, posReset bool) {
	r.handleEkfResets(ctx, deltaYaw, posReset)
}

func (r *tiltrotorAirframe) WaitingOnTecs(ctx Context) bool { return r.waitingOnTecs(ctx) }

func (r *tiltrotorAirframe) BlendThrottleAfterFrontTransition(ctx Context, scale float64) {
	tecsThrottle := ctx.In.FwIn().Thrust.X
	r.pusherThrottle = r.blendThrottleAfterFrontTransition(scale, tecsThrottle)
}

// blendThrottleDuringBacktransition blends from the vehicle's current
// throttle toward targetThrottle as scale moves 0..1, matching the
// reference stack's back-transition throttle rule (distinct from the
// front-transition blend, which targets TECS output rather than a fixed
// hover target).
func (r *tiltrotorAirframe) blendThrottleDuringBacktransition(scale, targetThrottle float64) float64 {
	return r.moveLinear(r.pusherThrottle, targetThrottle, scale)
}
