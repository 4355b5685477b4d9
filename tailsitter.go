// tailsitter.go

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

// tailsitterAirframe rotates the whole vehicle between hover and forward
// flight instead of tilting a rotor or spooling a pusher: its front
// transition is a spherical interpolation of the attitude setpoint from
// the hover orientation to a pitched-down forward-flight orientation.
type tailsitterAirframe struct {
	base

	qTransStart quat
	qTransSp    quat

	// enteredTransition marks the first UpdateTransitionState tick after
	// entering a transition, so q_trans_start is captured exactly once.
	enteredTransition bool
}

func newTailsitterAirframe(params *Parameters) *tailsitterAirframe {
	return &tailsitterAirframe{base: newBase(params)}
}

func (t *tailsitterAirframe) Init(ctx Context) bool { return true }

func (t *tailsitterAirframe) ParametersUpdate(ctx Context) {
	t.params.clampCrossParameters()
}

func (t *tailsitterAirframe) UpdateVtolState(ctx Context, cmd CommandState) {
	switch t.mode {
	case RotaryWing:
		if cmd.Transition == RequestFw {
			t.clearFixedWingFailure()
			t.enterTransition(ctx, TransitionToFw)
			t.enteredTransition = true
		}
	case TransitionToFw:
		if t.rtlAbort(ctx) {
			t.enterTransition(ctx, TransitionToMc)
			t.enteredTransition = true
			return
		}
		_, pitch, _ := ctx.In.Attitude().Euler()
		elapsed := t.timeSinceTransStart(ctx)
		completed := cmd.ImmediateTransition ||
			(pitch < t.params.PitchThresholdToFw && elapsed >= t.params.MinFrontTransTime)
		if completed {
			t.finishTransition(ctx, FixedWing)
		}
	case FixedWing:
		if cmd.Transition == RequestMc {
			t.enterTransition(ctx, TransitionToMc)
			t.enteredTransition = true
		}
	case TransitionToMc:
		_, pitch, _ := ctx.In.Attitude().Euler()
		if pitch > t.params.PitchThresholdToMc || t.timeSinceTransStart(ctx) > t.params.BackTransDuration {
			t.finishTransition(ctx, RotaryWing)
		}
	}
}

func (t *tailsitterAirframe) rtlAbort(ctx Context) bool {
	return t.mode == TransitionToFw && ctx.In.VehicleStatus().NavState == NavStateAutoRtl
}

func (t *tailsitterAirframe) UpdateTransitionState(ctx Context) {
	if !t.inTransition {
		return
	}
	if reason := t.checkQuadchute(ctx); reason != QuadchuteNone {
		t.latchQuadchute(ctx, reason)
		return
	}

	att := ctx.In.Attitude()
	current := quat{att.QW, att.QX, att.QY, att.QZ}

	if t.enteredTransition {
		t.qTransStart = current
		if t.mode == TransitionToFw {
			roll, _, yaw := current.toEuler()
			t.qTransSp = quatFromEuler(roll, t.params.PitchThresholdToFw, yaw)
		} else {
			roll, _, yaw := current.toEuler()
			t.qTransSp = quatFromEuler(roll, 0, yaw)
		}
		t.enteredTransition = false
	}

	minTime := t.params.MinFrontTransTime
	if t.mode == TransitionToMc {
		minTime = t.params.BackTransDuration
	}
	progress := 0.0
	if minTime > 0 {
		progress = clamp(t.timeSinceTransStart(ctx).Seconds()/minTime.Seconds(), 0, 1)
	}

	setpoint := slerp(t.qTransStart, t.qTransSp, progress)
	ctx.Out.PublishAttitudeSetpoint(AttitudeSetpoint{
		QW: setpoint.W, QX: setpoint.X, QY: setpoint.Y, QZ: setpoint.Z,
		Timestamp: ctx.Now,
	})

	switch t.mode {
	case TransitionToFw:
		mcWeight := t.frontTransitionMcWeight(ctx, ctx.In.Airspeed().Valid)
		t.weights = Uniform(mcWeight)
	case TransitionToMc:
		t.weights = Uniform(progress)
		t.pusherThrottle = t.blendThrottleBeginningBackTransition(ctx, progress, ctx.In.McIn().Thrust.Z)
	}
}

func (t *tailsitterAirframe) UpdateMcState(ctx Context) {}
func (t *tailsitterAirframe) UpdateFwState(ctx Context) {}

func (t *tailsitterAirframe) FillActuatorOutputs(ctx Context) {
	mc := ctx.In.McIn()
	fw := ctx.In.FwIn()
	w := t.weights

	torque0 := Vector3{
		X: lerp(fw.Torque.X, mc.Torque.X, w.Roll),
		Y: lerp(fw.Torque.Y, mc.Torque.Y, w.Pitch),
		Z: lerp(fw.Torque.Z, mc.Torque.Z, w.Yaw),
	}
	thrust0 := Vector3{Z: lerp(fw.Thrust.Z, mc.Thrust.Z, w.Throttle)}
	if t.mode == TransitionToMc {
		thrust0.Z = t.pusherThrottle
	}

	ctx.Out.PublishTorque0(torque0)
	ctx.Out.PublishThrust0(thrust0)
	// The fixed-wing control surfaces provide passive damping throughout
	// flight, not only once fully forward, so their virtual torque flows to
	// the elevon channel continuously rather than being zeroed.
	ctx.Out.PublishTorque1(fw.Torque)
	ctx.Out.PublishThrust1(Vector3{})
}

func (t *tailsitterAirframe) HandleEkfResets(ctx Context, deltaYaw float64, posReset bool) {
	if deltaYaw != 0 {
		delta := quatFromEuler(0, 0, deltaYaw)
		t.qTransStart = quatMul(delta, t.qTransStart)
		t.qTransSp = quatMul(delta, t.qTransSp)
	}
	t.handleEkfResets(ctx, deltaYaw, posReset)
}

func (t *tailsitterAirframe) WaitingOnTecs(ctx Context) bool { return t.waitingOnTecs(ctx) }

// BlendThrottleAfterFrontTransition does nothing on the tailsitter; it
// shares its name with the other airframes' throttle blend only to
// complete the capability set.
func (t *tailsitterAirframe) BlendThrottleAfterFrontTransition(ctx Context, scale float64) {
	// The tailsitter blends attitude, not a separate pusher throttle, so
	// the shared throttle blend is a no-op here; kept to satisfy the
	// capability set every airframe implements.
	_ = ctx
	_ = scale
}

// blendThrottleBeginningBackTransition is tailsitter-specific: unlike the
// shared post-front-transition blend, entering a back transition needs its
// own ramp from FW throttle down toward the value the multirotor
// controller will pick up once weights reach 1.
func (t *tailsitterAirframe) blendThrottleBeginningBackTransition(ctx Context, scale float64, mcThrottle float64) float64 {
	fwThrottle := ctx.In.FwIn().Thrust.Z
	return lerp(fwThrottle, mcThrottle, clamp(scale, 0, 1))
}
