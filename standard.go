// standard.go

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

// standardAirframe is the two-phase pusher-and-rotor-fade transition: a
// dedicated pusher motor ramps up while the lift rotors fade out, with no
// intermediate airframe geometry change.
type standardAirframe struct {
	base
}

func newStandardAirframe(params *Parameters) *standardAirframe {
	return &standardAirframe{base: newBase(params)}
}

func (s *standardAirframe) Init(ctx Context) bool {
	return true
}

func (s *standardAirframe) ParametersUpdate(ctx Context) {
	s.params.clampCrossParameters()
}

func (s *standardAirframe) UpdateVtolState(ctx Context, cmd CommandState) {
	switch s.mode {
	case RotaryWing:
		if cmd.Transition == RequestFw {
			s.clearFixedWingFailure()
			s.enterTransition(ctx, TransitionToFw)
		}
	case TransitionToFw:
		if s.rtlAbort(ctx) {
			s.enterTransition(ctx, TransitionToMc)
			return
		}
		if s.isFrontTransitionCompleted(ctx, cmd.ImmediateTransition) {
			s.finishTransition(ctx, FixedWing)
		}
	case FixedWing:
		if cmd.Transition == RequestMc {
			s.enterTransition(ctx, TransitionToMc)
		}
	case TransitionToMc:
		if s.isBackTransitionCompleted(ctx) {
			s.finishTransition(ctx, RotaryWing)
		}
	}
}

// rtlAbort reports whether a front transition is under way while the
// autopilot's nav state is AUTO_RTL. It is a level check made on every
// UpdateVtolState call (the edge detection lives in the coordinator's
// pollRtlAbort); when it holds, the airframe reverts to TransitionToMc
// rather than pressing on toward FW, without latching a quadchute.
func (s *standardAirframe) rtlAbort(ctx Context) bool {
	return s.mode == TransitionToFw && ctx.In.VehicleStatus().NavState == NavStateAutoRtl
}

func (s *standardAirframe) UpdateTransitionState(ctx Context) {
	if !s.inTransition {
		return
	}
	if reason := s.checkQuadchute(ctx); reason != QuadchuteNone {
		s.latchQuadchute(ctx, reason)
		return
	}

	var mcWeight float64
	switch s.mode {
	case TransitionToFw:
		mcWeight = s.frontTransitionMcWeight(ctx, ctx.In.Airspeed().Valid)
		s.weights = Uniform(mcWeight)
		s.rampPusher(ctx, s.params.FrontTransThrottle)
	case TransitionToMc:
		elapsed := s.timeSinceTransStart(ctx)
		rampT := 1.0
		if s.params.BackTransRampTime > 0 {
			rampT = clamp(elapsed.Seconds()/s.params.BackTransRampTime.Seconds(), 0, 1)
		}
		s.weights = Uniform(rampT)
		s.pusherThrottle = lerp(s.params.FrontTransThrottle, 0, rampT)
		mcWeight = rampT
	}

	if sp, ok := s.composeTransitionAttitudeSetpoint(ctx, mcWeight); ok {
		ctx.Out.PublishAttitudeSetpoint(sp)
	}
}

func (s *standardAirframe) UpdateMcState(ctx Context) {
	// Pure passthrough of the multirotor virtual stream; pusher assist,
	// when commanded outside a transition, is left at zero here per the
	// hover-default invariant.
}

func (s *standardAirframe) UpdateFwState(ctx Context) {
	// Pure passthrough of the fixed-wing virtual stream.
}

func (s *standardAirframe) FillActuatorOutputs(ctx Context) {
	mc := ctx.In.McIn()
	fw := ctx.In.FwIn()
	w := s.weights

	torque0 := Vector3{
		X: lerp(fw.Torque.X, mc.Torque.X, w.Roll),
		Y: lerp(fw.Torque.Y, mc.Torque.Y, w.Pitch),
		Z: lerp(fw.Torque.Z, mc.Torque.Z, w.Yaw),
	}
	// thrust0 carries the rotors' vertical thrust and the pusher motor
	// together, matching fill_actuator_outputs: group 0 is rotors+pusher,
	// group 1 is always zero thrust for Standard.
	thrust0 := Vector3{X: s.pusherThrottle, Z: lerp(0, mc.Thrust.Z, w.Throttle)}
	if s.mode == FixedWing {
		thrust0.X = fw.Thrust.X
		if !s.waitingOnTecs(ctx) && s.timeSinceTransFinished(ctx) < s.params.ThrustBlendDuration {
			scale := s.timeSinceTransFinished(ctx).Seconds() / s.params.ThrustBlendDuration.Seconds()
			thrust0.X = s.blendThrottleAfterFrontTransition(scale, fw.Thrust.X)
		}
	}

	// torque1 carries the fixed-wing control surfaces (elevons); thrust1
	// is unused by Standard. When VT_ELEV_MC_LOCK is unset, the FW virtual
	// torque is passed straight to the elevon channel even in MC mode -
	// this is intentional control-surface trim, carried over from the
	// airframe this state machine was modeled on, not a bug.
	torque1 := fw.Torque
	if s.mode == RotaryWing && s.params.ElevonsLockedInMc {
		torque1 = Vector3{}
	}

	ctx.Out.PublishTorque0(torque0)
	ctx.Out.PublishThrust0(thrust0)
	ctx.Out.PublishTorque1(torque1)
	ctx.Out.PublishThrust1(Vector3{})
}

func (s *standardAirframe) HandleEkfResets(ctx Context, deltaYaw float64, posReset bool) {
	s.handleEkfResets(ctx, deltaYaw, posReset)
}

func (s *standardAirframe) WaitingOnTecs(ctx Context) bool { return s.waitingOnTecs(ctx) }

func (s *standardAirframe) BlendThrottleAfterFrontTransition(ctx Context, scale float64) {
	tecsThrottle := ctx.In.FwIn().Thrust.X
	s.pusherThrottle = s.blendThrottleAfterFrontTransition(scale, tecsThrottle)
}
