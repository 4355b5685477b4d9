// coordinator.go

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

// minRunInterval is the scheduling gate: the coordinator declines to do
// real work more often than this, guarding against a caller driving Run
// faster than the control loop was designed for.
const minRunInterval = 2 * time.Millisecond

// StreamUpdate flags which virtual control streams produced a fresh sample
// on this tick, so Run can decide whether it should do any work at all
// before it decides how often. A hover-mode tick driven only by a
// fixed-wing sample (and vice versa) is not actionable and must not run
// the state machine.
type StreamUpdate struct {
	McIn bool
	FwIn bool
}

// shouldRun reports whether the stream(s) that fired are the ones the
// current common mode actually consumes: MC-in in hover, FW-in in forward
// flight, either one mid-transition.
func (c *Coordinator) shouldRun(updated StreamUpdate) bool {
	switch c.airframe.Mode() {
	case RotaryWing:
		return updated.McIn
	case FixedWing:
		return updated.FwIn
	default:
		return updated.McIn || updated.FwIn
	}
}

// VehicleCommand is an autopilot-issued DO_VTOL_TRANSITION request.
type VehicleCommand struct {
	Param1          float64 // 2 = FW, 3 = MC
	Param2          float64 // truthy = immediate, skip the minimum-time gate
	FromExternal    bool
	TargetSystem    uint8
	TargetComponent uint8
	Command         uint16
}

// ActionRequest is a pilot stick/switch transition request, carrying no
// source-tracking fields because it never produces an ack.
type ActionRequest struct {
	Transition TransitionCommand
}

// Coordinator owns exactly one Airframe for its lifetime and drives it
// through the command intake, quadchute checks, and publication fan-out
// described by the capability set every airframe implements. It performs
// no I/O of its own; Inputs and Outputs are supplied by the caller.
type Coordinator struct {
	airframe Airframe
	log      Logger

	transitionCommand   TransitionCommand
	immediateTransition bool

	lastRunTS Timestamp
	prevNav   NavState
	haveNav   bool

	prevHeadingResetCounter  uint8
	prevPositionResetCounter uint8
	haveEstimatorStatus      bool
}

// NewCoordinator builds a Coordinator around the given airframe kind and
// parameter set. It returns an error if the airframe cannot be
// constructed (unknown VT_TYPE); one-shot initialization is not run here
// but by Init.
func NewCoordinator(kind AirframeKind, params *Parameters, log Logger) (*Coordinator, error) {
	af, err := NewAirframe(kind, params)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = NewStdLogger(nil)
	}
	c := &Coordinator{
		airframe:          af,
		log:               log,
		transitionCommand: RequestMc,
	}
	return c, nil
}

// Airframe returns the coordinator's active airframe, mainly for tests
// that need to assert on its concrete mode.
func (c *Coordinator) Airframe() Airframe { return c.airframe }

// Init runs the airframe's one-shot initialization. It must be called
// once, before the first Run, with a Context whose Now and Params are
// already valid.
func (c *Coordinator) Init(ctx Context) bool {
	return c.airframe.Init(ctx)
}

// ParametersUpdate forwards a parameter-store change to the active
// airframe. It never touches in-flight transition state; only the next
// Run's computations see the new values.
func (c *Coordinator) ParametersUpdate(ctx Context) {
	c.airframe.ParametersUpdate(ctx)
}

// HandleActionRequest records a pilot transition request for the next
// Run. Per the reference stack, receiving any action request - whether it
// ultimately drives toward FW or MC - clears a previously latched
// immediate-transition flag unconditionally.
func (c *Coordinator) HandleActionRequest(req ActionRequest) {
	c.transitionCommand = req.Transition
	c.immediateTransition = false
}

// HandleVehicleCommand processes a DO_VTOL_TRANSITION command, returning
// the ack result to publish. The command is rejected as temporarily
// unavailable when requesting FW while the nav state is one of
// {AUTO_TAKEOFF, AUTO_LAND, AUTO_RTL, ORBIT}; on rejection neither
// transitionCommand nor immediateTransition is touched, leaving state
// exactly as it was before the command arrived. The ack, accepted or
// rejected, is published here, and only when cmd.FromExternal is true.
func (c *Coordinator) HandleVehicleCommand(ctx Context, cmd VehicleCommand) AckResult {
	requestFw := cmd.Param1 == 2
	requestMc := cmd.Param1 == 3
	if !requestFw && !requestMc {
		return AckAccepted
	}

	if requestFw {
		switch ctx.In.VehicleStatus().NavState {
		case NavStateAutoTakeoff, NavStateAutoLand, NavStateAutoRtl, NavStateOrbit:
			if cmd.FromExternal {
				ctx.Out.PublishCommandAck(cmd.Command, AckTemporarilyRejected, cmd.TargetSystem, cmd.TargetComponent)
			}
			return AckTemporarilyRejected
		}
		c.transitionCommand = RequestFw
	} else {
		c.transitionCommand = RequestMc
	}
	c.immediateTransition = cmd.Param2 != 0

	if cmd.FromExternal {
		ctx.Out.PublishCommandAck(cmd.Command, AckAccepted, cmd.TargetSystem, cmd.TargetComponent)
	}
	return AckAccepted
}

// pollRtlAbort detects the nav-state edge into AUTO_RTL and, if the
// airframe is mid front-transition, reverts the commanded target to MC so
// the next UpdateVtolState call aborts toward hover. The edge is
// re-triggerable: re-entering AUTO_RTL after leaving it fires again.
func (c *Coordinator) pollRtlAbort(ctx Context) {
	nav := ctx.In.VehicleStatus().NavState
	defer func() { c.prevNav = nav; c.haveNav = true }()

	if !c.haveNav || nav == c.prevNav {
		return
	}
	if nav == NavStateAutoRtl && c.airframe.Mode() == TransitionToFw {
		c.transitionCommand = RequestMc
	}
}

// pollEkfResets detects an edge in either estimator reset counter and
// forwards it to the airframe as HandleEkfResets, mirroring the reference
// stack's unconditional per-cycle call: every airframe needs the chance to
// re-express any stored setpoint before it is used this tick.
func (c *Coordinator) pollEkfResets(ctx Context) {
	est := ctx.In.EstimatorStatus()
	defer func() {
		c.prevHeadingResetCounter = est.HeadingResetCounter
		c.prevPositionResetCounter = est.PositionResetCounter
		c.haveEstimatorStatus = true
	}()

	if !c.haveEstimatorStatus {
		return
	}

	deltaYaw := 0.0
	if est.HeadingResetCounter != c.prevHeadingResetCounter {
		deltaYaw = est.HeadingResetDelta
	}
	posReset := est.PositionResetCounter != c.prevPositionResetCounter
	if deltaYaw != 0 || posReset {
		c.airframe.HandleEkfResets(ctx, deltaYaw, posReset)
	}
}

// publishAuxOutputs fans out the flap and spoiler setpoints spec.md
// requires alongside the four physical actuator setpoints: flaps are
// always zero (no airframe in this coordinator drives them), and spoilers
// deploy only when auto mode is engaged, the airframe is not fixed-wing,
// and the active or commanded phase of flight is a landing.
func (c *Coordinator) publishAuxOutputs(ctx Context) {
	ctx.Out.PublishFlaps(0)

	triplet := ctx.In.PositionSetpointTriplet()
	navState := ctx.In.VehicleStatus().NavState
	landing := triplet.CurrentIsLand || navState == NavStateDescend
	autoMode := ctx.In.ControlMode().AutoModeEnabled

	if landing && autoMode && c.airframe.Mode() != FixedWing {
		ctx.Out.PublishSpoilers(ctx.Params.SpoilerMcLandDefl)
		return
	}
	ctx.Out.PublishSpoilers(0)
}

// Run advances the coordinator by one tick. updated tells it which virtual
// control streams produced a fresh sample this call; Run first checks that
// against shouldRun (a hover-mode tick with no fresh MC-in sample, or a
// forward-flight tick with no fresh FW-in sample, does nothing) and only
// then enforces the scheduling gate (declining to do real work more often
// than minRunInterval). It updates the shared and airframe-specific
// transition state and publishes the physical actuator outputs. Callers
// are expected to invoke Run from a single goroutine; Run performs no
// synchronization of its own.
func (c *Coordinator) Run(ctx Context, updated StreamUpdate) {
	if !c.shouldRun(updated) {
		return
	}
	if c.lastRunTS != 0 && ctx.Now.Sub(c.lastRunTS) < minRunInterval {
		return
	}
	c.lastRunTS = ctx.Now

	c.pollRtlAbort(ctx)
	c.pollEkfResets(ctx)

	cmd := CommandState{
		Transition:          c.transitionCommand,
		ImmediateTransition: c.immediateTransition,
	}
	c.airframe.UpdateVtolState(ctx, cmd)
	c.airframe.UpdateTransitionState(ctx)

	switch c.airframe.Mode() {
	case RotaryWing, TransitionToMc:
		c.airframe.UpdateMcState(ctx)
	case FixedWing, TransitionToFw:
		c.airframe.UpdateFwState(ctx)
	}

	c.airframe.FillActuatorOutputs(ctx)
	c.publishAuxOutputs(ctx)

	ctx.Out.PublishVtolStatus(VtolVehicleStatus{
		VehicleVtolState:    c.airframe.Mode(),
		FixedWingSysFailure: c.airframe.FixedWingFailure(),
		Timestamp:           ctx.Now,
	})
}
