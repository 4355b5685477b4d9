// coordinator_test.go

package vtol

import "testing"

func newTestCoordinator(t *testing.T) (*Coordinator, *Parameters, *fakeInputs, *fakeOutputs, *fakeLogger) {
	t.Helper()
	p := testParams()
	in := &fakeInputs{}
	out := &fakeOutputs{}
	log := &fakeLogger{}
	c, err := NewCoordinator(Standard, p, log)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	ctx := Context{In: in, Out: out, Log: log, Now: 0, Params: p}
	if !c.Init(ctx) {
		t.Fatalf("Init failed")
	}
	return c, p, in, out, log
}

func TestNewCoordinatorRejectsUnknownAirframeKind(t *testing.T) {
	if _, err := NewCoordinator(AirframeKind(99), testParams(), nil); err == nil {
		t.Fatalf("expected error for unknown airframe kind")
	}
}

func TestVehicleCommandTemporarilyRejectedDuringAutoLand(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	in.vehicleStatus = VehicleStatus{NavState: NavStateAutoLand}
	ctx := Context{In: in, Out: out, Log: c.log, Now: 0, Params: c.airframe.(*standardAirframe).params}

	result := c.HandleVehicleCommand(ctx, VehicleCommand{
		Param1:          2,
		FromExternal:    true,
		TargetSystem:    7,
		TargetComponent: 1,
		Command:         84,
	})

	if result != AckTemporarilyRejected {
		t.Fatalf("expected TemporarilyRejected, got %v", result)
	}
	if c.transitionCommand != RequestMc {
		t.Errorf("transition_command changed on rejection: got %v", c.transitionCommand)
	}
	if len(out.acks) != 1 || out.acks[0] != (ackRecord{84, AckTemporarilyRejected, 7, 1}) {
		t.Errorf("expected one TemporarilyRejected ack to system 7 component 1, got %v", out.acks)
	}
}

func TestVehicleCommandRejectionLeavesImmediateTransitionUnchanged(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	ctx := Context{In: in, Out: out, Log: c.log, Now: 0, Params: c.airframe.(*standardAirframe).params}

	// A prior accepted command latches immediate_transition.
	c.HandleVehicleCommand(ctx, VehicleCommand{Param1: 2, Param2: 1})
	if !c.immediateTransition {
		t.Fatalf("setup: expected immediate transition set")
	}

	in.vehicleStatus = VehicleStatus{NavState: NavStateAutoLand}
	result := c.HandleVehicleCommand(ctx, VehicleCommand{Param1: 2, Param2: 0})

	if result != AckTemporarilyRejected {
		t.Fatalf("expected TemporarilyRejected, got %v", result)
	}
	if !c.immediateTransition {
		t.Errorf("expected immediate_transition left unchanged by a rejected command, got cleared")
	}
}

func TestVehicleCommandAcceptedPublishesAckOnlyForExternal(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	ctx := Context{In: in, Out: out, Log: c.log, Now: 0, Params: c.airframe.(*standardAirframe).params}

	result := c.HandleVehicleCommand(ctx, VehicleCommand{
		Param1:          2,
		FromExternal:    true,
		TargetSystem:    3,
		TargetComponent: 1,
		Command:         84,
	})
	if result != AckAccepted {
		t.Fatalf("expected Accepted, got %v", result)
	}
	if c.transitionCommand != RequestFw {
		t.Errorf("expected transition_command = REQUEST_FW, got %v", c.transitionCommand)
	}
	if len(out.acks) != 1 {
		t.Fatalf("expected exactly one ack, got %d", len(out.acks))
	}

	out.acks = nil
	c2, _, in2, out2, _ := newTestCoordinator(t)
	ctx2 := Context{In: in2, Out: out2, Log: c2.log, Now: 0, Params: c2.airframe.(*standardAirframe).params}
	c2.HandleVehicleCommand(ctx2, VehicleCommand{Param1: 2, FromExternal: false})
	if len(out2.acks) != 0 {
		t.Errorf("expected no ack for an internally-sourced command, got %v", out2.acks)
	}
}

func TestActionRequestClearsImmediateTransition(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	ctx := Context{In: in, Out: out, Log: c.log, Now: 0, Params: c.airframe.(*standardAirframe).params}
	c.HandleVehicleCommand(ctx, VehicleCommand{Param1: 2, Param2: 1})
	if !c.immediateTransition {
		t.Fatalf("setup: expected immediate transition set")
	}

	c.HandleActionRequest(ActionRequest{Transition: RequestMc})
	if c.immediateTransition {
		t.Errorf("expected immediate_transition cleared by any action request")
	}
}

func TestCoordinatorRunPublishesVtolStatus(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	ctx := Context{In: in, Out: out, Log: c.log, Now: Timestamp(minRunInterval.Microseconds() + 1), Params: c.airframe.(*standardAirframe).params}
	c.Run(ctx, StreamUpdate{McIn: true, FwIn: true})
	if out.vtolStatus.VehicleVtolState != RotaryWing {
		t.Errorf("expected RotaryWing status published, got %v", out.vtolStatus.VehicleVtolState)
	}
}

func TestCoordinatorRunDeclinesUnrelatedStreamInHover(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	ctx := Context{In: in, Out: out, Log: c.log, Now: Timestamp(minRunInterval.Microseconds() + 1), Params: c.airframe.(*standardAirframe).params}

	// Hovering (RotaryWing) consumes MC-in; an FW-in-only sample must not
	// trigger a run at all, not even to publish vtol status.
	c.Run(ctx, StreamUpdate{FwIn: true})
	if out.vtolStatus != (VtolVehicleStatus{}) {
		t.Errorf("expected no work done for an FW-in update while hovering, got %+v", out.vtolStatus)
	}

	c.Run(ctx, StreamUpdate{McIn: true})
	if out.vtolStatus.VehicleVtolState != RotaryWing {
		t.Errorf("expected the MC-in update to trigger a run while hovering")
	}
}

func TestCoordinatorRunDeclinesUnrelatedStreamInFixedWing(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	p := c.airframe.(*standardAirframe).params
	in.airspeed = Airspeed{Valid: true, CalibratedMs: 20}

	ctx0 := Context{In: in, Out: out, Log: c.log, Now: 0, Params: p}
	c.HandleActionRequest(ActionRequest{Transition: RequestFw})
	c.Run(ctx0, StreamUpdate{McIn: true, FwIn: true})
	if c.airframe.Mode() != TransitionToFw {
		t.Fatalf("setup: expected TransitionToFw, got %s", c.airframe.Mode())
	}

	// 4s later: well past MinFrontTransTime (3s) with airspeed above the
	// transition threshold (10), so the front transition completes.
	ctx1 := Context{In: in, Out: out, Log: c.log, Now: Timestamp(4_000_000), Params: p}
	c.Run(ctx1, StreamUpdate{McIn: true, FwIn: true})
	if c.airframe.Mode() != FixedWing {
		t.Fatalf("setup: expected FixedWing, got %s", c.airframe.Mode())
	}

	// Fully in FixedWing, an MC-in-only sample must not trigger a run.
	out.vtolStatus = VtolVehicleStatus{}
	ctx2 := Context{In: in, Out: out, Log: c.log, Now: Timestamp(4_000_000 + minRunInterval.Microseconds() + 1), Params: p}
	c.Run(ctx2, StreamUpdate{McIn: true})
	if out.vtolStatus != (VtolVehicleStatus{}) {
		t.Errorf("expected no work done for an MC-in update while fixed-wing, got %+v", out.vtolStatus)
	}

	c.Run(ctx2, StreamUpdate{FwIn: true})
	if out.vtolStatus.VehicleVtolState != FixedWing {
		t.Errorf("expected the FW-in update to trigger a run while fixed-wing")
	}
}

func TestCoordinatorRunHonoursSchedulingGate(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	ctx1 := Context{In: in, Out: out, Log: c.log, Now: Timestamp(3000), Params: c.airframe.(*standardAirframe).params}
	c.Run(ctx1, StreamUpdate{McIn: true, FwIn: true})

	c.HandleActionRequest(ActionRequest{Transition: RequestFw})
	ctx2 := Context{In: in, Out: out, Log: c.log, Now: Timestamp(3500), Params: c.airframe.(*standardAirframe).params}
	c.Run(ctx2, StreamUpdate{McIn: true, FwIn: true})

	if c.airframe.Mode() != RotaryWing {
		t.Errorf("expected Run to decline work inside the 2ms gate, got mode %v", c.airframe.Mode())
	}
}

func TestCoordinatorPublishesFlapsAlwaysZero(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	ctx := Context{In: in, Out: out, Log: c.log, Now: Timestamp(minRunInterval.Microseconds() + 1), Params: c.airframe.(*standardAirframe).params}
	c.Run(ctx, StreamUpdate{McIn: true, FwIn: true})
	if out.flaps != 0 {
		t.Errorf("flaps = %v, want 0", out.flaps)
	}
}

func TestCoordinatorSpoilersGatedOnAutoModeAndLanding(t *testing.T) {
	c, p, in, out, _ := newTestCoordinator(t)
	p.SpoilerMcLandDefl = 0.5
	in.positionSetpointTriplet = PositionSetpointTriplet{CurrentIsLand: true}
	in.controlMode = ControlMode{AutoModeEnabled: true}

	ctx := Context{In: in, Out: out, Log: c.log, Now: Timestamp(minRunInterval.Microseconds() + 1), Params: p}
	c.Run(ctx, StreamUpdate{McIn: true, FwIn: true})
	if out.spoilers != 0.5 {
		t.Errorf("spoilers = %v, want 0.5 while landing in auto mode", out.spoilers)
	}

	// auto mode off: no spoiler deflection even while landing.
	in.controlMode = ControlMode{AutoModeEnabled: false}
	ctx = Context{In: in, Out: out, Log: c.log, Now: Timestamp(2*minRunInterval.Microseconds() + 1), Params: p}
	c.Run(ctx, StreamUpdate{McIn: true, FwIn: true})
	if out.spoilers != 0 {
		t.Errorf("spoilers = %v, want 0 outside auto mode", out.spoilers)
	}
}

func TestCoordinatorForwardsEkfResetOnCounterEdge(t *testing.T) {
	p := tailsitterParams()
	in := &fakeInputs{attitude: Attitude{QW: 1}}
	out := &fakeOutputs{}
	log := &fakeLogger{}
	c, err := NewCoordinator(Tailsitter, p, log)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	ctx := Context{In: in, Out: out, Log: log, Now: 0, Params: p}
	if !c.Init(ctx) {
		t.Fatalf("Init failed")
	}

	c.HandleActionRequest(ActionRequest{Transition: RequestFw})
	c.Run(ctx, StreamUpdate{McIn: true, FwIn: true})
	af := c.airframe.(*tailsitterAirframe)
	if af.Mode() != TransitionToFw {
		t.Fatalf("setup: expected TransitionToFw, got %s", af.Mode())
	}
	before := af.qTransStart

	// first tick after Init establishes the reset-counter baseline; the
	// edge only fires on the tick the counter actually changes.
	in.estimatorStatus = EstimatorStatus{HeadingResetCounter: 1, HeadingResetDelta: 0.3}
	ctx2 := Context{In: in, Out: out, Log: log, Now: Timestamp(minRunInterval.Microseconds() + 1), Params: p}
	c.Run(ctx2, StreamUpdate{McIn: true, FwIn: true})

	if af.qTransStart == before {
		t.Errorf("expected q_trans_start rotated by the EKF heading reset, got unchanged %+v", af.qTransStart)
	}
}

func TestCoordinatorRtlAbortPoll(t *testing.T) {
	c, _, in, out, _ := newTestCoordinator(t)
	p := c.airframe.(*standardAirframe).params

	ctx := Context{In: in, Out: out, Log: c.log, Now: 0, Params: p}
	c.HandleActionRequest(ActionRequest{Transition: RequestFw})
	c.Run(ctx, StreamUpdate{McIn: true, FwIn: true})
	if c.airframe.Mode() != TransitionToFw {
		t.Fatalf("setup: expected TransitionToFw, got %s", c.airframe.Mode())
	}

	in.vehicleStatus = VehicleStatus{NavState: NavStateAutoRtl}
	ctx2 := Context{In: in, Out: out, Log: c.log, Now: Timestamp(minRunInterval.Microseconds() + 1), Params: p}
	c.Run(ctx2, StreamUpdate{McIn: true, FwIn: true})

	if c.airframe.Mode() != TransitionToMc {
		t.Errorf("expected RTL abort to revert to TransitionToMc, got %s", c.airframe.Mode())
	}
}
