// tailsitter_test.go

package vtol

import "testing"

func tailsitterParams() *Parameters {
	p := &Parameters{
		VtolType:           Tailsitter,
		MinFrontTransTime:  secondsDur(2),
		BackTransDuration:  secondsDur(2),
		BlendAirspeed:      8,
		TransitionAirspeed: 10,
		OpenLoopTransDur:   secondsDur(15),
	}
	p.clampCrossParameters()
	return p
}

func TestTailsitterFrontTransitionCompletesOnPitchAndTime(t *testing.T) {
	p := tailsitterParams()
	af := newTailsitterAirframe(p)
	in := &fakeInputs{attitude: Attitude{QW: 1}}
	out := &fakeOutputs{}
	log := &fakeLogger{}

	now := Timestamp(0)
	ctx := Context{In: in, Out: out, Log: log, Now: now, Params: p}
	af.Init(ctx)
	af.UpdateVtolState(ctx, CommandState{Transition: RequestFw})
	if af.Mode() != TransitionToFw {
		t.Fatalf("expected TransitionToFw, got %s", af.Mode())
	}
	af.UpdateTransitionState(ctx)
	if af.enteredTransition {
		t.Errorf("expected enteredTransition cleared after first UpdateTransitionState call")
	}

	// pitch has not yet crossed the threshold: no completion, even past
	// the minimum time.
	now = now.Add(secondsDur(3))
	q := quatFromEuler(0, -0.5, 0)
	in.attitude = Attitude{QW: q.W, QX: q.X, QY: q.Y, QZ: q.Z}
	ctx = Context{In: in, Out: out, Log: log, Now: now, Params: p}
	af.UpdateVtolState(ctx, CommandState{Transition: RequestFw})
	if af.Mode() != TransitionToFw {
		t.Fatalf("expected still TransitionToFw before pitch threshold, got %s", af.Mode())
	}

	// pitch crosses -1.05 rad and minimum time has elapsed.
	q = quatFromEuler(0, -1.2, 0)
	in.attitude = Attitude{QW: q.W, QX: q.X, QY: q.Y, QZ: q.Z}
	ctx = Context{In: in, Out: out, Log: log, Now: now, Params: p}
	af.UpdateVtolState(ctx, CommandState{Transition: RequestFw})
	if af.Mode() != FixedWing {
		t.Fatalf("expected FixedWing once pitch below threshold and min time elapsed, got %s", af.Mode())
	}
}

func TestTailsitterSlerpTargetCapturedOnce(t *testing.T) {
	p := tailsitterParams()
	af := newTailsitterAirframe(p)
	in := &fakeInputs{attitude: Attitude{QW: 1}}
	out := &fakeOutputs{}
	log := &fakeLogger{}

	ctx := Context{In: in, Out: out, Log: log, Now: 0, Params: p}
	af.Init(ctx)
	af.UpdateVtolState(ctx, CommandState{Transition: RequestFw})
	af.UpdateTransitionState(ctx)

	capturedSp := af.qTransSp

	// even if attitude drifts on a later tick, q_trans_sp must not be
	// recaptured mid-transition.
	in.attitude = Attitude{QW: 0.9, QX: 0.1, QY: 0.2, QZ: 0.3}
	ctx = Context{In: in, Out: out, Log: log, Now: Timestamp(500000), Params: p}
	af.UpdateTransitionState(ctx)

	if af.qTransSp != capturedSp {
		t.Errorf("q_trans_sp changed mid-transition: got %+v, want %+v", af.qTransSp, capturedSp)
	}
}

func TestTailsitterFwTorquePassesThroughForPassiveDamping(t *testing.T) {
	p := tailsitterParams()
	af := newTailsitterAirframe(p)
	in := &fakeInputs{fwIn: TorqueThrust{Torque: Vector3{X: 0.1, Y: 0.2, Z: 0.3}}}
	out := &fakeOutputs{}
	log := &fakeLogger{}
	ctx := Context{In: in, Out: out, Log: log, Now: 0, Params: p}
	af.Init(ctx)

	af.FillActuatorOutputs(ctx)

	if out.torque1 != in.fwIn.Torque {
		t.Errorf("torque1 = %+v, want FW virtual torque passed through for passive damping (%+v)", out.torque1, in.fwIn.Torque)
	}
}
