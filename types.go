// types.go

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

import "fmt"

// AirframeKind selects which transition state machine and mixing policy
// the coordinator runs. It is read once at startup and never changes.
type AirframeKind int

// Airframe kinds, matching the VT_TYPE parameter encoding.
const (
	Standard AirframeKind = iota + 1
	Tailsitter
	Tiltrotor
)

func (k AirframeKind) String() string {
	switch k {
	case Standard:
		return "STANDARD"
	case Tailsitter:
		return "TAILSITTER"
	case Tiltrotor:
		return "TILTROTOR"
	default:
		return fmt.Sprintf("AirframeKind(%d)", int(k))
	}
}

// CommonMode is the observable VTOL mode exported to the rest of the
// system, common across all airframe families.
type CommonMode int

// Common modes.
const (
	RotaryWing CommonMode = iota
	FixedWing
	TransitionToFw
	TransitionToMc
)

func (m CommonMode) String() string {
	switch m {
	case RotaryWing:
		return "ROTARY_WING"
	case FixedWing:
		return "FIXED_WING"
	case TransitionToFw:
		return "TRANSITION_TO_FW"
	case TransitionToMc:
		return "TRANSITION_TO_MC"
	default:
		return fmt.Sprintf("CommonMode(%d)", int(m))
	}
}

// TransitionCommand is the pilot/autopilot-requested target regime.
type TransitionCommand int

// Transition commands.
const (
	RequestMc TransitionCommand = iota
	RequestFw
)

func (c TransitionCommand) String() string {
	if c == RequestFw {
		return "REQUEST_FW"
	}
	return "REQUEST_MC"
}

// NavState is the subset of the autopilot's navigation state machine the
// coordinator needs to know about - enough to reject a transition command
// or detect an RTL abort edge.
type NavState int

// Navigation states relevant to the coordinator.
const (
	NavStateOther NavState = iota
	NavStateAutoTakeoff
	NavStateAutoLand
	NavStateAutoRtl
	NavStateOrbit
	NavStateDescend
)

// AckResult mirrors the vehicle_command_ack result codes the coordinator
// can produce for DO_VTOL_TRANSITION.
type AckResult int

// Ack results.
const (
	AckAccepted AckResult = iota
	AckTemporarilyRejected
)

// Vector3 is a minimal body-frame torque or thrust triple. Only the axes
// the coordinator actually mixes are named; unused components stay zero.
type Vector3 struct {
	X, Y, Z float64
}

// TorqueThrust bundles one virtual control stream's torque and thrust.
type TorqueThrust struct {
	Torque Vector3
	Thrust Vector3
}

// AttitudeSetpoint is a minimal virtual attitude setpoint: an orientation
// quaternion (w, x, y, z) plus the body-x thrust channel TECS/pushers
// write into.
type AttitudeSetpoint struct {
	QW, QX, QY, QZ float64
	ThrustBody     Vector3
	Timestamp      Timestamp
}

// Weights are the four blending scalars applied to multirotor torque and
// thrust during a transition. Each is in [0, 1]: 1 means full multirotor
// authority (hover), 0 means none (forward flight).
type Weights struct {
	Roll, Pitch, Yaw, Throttle float64
}

// Full returns the all-ones hover weight set.
func Full() Weights { return Weights{1, 1, 1, 1} }

// Zero returns the all-zero forward-flight weight set.
func Zero() Weights { return Weights{} }

// Clamp returns a copy of w with every axis constrained to [0, 1]; w
// itself is not modified.
func (w Weights) Clamp() Weights {
	return Weights{
		Roll:     clamp(w.Roll, 0, 1),
		Pitch:    clamp(w.Pitch, 0, 1),
		Yaw:      clamp(w.Yaw, 0, 1),
		Throttle: clamp(w.Throttle, 0, 1),
	}
}

// Uniform builds a Weights with all four axes set to the same scalar,
// clamped to [0, 1].
func Uniform(v float64) Weights {
	v = clamp(v, 0, 1)
	return Weights{v, v, v, v}
}

// VtolVehicleStatus is the ground-truth published record other modules
// observe state transitions through.
type VtolVehicleStatus struct {
	VehicleVtolState     CommonMode
	FixedWingSysFailure  bool
	Timestamp            Timestamp
}

// TiltrotorExtras is the auxiliary publication carrying tiltrotor-only
// actuator state that doesn't fit the generic torque/thrust channels.
type TiltrotorExtras struct {
	TiltControl      float64
	RearMotorsEnabled bool
	Timestamp        Timestamp
}
