// airframe.go

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

// VehicleStatus carries the subset of vehicle_status the coordinator
// reacts to.
type VehicleStatus struct {
	NavState NavState
}

// ControlMode carries the flags the transition math needs from
// vehicle_control_mode.
type ControlMode struct {
	ClimbRateEnabled bool
	AutoModeEnabled  bool
}

// Attitude is the estimator's current attitude.
type Attitude struct {
	QW, QX, QY, QZ float64
	Timestamp      Timestamp
}

// Euler returns the roll, pitch, yaw of the attitude in radians.
func (a Attitude) Euler() (roll, pitch, yaw float64) {
	return quat{a.QW, a.QX, a.QY, a.QZ}.toEuler()
}

// LocalPosition is the subset of vehicle_local_position used by the speed
// and altitude predicates.
type LocalPosition struct {
	VXYValid   bool
	Vx, Vy, Vz float64 // NED velocity, m/s
	Z          float64 // NED down position, m (altitude is -Z)
	DistBottom float64
	Timestamp  Timestamp
}

// Altitude returns the vehicle's altitude above the local origin.
func (l LocalPosition) Altitude() float64 { return -l.Z }

// PositionSetpointTriplet carries just enough of the active mission
// triplet to drive the spoiler-during-landing rule.
type PositionSetpointTriplet struct {
	CurrentIsLand bool
}

// Airspeed is the validated airspeed estimate.
type Airspeed struct {
	Valid       bool
	CalibratedMs float64
}

// TecsStatus mirrors the fields the base airframe consults to decide
// whether it must keep waiting on TECS output before blending throttle.
type TecsStatus struct {
	Timestamp Timestamp
}

// LandDetected mirrors vehicle_land_detected.
type LandDetected struct {
	OnGround bool
}

// AirData mirrors vehicle_air_data (unused by the core math today, kept
// so airframes can consult it without widening the Inputs interface
// later).
type AirData struct {
	BaroAltMeters float64
}

// HomePosition mirrors home_position.
type HomePosition struct {
	Valid bool
	Z     float64
}

// EstimatorStatus carries the reset counters the coordinator watches for
// edges to detect an EKF yaw or position reset. A counter changing between
// two ticks means exactly one reset occurred; the counters themselves are
// otherwise meaningless.
type EstimatorStatus struct {
	HeadingResetCounter  uint8
	HeadingResetDelta    float64 // rad, valid only on the tick HeadingResetCounter changes
	PositionResetCounter uint8
}

// Inputs is the coordinator's read-only view of the latest sampled data,
// handed to the active airframe once per tick. Implementations must
// return the most recently published sample without blocking.
type Inputs interface {
	VehicleStatus() VehicleStatus
	ControlMode() ControlMode
	Attitude() Attitude
	LocalPosition() LocalPosition
	PositionSetpointTriplet() PositionSetpointTriplet
	Airspeed() Airspeed
	TecsStatus() TecsStatus
	LandDetected() LandDetected
	AirData() AirData
	HomePosition() HomePosition
	EstimatorStatus() EstimatorStatus

	McIn() TorqueThrust
	FwIn() TorqueThrust
	McAttSpIn() AttitudeSetpoint
	FwAttSpIn() AttitudeSetpoint
}

// Outputs is the coordinator's write-only view of the physical setpoints
// and status topics. Implementations must publish without blocking.
type Outputs interface {
	PublishTorque0(Vector3)
	PublishTorque1(Vector3)
	PublishThrust0(Vector3)
	PublishThrust1(Vector3)
	PublishAttitudeSetpoint(AttitudeSetpoint)
	PublishVtolStatus(VtolVehicleStatus)
	PublishFlaps(float64)
	PublishSpoilers(float64)
	PublishTiltrotorExtras(TiltrotorExtras)
	PublishCommandAck(command uint16, result AckResult, targetSystem, targetComponent uint8)
}

// Context bundles one tick's Inputs and Outputs together with the current
// monotonic clock reading. Airframes receive a Context by value on every call
// instead of holding a stored reference back to the coordinator, per the
// borrowed-reference lifetime rule: the context is only valid for the
// duration of the call that received it.
type Context struct {
	In     Inputs
	Out    Outputs
	Log    Logger
	Now    Timestamp
	Params *Parameters
}

// Airframe is the capability set every airframe family implements. The
// coordinator owns exactly one Airframe for its lifetime; it is never
// shared or reassigned.
type Airframe interface {
	// Init performs one-shot initialization. It reports false if
	// initialization cannot succeed, in which case the coordinator must
	// not proceed to Run.
	Init(ctx Context) bool

	// ParametersUpdate recomputes any derived parameters and clamps
	// cross-parameter invariants. Called whenever the parameter store
	// changes; never touches in-flight state-machine fields.
	ParametersUpdate(ctx Context)

	// UpdateVtolState advances the per-airframe transition state
	// machine by at most one step.
	UpdateVtolState(ctx Context, cmd CommandState)

	// UpdateTransitionState performs the shared and airframe-specific
	// housekeeping for whichever transition state is currently active.
	// It is a no-op outside a transition.
	UpdateTransitionState(ctx Context)

	// UpdateMcState performs pure passthrough plus any pusher-assist
	// computation while in hover.
	UpdateMcState(ctx Context)

	// UpdateFwState performs pure passthrough while in forward flight.
	UpdateFwState(ctx Context)

	// FillActuatorOutputs writes the four physical setpoints and any
	// airframe-specific auxiliary publication from the two virtual
	// control streams.
	FillActuatorOutputs(ctx Context)

	// HandleEkfResets re-expresses stored setpoints after a detected
	// yaw or position reset so the controller does not see a jump.
	HandleEkfResets(ctx Context, deltaYaw float64, posReset bool)

	// Mode returns the current common (cross-airframe) mode.
	Mode() CommonMode

	// FixedWingFailure reports whether a quadchute has latched the
	// fixed-wing-system-failure flag. It clears only when a fresh
	// transition-to-FW command is accepted.
	FixedWingFailure() bool

	// WaitingOnTecs reports whether the airframe still needs to hold
	// last-known thrust rather than accept a fresh TECS output.
	WaitingOnTecs(ctx Context) bool

	// BlendThrottleAfterFrontTransition scales between the pusher/tilt
	// throttle and the freshly available TECS throttle during the
	// short post-transition blending window.
	BlendThrottleAfterFrontTransition(ctx Context, scale float64)
}

// CommandState is the coordinator-owned command surface an airframe reads
// (never writes) on each UpdateVtolState call.
type CommandState struct {
	Transition         TransitionCommand
	ImmediateTransition bool
}

// NewAirframe constructs the airframe implementation for kind, or an
// error if kind is not one of the known values. VT_TYPE is validated
// once at startup; an unknown kind is a configuration-fatal error per
// the error taxonomy.
func NewAirframe(kind AirframeKind, params *Parameters) (Airframe, error) {
	switch kind {
	case Standard:
		return newStandardAirframe(params), nil
	case Tailsitter:
		return newTailsitterAirframe(params), nil
	case Tiltrotor:
		return newTiltrotorAirframe(params), nil
	default:
		return nil, fmt.Errorf("vtol: unknown airframe kind %d", int(kind))
	}
}
