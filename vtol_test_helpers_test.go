// vtol_test_helpers_test.go

package vtol

import "time"

// fakeInputs is a directly-settable Inputs implementation for tests: no
// concurrency, no bus, just plain fields a test can assign before calling
// into the airframe or coordinator under test.
type fakeInputs struct {
	vehicleStatus           VehicleStatus
	controlMode             ControlMode
	attitude                Attitude
	localPosition           LocalPosition
	positionSetpointTriplet PositionSetpointTriplet
	airspeed                Airspeed
	tecsStatus              TecsStatus
	landDetected            LandDetected
	airData                 AirData
	homePosition            HomePosition
	estimatorStatus         EstimatorStatus

	mcIn      TorqueThrust
	fwIn      TorqueThrust
	mcAttSpIn AttitudeSetpoint
	fwAttSpIn AttitudeSetpoint
}

func (f *fakeInputs) VehicleStatus() VehicleStatus                     { return f.vehicleStatus }
func (f *fakeInputs) ControlMode() ControlMode                         { return f.controlMode }
func (f *fakeInputs) Attitude() Attitude                               { return f.attitude }
func (f *fakeInputs) LocalPosition() LocalPosition                     { return f.localPosition }
func (f *fakeInputs) PositionSetpointTriplet() PositionSetpointTriplet { return f.positionSetpointTriplet }
func (f *fakeInputs) Airspeed() Airspeed                               { return f.airspeed }
func (f *fakeInputs) TecsStatus() TecsStatus                           { return f.tecsStatus }
func (f *fakeInputs) LandDetected() LandDetected                       { return f.landDetected }
func (f *fakeInputs) AirData() AirData                                 { return f.airData }
func (f *fakeInputs) HomePosition() HomePosition                       { return f.homePosition }
func (f *fakeInputs) EstimatorStatus() EstimatorStatus                 { return f.estimatorStatus }
func (f *fakeInputs) McIn() TorqueThrust                               { return f.mcIn }
func (f *fakeInputs) FwIn() TorqueThrust                               { return f.fwIn }
func (f *fakeInputs) McAttSpIn() AttitudeSetpoint                      { return f.mcAttSpIn }
func (f *fakeInputs) FwAttSpIn() AttitudeSetpoint                      { return f.fwAttSpIn }

// fakeOutputs records the most recent value published to each channel, and
// every command ack in publication order. Critical log lines are recorded
// by fakeLogger, not here.
type fakeOutputs struct {
	torque0, torque1 Vector3
	thrust0, thrust1 Vector3
	attitudeSp       AttitudeSetpoint
	vtolStatus       VtolVehicleStatus
	flaps, spoilers  float64
	tiltrotor        TiltrotorExtras

	acks []ackRecord
}

type ackRecord struct {
	command         uint16
	result          AckResult
	targetSystem    uint8
	targetComponent uint8
}

func (o *fakeOutputs) PublishTorque0(v Vector3)            { o.torque0 = v }
func (o *fakeOutputs) PublishTorque1(v Vector3)            { o.torque1 = v }
func (o *fakeOutputs) PublishThrust0(v Vector3)            { o.thrust0 = v }
func (o *fakeOutputs) PublishThrust1(v Vector3)            { o.thrust1 = v }
func (o *fakeOutputs) PublishAttitudeSetpoint(sp AttitudeSetpoint) { o.attitudeSp = sp }
func (o *fakeOutputs) PublishVtolStatus(s VtolVehicleStatus)       { o.vtolStatus = s }
func (o *fakeOutputs) PublishFlaps(v float64)                      { o.flaps = v }
func (o *fakeOutputs) PublishSpoilers(v float64)                   { o.spoilers = v }
func (o *fakeOutputs) PublishTiltrotorExtras(e TiltrotorExtras)    { o.tiltrotor = e }
func (o *fakeOutputs) PublishCommandAck(command uint16, result AckResult, targetSystem, targetComponent uint8) {
	o.acks = append(o.acks, ackRecord{command, result, targetSystem, targetComponent})
}

// fakeLogger records critical firings for assertions instead of writing to
// stderr.
type fakeLogger struct {
	criticals []string
}

func (l *fakeLogger) Printf(format string, v ...any) {}
func (l *fakeLogger) Criticalf(id, format string, v ...any) {
	l.criticals = append(l.criticals, id)
}

// testParams returns a Parameters set matching the scenario table in the
// coordinator's own worked examples: blend=8, transition=10, min_time=3s,
// slew=0.5/s, target_thr=0.7.
func testParams() *Parameters {
	p := &Parameters{
		VtolType:            Standard,
		FrontTransThrottle:  0.7,
		PusherSlewRate:      0.5,
		BlendAirspeed:       8,
		TransitionAirspeed:  10,
		MinFrontTransTime:   secondsDur(3),
		OpenLoopTransDur:    secondsDur(15),
		BackTransDuration:   secondsDur(6),
		BackTransRampTime:   secondsDur(3),
		CruiseSpeed:         5,
		ThrustBlendDuration: DefaultThrustBlendDuration,
	}
	p.clampCrossParameters()
	return p
}

func secondsDur(s float64) (d time.Duration) {
	return time.Duration(s * float64(time.Second))
}
