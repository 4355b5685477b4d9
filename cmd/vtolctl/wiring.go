// wiring.go

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

package main

import (
	"github.com/vtolctl/vtolctl"
	"github.com/vtolctl/vtolctl/bus"
)

// busInputs adapts a fixed set of named bus topics to vtol.Inputs. Every
// method is a non-blocking Get against the underlying topic; a topic that
// has never been published to yields the zero value for its type, which
// for every input here is a safe "nothing known yet" reading.
type busInputs struct {
	vehicleStatus           *bus.Topic[vtol.VehicleStatus]
	controlMode             *bus.Topic[vtol.ControlMode]
	attitude                *bus.Topic[vtol.Attitude]
	localPosition           *bus.Topic[vtol.LocalPosition]
	positionSetpointTriplet *bus.Topic[vtol.PositionSetpointTriplet]
	airspeed                *bus.Topic[vtol.Airspeed]
	tecsStatus              *bus.Topic[vtol.TecsStatus]
	landDetected            *bus.Topic[vtol.LandDetected]
	airData                 *bus.Topic[vtol.AirData]
	homePosition            *bus.Topic[vtol.HomePosition]
	estimatorStatus         *bus.Topic[vtol.EstimatorStatus]

	mcIn      *bus.Topic[vtol.TorqueThrust]
	fwIn      *bus.Topic[vtol.TorqueThrust]
	mcAttSpIn *bus.Topic[vtol.AttitudeSetpoint]
	fwAttSpIn *bus.Topic[vtol.AttitudeSetpoint]
}

func newBusInputs(b *bus.Bus) *busInputs {
	return &busInputs{
		vehicleStatus:           bus.For[vtol.VehicleStatus](b, "vehicle_status"),
		controlMode:             bus.For[vtol.ControlMode](b, "vehicle_control_mode"),
		attitude:                bus.For[vtol.Attitude](b, "vehicle_attitude"),
		localPosition:           bus.For[vtol.LocalPosition](b, "vehicle_local_position"),
		positionSetpointTriplet: bus.For[vtol.PositionSetpointTriplet](b, "position_setpoint_triplet"),
		airspeed:                bus.For[vtol.Airspeed](b, "airspeed_validated"),
		tecsStatus:              bus.For[vtol.TecsStatus](b, "tecs_status"),
		landDetected:            bus.For[vtol.LandDetected](b, "vehicle_land_detected"),
		airData:                 bus.For[vtol.AirData](b, "vehicle_air_data"),
		homePosition:            bus.For[vtol.HomePosition](b, "home_position"),
		estimatorStatus:         bus.For[vtol.EstimatorStatus](b, "estimator_status"),
		mcIn:                    bus.For[vtol.TorqueThrust](b, "mc_virtual_torque_thrust"),
		fwIn:                    bus.For[vtol.TorqueThrust](b, "fw_virtual_torque_thrust"),
		mcAttSpIn:               bus.For[vtol.AttitudeSetpoint](b, "mc_virtual_attitude_setpoint"),
		fwAttSpIn:               bus.For[vtol.AttitudeSetpoint](b, "fw_virtual_attitude_setpoint"),
	}
}

func (i *busInputs) VehicleStatus() vtol.VehicleStatus {
	v, _, _ := i.vehicleStatus.Get()
	return v
}
func (i *busInputs) ControlMode() vtol.ControlMode {
	v, _, _ := i.controlMode.Get()
	return v
}
func (i *busInputs) Attitude() vtol.Attitude {
	v, _, _ := i.attitude.Get()
	return v
}
func (i *busInputs) LocalPosition() vtol.LocalPosition {
	v, _, _ := i.localPosition.Get()
	return v
}
func (i *busInputs) PositionSetpointTriplet() vtol.PositionSetpointTriplet {
	v, _, _ := i.positionSetpointTriplet.Get()
	return v
}
func (i *busInputs) Airspeed() vtol.Airspeed {
	v, _, _ := i.airspeed.Get()
	return v
}
func (i *busInputs) TecsStatus() vtol.TecsStatus {
	v, _, _ := i.tecsStatus.Get()
	return v
}
func (i *busInputs) LandDetected() vtol.LandDetected {
	v, _, _ := i.landDetected.Get()
	return v
}
func (i *busInputs) AirData() vtol.AirData {
	v, _, _ := i.airData.Get()
	return v
}
func (i *busInputs) HomePosition() vtol.HomePosition {
	v, _, _ := i.homePosition.Get()
	return v
}
func (i *busInputs) EstimatorStatus() vtol.EstimatorStatus {
	v, _, _ := i.estimatorStatus.Get()
	return v
}
func (i *busInputs) McIn() vtol.TorqueThrust {
	v, _, _ := i.mcIn.Get()
	return v
}
func (i *busInputs) FwIn() vtol.TorqueThrust {
	v, _, _ := i.fwIn.Get()
	return v
}
func (i *busInputs) McAttSpIn() vtol.AttitudeSetpoint {
	v, _, _ := i.mcAttSpIn.Get()
	return v
}
func (i *busInputs) FwAttSpIn() vtol.AttitudeSetpoint {
	v, _, _ := i.fwAttSpIn.Get()
	return v
}

// busOutputs adapts the same registry to vtol.Outputs.
type busOutputs struct {
	torque0     *bus.Topic[vtol.Vector3]
	torque1     *bus.Topic[vtol.Vector3]
	thrust0     *bus.Topic[vtol.Vector3]
	thrust1     *bus.Topic[vtol.Vector3]
	attitudeSp  *bus.Topic[vtol.AttitudeSetpoint]
	vtolStatus  *bus.Topic[vtol.VtolVehicleStatus]
	flaps       *bus.Topic[float64]
	spoilers    *bus.Topic[float64]
	tiltrotor   *bus.Topic[vtol.TiltrotorExtras]
	commandAcks *bus.Topic[CommandAck]
}

// CommandAck is the outbound record for a DO_VTOL_TRANSITION result.
type CommandAck struct {
	Command         uint16
	Result          vtol.AckResult
	TargetSystem    uint8
	TargetComponent uint8
}

func newBusOutputs(b *bus.Bus) *busOutputs {
	return &busOutputs{
		torque0:     bus.For[vtol.Vector3](b, "actuator_torque_0"),
		torque1:     bus.For[vtol.Vector3](b, "actuator_torque_1"),
		thrust0:     bus.For[vtol.Vector3](b, "actuator_thrust_0"),
		thrust1:     bus.For[vtol.Vector3](b, "actuator_thrust_1"),
		attitudeSp:  bus.For[vtol.AttitudeSetpoint](b, "vehicle_attitude_setpoint"),
		vtolStatus:  bus.For[vtol.VtolVehicleStatus](b, "vehicle_vtol_status"),
		flaps:       bus.For[float64](b, "flaps_setpoint"),
		spoilers:    bus.For[float64](b, "spoilers_setpoint"),
		tiltrotor:   bus.For[vtol.TiltrotorExtras](b, "tiltrotor_extras"),
		commandAcks: bus.For[CommandAck](b, "vehicle_command_ack"),
	}
}

func (o *busOutputs) PublishTorque0(v vtol.Vector3) { o.torque0.Publish(v) }
func (o *busOutputs) PublishTorque1(v vtol.Vector3) { o.torque1.Publish(v) }
func (o *busOutputs) PublishThrust0(v vtol.Vector3) { o.thrust0.Publish(v) }
func (o *busOutputs) PublishThrust1(v vtol.Vector3) { o.thrust1.Publish(v) }
func (o *busOutputs) PublishAttitudeSetpoint(sp vtol.AttitudeSetpoint) { o.attitudeSp.Publish(sp) }
func (o *busOutputs) PublishVtolStatus(s vtol.VtolVehicleStatus)      { o.vtolStatus.Publish(s) }
func (o *busOutputs) PublishFlaps(v float64)                         { o.flaps.Publish(v) }
func (o *busOutputs) PublishSpoilers(v float64)                      { o.spoilers.Publish(v) }
func (o *busOutputs) PublishTiltrotorExtras(e vtol.TiltrotorExtras)  { o.tiltrotor.Publish(e) }

func (o *busOutputs) PublishCommandAck(command uint16, result vtol.AckResult, targetSystem, targetComponent uint8) {
	o.commandAcks.Publish(CommandAck{
		Command:         command,
		Result:          result,
		TargetSystem:    targetSystem,
		TargetComponent: targetComponent,
	})
}
