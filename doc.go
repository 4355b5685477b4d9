// doc.go

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

/*Package vtol implements the attitude-control coordinator for a VTOL
(vertical takeoff and landing) aircraft.

The coordinator mediates between two parallel inner-loop controllers - a
multirotor controller and a fixed-wing controller - deciding at any instant
which one is flying the aircraft and, during mode transitions, blending
both controllers' outputs so the handover between hover and forward flight
is smooth. It does not produce attitude or rate setpoints itself; those
arrive as inputs from the two inner loops.

Airframes

Three airframe families are supported, each with its own transition state
machine and actuator-mixing policy:

	Standard   two-phase front transition (pusher ramp + rotor fade)
	Tailsitter attitude-rotation front transition (quaternion slerp)
	Tiltrotor  two-phase front transition (spool rotors, then tilt forward)

The airframe kind is selected once at startup from configuration and is
immutable for the life of the process; see NewAirframe.

Concepts

Coordinator vs. Airframe

The Coordinator (see coordinator.go) owns exactly one Airframe
implementation for its entire lifetime. It drains commands, runs the
scheduling gate, and fans published setpoints out to the bus; the airframe
owns the transition state machine and actuator mixing for its family. The
airframe never outlives the coordinator and holds no owning reference back
to it - each call passes a Context giving read access to the latest input
snapshot and write access to the four physical setpoints.

Funcs vs. Channels

This package performs no I/O itself. Latest-value reads and non-blocking
publishes are provided by whatever implements Inputs and Outputs - see
package bus for the substrate used by cmd/vtolctl.
*/
package vtol
