// main.go

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

// Command vtolctl runs the VTOL attitude-control coordinator as a
// standalone process: it wires the vtol package's coordinator to an
// in-process bus and a hot-reloading YAML configuration file, drives it
// from the two virtual control streams, and republishes the physical
// actuator setpoints for whatever consumes them.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vtolctl/vtolctl"
	"github.com/vtolctl/vtolctl/bus"
	"github.com/vtolctl/vtolctl/params"
)

func main() {
	configPath := flag.String("config", "vtolctl.yaml", "path to the coordinator's YAML configuration")
	flag.Parse()

	logger := log.New(os.Stderr, "vtolctl: ", log.LstdFlags)

	store, err := params.NewStore(*configPath)
	if err != nil {
		logger.Fatalf("loading %s: %v", *configPath, err)
	}
	if err := store.WatchForChanges(logger); err != nil {
		logger.Printf("hot-reload disabled: %v", err)
	}
	defer store.Stop()

	b := bus.NewBus()
	in := newBusInputs(b)
	out := newBusOutputs(b)
	vlog := vtol.NewStdLogger(logger)

	coord, err := vtol.NewCoordinator(store.Get().VtolType, store.Get(), vlog)
	if err != nil {
		logger.Fatalf("building coordinator: %v", err)
	}

	var mu sync.Mutex
	ctxFor := func() vtol.Context {
		return vtol.Context{
			In:     in,
			Out:    out,
			Log:    vlog,
			Now:    vtol.Now(),
			Params: store.Get(),
		}
	}

	if !coord.Init(ctxFor()) {
		logger.Fatalf("airframe initialization failed for VT_TYPE=%s", store.Get().VtolType)
	}

	store.Subscribe(func() {
		mu.Lock()
		defer mu.Unlock()
		coord.ParametersUpdate(ctxFor())
	})

	// trigger runs the coordinator only for the stream(s) that actually
	// produced this callback, letting Coordinator.Run's shouldRun gate
	// decline ticks the current common mode does not consume (an FW-in
	// sample arriving while hovering, for instance).
	trigger := func(updated vtol.StreamUpdate) {
		mu.Lock()
		defer mu.Unlock()
		coord.Run(ctxFor(), updated)
	}
	in.mcIn.Subscribe(func(vtol.TorqueThrust) { trigger(vtol.StreamUpdate{McIn: true}) })
	in.fwIn.Subscribe(func(vtol.TorqueThrust) { trigger(vtol.StreamUpdate{FwIn: true}) })
	in.mcAttSpIn.Subscribe(func(vtol.AttitudeSetpoint) { trigger(vtol.StreamUpdate{McIn: true}) })
	in.fwAttSpIn.Subscribe(func(vtol.AttitudeSetpoint) { trigger(vtol.StreamUpdate{FwIn: true}) })
	// The EKF reset counters are polled unconditionally every cycle in the
	// reference stack's fixed-rate loop rather than gated on which virtual
	// stream fired, so here they are treated as eligible against either
	// mode and left to shouldRun's per-mode check.
	in.estimatorStatus.Subscribe(func(vtol.EstimatorStatus) { trigger(vtol.StreamUpdate{McIn: true, FwIn: true}) })

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	mu.Lock()
	defer mu.Unlock()
	logger.Printf("vtolctl shutting down")
}
