// config.go

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

// Package params loads and hot-reloads the coordinator's typed
// configuration from a YAML file, and fans changes out to subscribers.
package params

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vtolctl/vtolctl"
)

// Config is the on-disk representation of every tunable the coordinator
// and its airframes consult. Durations are given in seconds in the file
// and converted on load.
type Config struct {
	VtolType string `yaml:"vt_type"`

	FrontTransThrottleSec float64 `yaml:"vt_f_trans_thr"`
	PusherSlewRate        float64 `yaml:"vt_psher_slew"`
	BlendAirspeed         float64 `yaml:"blend_airspeed"`
	TransitionAirspeed    float64 `yaml:"transition_airspeed"`
	MinFrontTransTimeSec  float64 `yaml:"min_front_trans_time_s"`
	OpenLoopTransDurSec   float64 `yaml:"open_loop_trans_dur_s"`

	BackTransDurationSec float64 `yaml:"vt_b_trans_dur"`
	BackTransRampSec     float64 `yaml:"vt_b_trans_ramp"`
	CruiseSpeed          float64 `yaml:"mpc_xy_cruise"`

	ThrustBlendDurationSec float64 `yaml:"thrust_blend_duration_s"`

	ElevonsLockedInMc bool    `yaml:"vt_elev_mc_lock"`
	SpoilerMcLandDefl float64 `yaml:"vt_spoiler_mc_ld"`

	TiltMc           float64 `yaml:"vt_tilt_mc"`
	TiltTrans        float64 `yaml:"vt_tilt_trans"`
	TiltFw           float64 `yaml:"vt_tilt_fw"`
	TransP2DurSec    float64 `yaml:"vt_trans_p2_dur"`
	BackTransTiltSec float64 `yaml:"vt_bt_tilt_dur"`

	FwPitchSpOffsetDeg      float64 `yaml:"fw_psp_off_deg"`
	RearMotorSpinupDurSec   float64 `yaml:"vt_rear_spinup_dur_s"`

	QcMinAltitude           float64 `yaml:"qc_min_altitude"`
	QcMaxAltLoss            float64 `yaml:"qc_max_alt_loss"`
	QcMaxPitchDeg           float64 `yaml:"qc_max_pitch_deg"`
	QcMaxRollDeg            float64 `yaml:"qc_max_roll_deg"`
	QcUncommandedDescentSec float64 `yaml:"qc_uncommanded_descent_s"`
}

// Load reads and parses the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("params: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("params: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// airframeKindByName resolves the vt_type string to the coordinator's
// AirframeKind, accepting both the numeric encoding and the mnemonic
// spellings used in the file for readability.
func airframeKindByName(name string) (vtol.AirframeKind, error) {
	switch name {
	case "1", "standard", "STANDARD":
		return vtol.Standard, nil
	case "2", "tailsitter", "TAILSITTER":
		return vtol.Tailsitter, nil
	case "3", "tiltrotor", "TILTROTOR":
		return vtol.Tiltrotor, nil
	default:
		return 0, fmt.Errorf("params: unknown vt_type %q", name)
	}
}

// ToParameters converts the on-disk config to the typed Parameters the
// coordinator consumes, validating VT_TYPE along the way. VT_TYPE outside
// {Standard, Tailsitter, Tiltrotor} is configuration-fatal.
func (c *Config) ToParameters() (*vtol.Parameters, error) {
	kind, err := airframeKindByName(c.VtolType)
	if err != nil {
		return nil, err
	}

	p := &vtol.Parameters{
		VtolType:                kind,
		FrontTransThrottle:      c.FrontTransThrottleSec,
		PusherSlewRate:          c.PusherSlewRate,
		BlendAirspeed:           c.BlendAirspeed,
		TransitionAirspeed:      c.TransitionAirspeed,
		MinFrontTransTime:       secs(c.MinFrontTransTimeSec),
		OpenLoopTransDur:        secs(c.OpenLoopTransDurSec),
		BackTransDuration:       secs(c.BackTransDurationSec),
		BackTransRampTime:       secs(c.BackTransRampSec),
		CruiseSpeed:             c.CruiseSpeed,
		ThrustBlendDuration:     secs(c.ThrustBlendDurationSec),
		ElevonsLockedInMc:       c.ElevonsLockedInMc,
		SpoilerMcLandDefl:       c.SpoilerMcLandDefl,
		TiltMc:                  c.TiltMc,
		TiltTrans:               c.TiltTrans,
		TiltFw:                  c.TiltFw,
		TransP2Dur:              secs(c.TransP2DurSec),
		BackTransTiltDur:        secs(c.BackTransTiltSec),
		FwPitchSetpointOffset:   degToRad(c.FwPitchSpOffsetDeg),
		RearMotorSpinupDuration: secs(c.RearMotorSpinupDurSec),
		QcMinAltitude:           c.QcMinAltitude,
		QcMaxAltLoss:            c.QcMaxAltLoss,
		QcMaxPitchRad:           degToRad(c.QcMaxPitchDeg),
		QcMaxRollRad:            degToRad(c.QcMaxRollDeg),
		QcUncommandedDescentSec: secs(c.QcUncommandedDescentSec),
	}
	p.PitchThresholdToFw, p.PitchThresholdToMc = vtol.DefaultTailsitterPitchThresholds()
	return p, nil
}

func secs(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

func degToRad(d float64) float64 { return d * 3.141592653589793 / 180 }
