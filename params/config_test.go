// config_test.go

package params

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vtolctl.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadAndToParameters(t *testing.T) {
	path := writeTempConfig(t, `
vt_type: standard
vt_f_trans_thr: 0.7
vt_psher_slew: 0.5
blend_airspeed: 8
transition_airspeed: 10
min_front_trans_time_s: 3
vt_b_trans_dur: 6
vt_b_trans_ramp: 10
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := cfg.ToParameters()
	if err != nil {
		t.Fatalf("ToParameters: %v", err)
	}
	if p.FrontTransThrottle != 0.7 {
		t.Errorf("FrontTransThrottle = %v, want 0.7", p.FrontTransThrottle)
	}
	// vt_b_trans_ramp (10s) exceeds vt_b_trans_dur (6s); ToParameters
	// itself does not clamp - that is the airframe's ParametersUpdate
	// job - but the values should still convert without error.
	if p.BackTransRampTime.Seconds() != 10 {
		t.Errorf("BackTransRampTime = %v, want 10s pre-clamp", p.BackTransRampTime)
	}
}

func TestToParametersRejectsUnknownVtolType(t *testing.T) {
	path := writeTempConfig(t, "vt_type: helicopter\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.ToParameters(); err == nil {
		t.Fatalf("expected error for unknown vt_type")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
