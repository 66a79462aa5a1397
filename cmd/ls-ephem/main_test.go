package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/litescript/ls-ephem/internal/config"
	"github.com/litescript/ls-ephem/internal/logging"
	"github.com/litescript/ls-ephem/internal/spk"
	"github.com/litescript/ls-ephem/internal/spkfile"
	"github.com/litescript/ls-ephem/internal/state"
)

const fixture = "../../internal/spkfile/testdata/planets.toml"

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	if cmd.Use != "ls-ephem" {
		t.Errorf("Use = %q, want ls-ephem", cmd.Use)
	}

	want := []string{"at", "browse", "chain", "codes", "export", "names", "observe", "summary", "watch"}
	var got []string
	for _, c := range cmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q (have %v)", name, got)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	out, _, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, "ls-ephem version 0.3.0") {
		t.Errorf("--version output = %q", out)
	}
}

func TestSummaryCommand(t *testing.T) {
	out, logs, err := run(t, "summary", "-k", fixture)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	for _, want := range []string{
		"Segments from kernel file 'planets-excerpt.bsp':",
		"(1999-12-23 through 2000-01-24)",
		"SOLAR SYSTEM BARYCENTER -> EARTH BARYCENTER",
		"EARTH BARYCENTER -> MOON",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(logs, "loaded 5 segments from 1 manifests") {
		t.Errorf("expected load log line on stderr, got %q", logs)
	}
}

func TestSummaryCommand_LogLevel(t *testing.T) {
	_, logs, err := run(t, "summary", "-k", fixture, "--log-level", "warn")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if logs != "" {
		t.Errorf("warn level should hide info logs, got %q", logs)
	}
}

func TestCodesAndNames(t *testing.T) {
	out, _, err := run(t, "codes", "-k", fixture)
	if err != nil {
		t.Fatalf("codes: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("codes printed %d lines, want 6:\n%s", len(lines), out)
	}
	if lines[5] != "     399  EARTH" {
		t.Errorf("last line = %q", lines[5])
	}

	out, _, err = run(t, "names", "-k", fixture)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if !strings.Contains(out, "EMB") || !strings.Contains(out, "MOON") {
		t.Errorf("names output:\n%s", out)
	}
}

func TestAtCommand(t *testing.T) {
	out, _, err := run(t, "at", "earth", "2451552.5", "2451560", "-k", fixture)
	if err != nil {
		t.Fatalf("at: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// heading, then position and velocity per date
	if len(lines) != 5 {
		t.Fatalf("at printed %d lines, want 5:\n%s", len(lines), out)
	}
	if lines[0] != "399 EARTH relative to 0 SOLAR SYSTEM BARYCENTER" {
		t.Errorf("heading = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "JD 2451552.500000  [-6997000.000000 135996500.000000 58998500.000000] km") {
		t.Errorf("position line = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "km/day") {
		t.Errorf("velocity line = %q", lines[2])
	}
}

func TestAtCommand_Center(t *testing.T) {
	out, _, err := run(t, "at", "399", "2451552.5", "--center", "sun", "-k", fixture)
	if err != nil {
		t.Fatalf("at --center: %v", err)
	}
	if !strings.HasPrefix(out, "399 EARTH relative to 10 SUN\n") {
		t.Errorf("output:\n%s", out)
	}

	// The center can come from the environment too
	t.Setenv(config.EnvPrefix+"_CENTER", "3")
	out, _, err = run(t, "at", "moon", "2451552.5", "-k", fixture)
	if err != nil {
		t.Fatalf("at with env center: %v", err)
	}
	if !strings.HasPrefix(out, "301 MOON relative to 3 EARTH BARYCENTER\n") {
		t.Errorf("output:\n%s", out)
	}
}

func TestAtCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code spk.ErrorCode
		msg  string
	}{
		{"out of range", []string{"at", "earth", "2460000.5", "-k", fixture}, spk.ErrRange, ""},
		{"unknown body", []string{"at", "vulcan", "-k", fixture}, spk.ErrLookup, "unknown body name 'vulcan'"},
		{"missing body", []string{"at", "jupiter", "2451552.5", "-k", fixture}, spk.ErrLookup, "599"},
		{"self", []string{"at", "0", "2451552.5", "-k", fixture}, spk.ErrLookup, "itself"},
		{"bad date", []string{"at", "earth", "yesterday", "-k", fixture}, "", "invalid Julian date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.code != "" && !spk.Is(err, tt.code) {
				t.Errorf("error %v does not carry code %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestObserveCommand(t *testing.T) {
	out, _, err := run(t, "observe", "mars", "2451552.5", "-k", fixture)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if !strings.HasPrefix(out, "4 MARS BARYCENTER seen from 399 EARTH\n") {
		t.Errorf("heading:\n%s", out)
	}
	for _, want := range []string{"RA ", "Dec ", "light time", "sun "} {
		if !strings.Contains(out, want) {
			t.Errorf("observe output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, "observe", "sun", "2451552.5", "--observer", "moon", "-k", fixture)
	if err != nil {
		t.Fatalf("observe --observer: %v", err)
	}
	if !strings.HasPrefix(out, "10 SUN seen from 301 MOON\n") || strings.Contains(out, "sun ") {
		t.Errorf("observing the Sun should not report a sun separation:\n%s", out)
	}
}

func TestChainCommand(t *testing.T) {
	out, _, err := run(t, "chain", "moon", "--center", "sun", "-k", fixture)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if !strings.HasPrefix(out, "Sum of 3 vectors:") {
		t.Errorf("chain output:\n%s", out)
	}

	out, _, err = run(t, "chain", "earth_barycenter", "-k", fixture)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if strings.TrimSpace(out) != "'planets-excerpt.bsp' segment 0 SOLAR SYSTEM BARYCENTER -> 3 EARTH BARYCENTER" {
		t.Errorf("single edge chain = %q", out)
	}
}

func TestNoKernels(t *testing.T) {
	_, _, err := run(t, "summary")
	if !errors.Is(err, errNoKernels) {
		t.Errorf("err = %v, want errNoKernels", err)
	}
}

func TestKernelsFromConfigFile(t *testing.T) {
	abs, err := filepath.Abs(fixture)
	if err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(t.TempDir(), "ephem.yaml")
	if err := os.WriteFile(cfg, []byte("kernels:\n  - "+abs+"\nlog_level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, logs, err := run(t, "codes", "--config", cfg)
	if err != nil {
		t.Fatalf("codes --config: %v", err)
	}
	if !strings.Contains(out, "     301  MOON") {
		t.Errorf("codes output:\n%s", out)
	}
	if logs != "" {
		t.Errorf("log_level from the config file should hide info logs, got %q", logs)
	}

	if _, _, err := run(t, "codes", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("a missing explicit config file should fail")
	}
}

func TestExportCommand(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "earth.toml")

	out, _, err := run(t, "export", dest, "--body", "earth", "--body", "earth_barycenter", "-k", fixture)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.TrimSpace(out) != "Wrote 2 segments to "+dest {
		t.Errorf("export output = %q", out)
	}

	label, segs, err := spkfile.Load(dest)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if label != "earth.toml" || len(segs) != 2 {
		t.Errorf("export = %q with %d segments", label, len(segs))
	}

	// The exported manifest answers the same query
	out, _, err = run(t, "at", "earth", "2451552.5", "-k", dest)
	if err != nil {
		t.Fatalf("at on export: %v", err)
	}
	if !strings.Contains(out, "[-6997000.000000 135996500.000000 58998500.000000]") {
		t.Errorf("at on export:\n%s", out)
	}

	if _, _, err := run(t, "export", dest, "--body", "jupiter", "-k", fixture); err == nil {
		t.Error("exporting nothing should fail")
	}
}

func TestBrowseNeedsTerminal(t *testing.T) {
	_, _, err := run(t, "browse", "-k", fixture)
	if err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Errorf("err = %v, want terminal error", err)
	}
}

func copyFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "planets.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testReloader(t *testing.T, path string) *reloader {
	t.Helper()
	a := &app{
		cfg:    config.Config{Kernels: []string{path}},
		logger: logging.Discard(),
	}
	k, err := a.loadKernel()
	if err != nil {
		t.Fatal(err)
	}
	return newReloader(a, k)
}

func TestReloader_Reload(t *testing.T) {
	path := copyFixture(t)
	r := testReloader(t, path)

	// Drop the Moon
	label, segs, err := spkfile.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	var kept []*spk.Segment
	for _, s := range segs {
		if s.Target() != spk.Moon {
			kept = append(kept, s)
		}
	}
	if err := spkfile.Write(path, label, kept); err != nil {
		t.Fatal(err)
	}

	events, err := r.reload()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(events) != 1 || events[0].Type != state.EventPairRemoved || events[0].Target != spk.Moon {
		t.Errorf("events = %+v", events)
	}
	if r.provider.Available(spk.Moon) {
		t.Error("Moon should be gone after reload")
	}

	// A broken manifest keeps the previous kernel
	if err := os.WriteFile(path, []byte("label = [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.reload(); err == nil {
		t.Fatal("reload of a broken manifest should fail")
	}
	if !r.provider.Available(spk.Earth) {
		t.Error("failed reload should keep the previous segments")
	}
	if snap := r.state.Snapshot(); snap.LastError == nil || snap.Generation != 2 {
		t.Errorf("snapshot after failure: gen %d err %v", snap.Generation, snap.LastError)
	}
}

func TestReloader_Run(t *testing.T) {
	path := copyFixture(t)
	r := testReloader(t, path)

	changes := make(chan spkfile.Change, 2)
	changes <- spkfile.Change{Kind: spkfile.ChangeModified, File: path}
	changes <- spkfile.Change{Kind: spkfile.ChangeRemoved, File: path}
	close(changes)

	var reports []error
	r.run(context.Background(), changes, func(_ []state.Event, err error) {
		reports = append(reports, err)
	})

	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0] != nil {
		t.Errorf("unchanged file should reload cleanly: %v", reports[0])
	}
	if reports[1] != nil {
		t.Errorf("file still exists, reload should succeed: %v", reports[1])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.run(ctx, make(chan spkfile.Change), func([]state.Event, error) {
		t.Error("cancelled run should not report")
	})
}

func TestWriteEvents(t *testing.T) {
	var b bytes.Buffer
	writeEvents(&b, nil)
	if b.String() != "Reloaded: no changes\n" {
		t.Errorf("empty = %q", b.String())
	}

	b.Reset()
	writeEvents(&b, []state.Event{{Type: state.EventPairRemoved, Target: spk.Moon, OldCenter: spk.EarthBarycenter}})
	if !strings.Contains(b.String(), "PAIR_REMOVED      301 MOON no longer from 3 EARTH BARYCENTER") {
		t.Errorf("event line = %q", b.String())
	}
}
