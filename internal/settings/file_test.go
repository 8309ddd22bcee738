package settings

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"edna/internal/bounds"
)

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer

	src := newDemo(&diag)
	src.legs.Set(4)
	src.mass.Set(2.25)
	src.title.Set("fast one")
	src.brave.Set(true)
	src.gait.Set(gallop)
	src.span.Set(bounds.New(-1.0, 0, 0, 1))
	src.rates.Set(map[string]float64{"legs": 0.5, "mass": 3})

	path := filepath.Join(dir, "Critter.config")
	if err := src.file.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dst := newDemo(&diag)
	res, err := dst.file.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res != OK {
		t.Fatalf("res = %v, want ok (diagnostics: %s)", res, diag.String())
	}

	if got := dst.legs.Get(); got != 4 {
		t.Errorf("legs = %d, want 4", got)
	}
	if got := dst.mass.Get(); got != 2.25 {
		t.Errorf("mass = %v, want 2.25", got)
	}
	if got := dst.title.Get(); got != "fast one" {
		t.Errorf("title = %q, want %q", got, "fast one")
	}
	if !dst.brave.Get() {
		t.Error("brave = false, want true")
	}
	if got := dst.gait.Get(); got != gallop {
		t.Errorf("gait = %v, want gallop", got)
	}
	if got, want := dst.span.Get(), src.span.Get(); got != want {
		t.Errorf("span = %v, want %v", got, want)
	}
	if diff := cmp.Diff(src.rates.Get(), dst.rates.Get()); diff != "" {
		t.Errorf("rates mismatch (-want +got):\n%s", diff)
	}
	if dst.legs.Origin() != OriginFile {
		t.Errorf("origin = %v, want %v", dst.legs.Origin(), OriginFile)
	}
	if dst.file.Path() != path {
		t.Errorf("path = %q, want %q", dst.file.Path(), path)
	}
}

func TestWrittenFormGolden(t *testing.T) {
	dir := t.TempDir()
	f := NewFile("Demo", Diagnostics(io.Discard))
	Declare(f, "speed", 4)
	Declare(f, "title", "fast one")

	path := filepath.Join(dir, "Demo.config")
	if err := f.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}

	want := strings.Join([]string{
		"============",
		"=== Demo ===",
		"============",
		"",
		"speed: 4",
		`title: "fast one"`,
		"",
		"============",
		"",
	}, "\n")
	if got := string(data); got != want {
		t.Fatalf("file form mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestConsoleFormShowsOrigins(t *testing.T) {
	var out bytes.Buffer
	f := NewFile("Demo", Diagnostics(io.Discard))
	speed := Declare(f, "speed", 4)
	Declare(f, "title", "fast one")
	speed.Set(9)

	if err := f.PrintTo(&out); err != nil {
		t.Fatalf("PrintTo: %v", err)
	}
	want := strings.Join([]string{
		"====================",
		"======= Demo =======",
		" file: *default*",
		"====================",
		"",
		"[O] speed: 9",
		`[D] title: "fast one"`,
		"",
		"====================",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Fatalf("console form mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestEmptyFileListing(t *testing.T) {
	var out bytes.Buffer
	f := NewFile("Hollow", Diagnostics(io.Discard))
	if err := f.PrintTo(&out); err != nil {
		t.Fatalf("PrintTo: %v", err)
	}
	if !strings.Contains(out.String(), "Empty configuration file: Hollow") {
		t.Fatalf("unexpected listing: %q", out.String())
	}
}

func TestMissingFieldRewrites(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Patch", Diagnostics(&diag))
	Declare(f, "kept", 1)
	Declare(f, "added", 2)

	path := writeConfig(t, dir, "Patch.config", strings.Join([]string{
		"== Patch ==", "====", "kept: 5", "====", "",
	}, "\n"))
	res, err := f.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !res.Has(FieldMissing) {
		t.Fatalf("res = %v, want field-missing", res)
	}
	if !strings.Contains(diag.String(), `"added"`) {
		t.Fatalf("missing field not reported: %q", diag.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if !strings.Contains(string(data), "added: 2") || !strings.Contains(string(data), "kept: 5") {
		t.Fatalf("rewritten file incomplete:\n%s", data)
	}
}

func TestMissingFileWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Fresh", Diagnostics(&diag))
	speed := Declare(f, "speed", 4)

	path := filepath.Join(dir, "Fresh.config")
	res, err := f.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res != FieldMissing {
		t.Fatalf("res = %v, want field-missing", res)
	}
	if speed.Origin() != OriginDefault {
		t.Fatalf("origin = %v, want %v", speed.Origin(), OriginDefault)
	}
	if !strings.Contains(diag.String(), "writing default config") {
		t.Fatalf("no creation notice: %q", diag.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if !strings.Contains(string(data), "speed: 4") {
		t.Fatalf("defaults missing from file:\n%s", data)
	}
}

func TestWrongHeaderIsFatal(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Alpha", Diagnostics(&diag))
	speed := Declare(f, "speed", 4)

	path := writeConfig(t, dir, "x.config", strings.Join([]string{
		"== Beta ==", "====", "speed: 9", "====", "",
	}, "\n"))
	res, err := f.Read(path)
	if err == nil {
		t.Fatal("foreign header accepted")
	}
	if !res.Has(TypeMismatch) {
		t.Fatalf("res = %v, want type-mismatch", res)
	}
	if !strings.Contains(err.Error(), `"Beta"`) {
		t.Fatalf("unhelpful error: %v", err)
	}
	if speed.Get() != 4 {
		t.Fatalf("values touched by mismatched file: %d", speed.Get())
	}
}

func TestUnknownAndDebugRows(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Loose", Diagnostics(&diag))
	Declare(f, "known", 1)

	path := writeConfig(t, dir, "Loose.config", strings.Join([]string{
		"== Loose ==", "====",
		"known: 2",
		"ghost: 3",
		"DEBUG_trace: on",
		"====", "",
	}, "\n"))
	res, err := f.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !res.Has(FieldUnknown) {
		t.Fatalf("res = %v, want field-unknown", res)
	}
	if res.Has(FieldMissing) || res.Has(LineInvalid) {
		t.Fatalf("res = %v, extra flags", res)
	}
	if !strings.Contains(diag.String(), `"ghost"`) {
		t.Fatalf("unknown field not reported: %q", diag.String())
	}
	if strings.Contains(diag.String(), "DEBUG_trace") {
		t.Fatalf("DEBUG_ row reported: %q", diag.String())
	}
}

func TestCommentsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Calm", Diagnostics(&diag))
	speed := Declare(f, "speed", 4)

	path := writeConfig(t, dir, "Calm.config", strings.Join([]string{
		"# banner comment", "",
		"== Calm ==",
		"# inside the header",
		"====",
		"",
		"# about to set the speed",
		"speed: 7",
		"====", "",
	}, "\n"))
	res, err := f.Read(path)
	if err != nil || res != OK {
		t.Fatalf("Read: res=%v err=%v (%s)", res, err, diag.String())
	}
	if speed.Get() != 7 {
		t.Fatalf("speed = %d, want 7", speed.Get())
	}
}

func TestInvalidLineFlagged(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Messy", Diagnostics(&diag))
	Declare(f, "speed", 4)

	path := writeConfig(t, dir, "Messy.config", strings.Join([]string{
		"== Messy ==", "====",
		"speed: 7",
		"!!! what even is this",
		"====", "",
	}, "\n"))
	res, err := f.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !res.Has(LineInvalid) {
		t.Fatalf("res = %v, want line-invalid", res)
	}
	if !strings.Contains(diag.String(), "could not parse") {
		t.Fatalf("invalid line not reported: %q", diag.String())
	}
}

func TestBadValueFlagged(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Typo", Diagnostics(&diag))
	speed := Declare(f, "speed", 4)

	path := writeConfig(t, dir, "Typo.config", strings.Join([]string{
		"== Typo ==", "====", "speed: quick", "====", "",
	}, "\n"))
	res, err := f.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !res.Has(FieldParse) {
		t.Fatalf("res = %v, want field-parse", res)
	}
	if speed.Get() != 4 || speed.Origin() != OriginError {
		t.Fatalf("after bad value: %d at %v", speed.Get(), speed.Origin())
	}
	if !strings.Contains(diag.String(), "unable to convert") ||
		!strings.Contains(diag.String(), "error parsing field") {
		t.Fatalf("diagnostics incomplete: %q", diag.String())
	}
}

func TestMapBlockMergesIntoDefaults(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Rates", Diagnostics(&diag))
	rates := DeclareRates(f, "mutationRates", map[string]float64{"legs": 1, "mass": 2})

	path := writeConfig(t, dir, "Rates.config", strings.Join([]string{
		"== Rates ==", "====",
		"mutationRates: map(string, float64) {",
		`    "legs": 0.5`,
		"}",
		"====", "",
	}, "\n"))
	res, err := f.Read(path)
	if err != nil || res != OK {
		t.Fatalf("Read: res=%v err=%v (%s)", res, err, diag.String())
	}
	want := map[string]float64{"legs": 0.5, "mass": 2}
	if diff := cmp.Diff(want, rates.Get()); diff != "" {
		t.Fatalf("rates mismatch (-want +got):\n%s", diff)
	}
}

func subDemo(diag io.Writer) (parent *File, mass *Param[float64], child *File, zoom *Param[int]) {
	child = NewFile("Optics", Diagnostics(diag))
	zoom = Declare(child, "zoom", 1)
	parent = NewFile("Beast", Diagnostics(diag))
	mass = Declare(parent, "mass", 1.5)
	Subconfig(parent, child)
	return parent, mass, child, zoom
}

func TestSubconfigSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer

	parent, mass, _, zoom := subDemo(&diag)
	mass.Set(3.5)
	zoom.Set(4)
	path := filepath.Join(dir, "Beast.config")
	if err := parent.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	childPath := filepath.Join(dir, "Optics.config")
	if _, err := os.Stat(childPath); err != nil {
		t.Fatalf("child file not written: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading parent: %v", err)
	}
	if !strings.Contains(string(data), "Optics: Optics.config") {
		t.Fatalf("parent row missing child file name:\n%s", data)
	}

	parent2, mass2, child2, zoom2 := subDemo(&diag)
	res, err := parent2.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res != OK {
		t.Fatalf("res = %v, want ok (%s)", res, diag.String())
	}
	if mass2.Get() != 3.5 {
		t.Errorf("mass = %v, want 3.5", mass2.Get())
	}
	if zoom2.Get() != 4 {
		t.Errorf("zoom = %d, want 4", zoom2.Get())
	}
	if child2.Path() != childPath {
		t.Errorf("child path = %q, want %q", child2.Path(), childPath)
	}
	v, err := parent2.Value("Optics")
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.Origin() != OriginFile {
		t.Errorf("subconfig origin = %v, want %v", v.Origin(), OriginFile)
	}
}

func TestConsoleAppendsSubconfigs(t *testing.T) {
	parent, _, _, _ := subDemo(io.Discard)
	var out bytes.Buffer
	if err := parent.PrintTo(&out); err != nil {
		t.Fatalf("PrintTo: %v", err)
	}
	s := out.String()
	beast := strings.Index(s, " Beast ")
	optics := strings.Index(s, " Optics ")
	if beast < 0 || optics < 0 {
		t.Fatalf("listing incomplete:\n%s", s)
	}
	if optics < beast {
		t.Fatalf("subconfig printed before parent:\n%s", s)
	}
}

func TestSetupAutoCreatesDefaultPath(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	f := NewFile("Auto", Folder(filepath.Join(dir, "configs")), Diagnostics(&diag))
	Declare(f, "speed", 4)

	res, err := f.Setup("auto", Quiet)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if res != FieldMissing {
		t.Fatalf("res = %v, want field-missing", res)
	}
	want := filepath.Join(dir, "configs", "Auto.config")
	if f.Path() != want {
		t.Fatalf("path = %q, want %q", f.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("default file not created: %v", err)
	}
}
