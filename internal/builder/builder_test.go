package builder

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"railgen/internal/domain"
)

// mustTrack creates a track or fails the test.
func mustTrack(t *testing.T, b *Builder, length int64, label string) *Track {
	t.Helper()
	track, err := b.AddTrackSection(length, label)
	if err != nil {
		t.Fatalf("AddTrackSection(%d, %q): %v", length, label, err)
	}
	return track
}

func TestAddTrackSection(t *testing.T) {
	t.Run("allocates default labels per builder", func(t *testing.T) {
		b := New()
		first := mustTrack(t, b, 10, "")
		second := mustTrack(t, b, 10, "")
		if first.ID() != "track_section.0" || second.ID() != "track_section.1" {
			t.Errorf("unexpected ids %s, %s", first.ID(), second.ID())
		}

		other := New()
		if got := mustTrack(t, other, 10, "").ID(); got != "track_section.0" {
			t.Errorf("expected independent counters, got %s", got)
		}
	})

	t.Run("negative length fails", func(t *testing.T) {
		b := New()
		if _, err := b.AddTrackSection(-1, "t"); !errors.Is(err, domain.ErrOutOfBounds) {
			t.Fatalf("expected ErrOutOfBounds, got %v", err)
		}
	})

	t.Run("duplicate label fails", func(t *testing.T) {
		b := New()
		mustTrack(t, b, 10, "t")
		if _, err := b.AddTrackSection(20, "t"); !errors.Is(err, domain.ErrDuplicateIdentifier) {
			t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
		}
	})

	t.Run("generated label colliding with caller label fails", func(t *testing.T) {
		b := New()
		mustTrack(t, b, 10, "track_section.0")
		if _, err := b.AddTrackSection(10, ""); !errors.Is(err, domain.ErrDuplicateIdentifier) {
			t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
		}
		if got := mustTrack(t, b, 10, "").ID(); got != "track_section.1" {
			t.Errorf("expected allocator to move past the collision, got %s", got)
		}
	})

	t.Run("endpoints are pure lookups", func(t *testing.T) {
		b := New()
		track := mustTrack(t, b, 10, "t")
		if track.Begin() != track.Begin() || track.End() == track.Begin() {
			t.Error("expected stable, distinct endpoint handles")
		}
		if track.Begin().ConsumedBy() != "" {
			t.Error("expected fresh endpoint to be unconsumed")
		}
	})
}

func TestAddLink(t *testing.T) {
	t.Run("consumed endpoint fails", func(t *testing.T) {
		b := New()
		a, c, d := mustTrack(t, b, 10, "a"), mustTrack(t, b, 10, "c"), mustTrack(t, b, 10, "d")
		if _, err := b.AddLink(a.End(), c.Begin(), ""); err != nil {
			t.Fatal(err)
		}
		_, err := b.AddLink(a.End(), d.Begin(), "")
		if !errors.Is(err, domain.ErrEndpointConsumed) {
			t.Fatalf("expected ErrEndpointConsumed, got %v", err)
		}
	})

	t.Run("self link fails", func(t *testing.T) {
		b := New()
		a := mustTrack(t, b, 10, "a")
		if _, err := b.AddLink(a.End(), a.Begin(), ""); !errors.Is(err, domain.ErrSelfLink) {
			t.Fatalf("expected ErrSelfLink, got %v", err)
		}
	})

	t.Run("endpoint of another builder fails", func(t *testing.T) {
		b, other := New(), New()
		a := mustTrack(t, b, 10, "a")
		foreign := mustTrack(t, other, 10, "f")
		if _, err := b.AddLink(a.End(), foreign.Begin(), ""); !errors.Is(err, domain.ErrUnknownTrack) {
			t.Fatalf("expected ErrUnknownTrack, got %v", err)
		}
	})
}

func TestAddSwitch(t *testing.T) {
	t.Run("arity mismatch fails", func(t *testing.T) {
		b := New()
		a, c := mustTrack(t, b, 10, "a"), mustTrack(t, b, 10, "c")
		_, err := b.AddSwitch(domain.PointSwitch, "", map[string]*Endpoint{"A": a.End(), "B1": c.Begin()})
		if !errors.Is(err, domain.ErrArityMismatch) {
			t.Fatalf("expected ErrArityMismatch, got %v", err)
		}
	})

	t.Run("wrong port names fail", func(t *testing.T) {
		b := New()
		a, c, d := mustTrack(t, b, 10, "a"), mustTrack(t, b, 10, "c"), mustTrack(t, b, 10, "d")
		_, err := b.AddSwitch(domain.PointSwitch, "", map[string]*Endpoint{"A": a.End(), "B1": c.Begin(), "C": d.Begin()})
		if !errors.Is(err, domain.ErrArityMismatch) {
			t.Fatalf("expected ErrArityMismatch, got %v", err)
		}
	})

	t.Run("unknown switch type fails", func(t *testing.T) {
		b := New()
		a := mustTrack(t, b, 10, "a")
		_, err := b.AddSwitch("turntable", "", map[string]*Endpoint{"A": a.End()})
		if !errors.Is(err, domain.ErrUnknownVariant) {
			t.Fatalf("expected ErrUnknownVariant, got %v", err)
		}
	})

	t.Run("endpoint shared between switches fails", func(t *testing.T) {
		b := New()
		a, c, d, e := mustTrack(t, b, 10, "a"), mustTrack(t, b, 10, "c"), mustTrack(t, b, 10, "d"), mustTrack(t, b, 10, "e")
		if _, err := b.AddPointSwitch(a.End(), c.Begin(), d.Begin(), "sw1"); err != nil {
			t.Fatal(err)
		}
		_, err := b.AddPointSwitch(e.End(), c.Begin(), d.End(), "sw2")
		if !errors.Is(err, domain.ErrEndpointConsumed) {
			t.Fatalf("expected ErrEndpointConsumed, got %v", err)
		}
	})

	t.Run("same endpoint on two ports fails", func(t *testing.T) {
		b := New()
		a, c := mustTrack(t, b, 10, "a"), mustTrack(t, b, 10, "c")
		_, err := b.AddPointSwitch(a.End(), c.Begin(), c.Begin(), "")
		if !errors.Is(err, domain.ErrEndpointConsumed) {
			t.Fatalf("expected ErrEndpointConsumed, got %v", err)
		}
	})

	t.Run("crossing binds four ports", func(t *testing.T) {
		b := New()
		a, c := mustTrack(t, b, 10, "a"), mustTrack(t, b, 10, "c")
		sw, err := b.AddSwitch(domain.Crossing, "x", map[string]*Endpoint{
			"A1": a.End(), "B1": c.Begin(), "A2": a.Begin(), "B2": c.End(),
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(sw.Ports) != 4 || a.End().ConsumedBy() != "x" {
			t.Errorf("unexpected switch %+v", sw)
		}
	})
}

// TestScenarioRing builds four tracks closed into a ring by one link and two point switches.
func TestScenarioRing(t *testing.T) {
	b := New()
	a := mustTrack(t, b, 200, "track_a")
	bb := mustTrack(t, b, 200, "track_b")
	c := mustTrack(t, b, 200, "track_c")
	d := mustTrack(t, b, 200, "track_d")
	if _, err := b.AddLink(d.End(), a.Begin(), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddPointSwitch(a.End(), bb.Begin(), c.Begin(), "switch1"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddPointSwitch(d.Begin(), bb.End(), c.End(), "switch2"); err != nil {
		t.Fatal(err)
	}

	infra, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := infra.Summary()
	want := domain.Summary{TrackSections: 4, Links: 1, Switches: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

// TestScenarioChain builds ten tracks linked into a chain with alternating orientation.
func TestScenarioChain(t *testing.T) {
	b := New()
	tracks := make([]*Track, 10)
	for i := range tracks {
		tracks[i] = mustTrack(t, b, 1000, "")
	}
	inverted := func(i int) bool { return i%2 == 1 }
	for i := 0; i+1 < len(tracks); i++ {
		first, second := tracks[i].End(), tracks[i+1].Begin()
		if inverted(i) {
			first = tracks[i].Begin()
		}
		if inverted(i + 1) {
			second = tracks[i+1].End()
		}
		if _, err := b.AddLink(first, second, ""); err != nil {
			t.Fatalf("link %d: %v", i, err)
		}
	}
	for i, track := range tracks {
		for j, dir := range []domain.ApplicableDirection{domain.StartToStop, domain.StopToStart} {
			det, err := track.AddDetector(int64(400+200*j), "")
			if err != nil {
				t.Fatal(err)
			}
			sig, err := b.AddSignalAtDetector(det, SignalOptions{
				Label:            fmt.Sprintf("S%d.%d", i, j),
				Direction:        dir,
				IsRouteDelimiter: true,
			})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := sig.AddLogicalSignal(domain.BAL, map[string]string{"Nf": "true"}); err != nil {
				t.Fatal(err)
			}
		}
	}

	infra, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := infra.Summary()
	if s.TrackSections != 10 || s.Links != 9 || s.Switches != 0 || s.Detectors != 20 || s.Signals != 20 {
		t.Fatalf("unexpected summary %s", s)
	}
	for _, sig := range infra.Signals {
		if len(sig.LogicalSignals) != 1 {
			t.Fatalf("signal %s has %d logical signals", sig.ID, len(sig.LogicalSignals))
		}
		ls := sig.LogicalSignals[0]
		if ls.SignalingSystem != domain.BAL || ls.Settings["Nf"] != "true" {
			t.Errorf("signal %s: unexpected logical signal %+v", sig.ID, ls)
		}
		if !sig.IsRouteDelimiter || sig.SightDistance != domain.DefaultSightDistance {
			t.Errorf("signal %s: unexpected flags %+v", sig.ID, sig)
		}
	}
}

func TestDetectorOutOfBounds(t *testing.T) {
	b := New()
	track := mustTrack(t, b, 1000, "t")
	if _, err := track.AddDetector(1000, "edge"); err != nil {
		t.Fatalf("offset equal to length must be accepted: %v", err)
	}
	_, err := track.AddDetector(1001, "past")
	if !errors.Is(err, domain.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Entity != domain.KindDetector || verr.ID != "past" || verr.Field != "position" {
		t.Fatalf("expected detector/past/position context, got %v", err)
	}

	infra, err := b.Build()
	if infra != nil {
		t.Fatal("expected no document after a failed construction call")
	}
	if !errors.Is(err, domain.ErrOutOfBounds) {
		t.Fatalf("expected Build to report ErrOutOfBounds, got %v", err)
	}
}

func TestRangesValidated(t *testing.T) {
	b := New()
	track := mustTrack(t, b, 100, "t")
	sec, err := b.AddSpeedSection(30/3.6, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.AddTrackRange(track, 50, 10, domain.Both); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Errorf("expected inverted range to fail, got %v", err)
	}
	if err := sec.AddTrackRange(track, 0, 101, domain.Both); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Errorf("expected range past end to fail, got %v", err)
	}
	if err := sec.AddTrackRange(track, 0, 100, "SIDEWAYS"); !errors.Is(err, domain.ErrUnknownVariant) {
		t.Errorf("expected unknown direction to fail, got %v", err)
	}
	if err := track.AddSlope(10, 200, 5); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Errorf("expected slope past end to fail, got %v", err)
	}
}

func TestBuildIsTerminal(t *testing.T) {
	b := New()
	track := mustTrack(t, b, 10, "t")
	if _, err := b.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddTrackSection(10, ""); !errors.Is(err, domain.ErrBuilt) {
		t.Errorf("expected ErrBuilt, got %v", err)
	}
	if _, err := track.AddDetector(1, ""); !errors.Is(err, domain.ErrBuilt) {
		t.Errorf("expected ErrBuilt, got %v", err)
	}
	if err := track.Begin().SetCoords(0, 0); !errors.Is(err, domain.ErrBuilt) {
		t.Errorf("expected ErrBuilt, got %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, domain.ErrBuilt) {
		t.Errorf("expected second Build to fail with ErrBuilt, got %v", err)
	}
}

func TestBuildDocumentIsIndependent(t *testing.T) {
	b := New()
	track := mustTrack(t, b, 100, "t")
	sec, err := b.AddSpeedSection(10, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.AddTrackRange(track, 0, 100, domain.Both); err != nil {
		t.Fatal(err)
	}
	infra, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	infra.SpeedSections[0].TrackRanges[0].End = 1
	if sec.sec.TrackRanges[0].End != 100 {
		t.Error("expected document to share no containers with the builder")
	}
}

// speedScript builds the same small infrastructure every time it is called.
func speedScript(b *Builder) error {
	track, err := b.AddTrackSection(500, "")
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		sec, err := b.AddSpeedSection(float64(10+i), "")
		if err != nil {
			return err
		}
		if err := sec.AddTrackRange(track, int64(100*i), int64(100*i+50), domain.Both); err != nil {
			return err
		}
	}
	return nil
}

func TestGenerationIsDeterministic(t *testing.T) {
	first, second := New(), New()
	if err := speedScript(first); err != nil {
		t.Fatal(err)
	}
	if err := speedScript(second); err != nil {
		t.Fatal(err)
	}
	a, err := first.Build()
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.Build()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("documents differ (-first +second):\n%s", diff)
	}

	seen := make(map[string]bool)
	for _, s := range a.SpeedSections {
		if seen[s.ID] {
			t.Errorf("duplicate generated id %s", s.ID)
		}
		seen[s.ID] = true
	}
	if !seen["speed_section.0"] || !seen["speed_section.2"] {
		t.Errorf("unexpected generated ids %v", seen)
	}
}

func TestAllocatorReset(t *testing.T) {
	a := NewAllocator()
	a.Next(domain.KindSpeedSection)
	a.Next(domain.KindSpeedSection)
	a.Next(domain.KindDetector)
	a.Reset(domain.KindSpeedSection)

	if got := a.Next(domain.KindSpeedSection); got != "speed_section.0" {
		t.Errorf("expected reset counter, got %s", got)
	}
	if got := a.Next(domain.KindDetector); got != "detector.1" {
		t.Errorf("expected untouched counter, got %s", got)
	}
	a.ResetAll()
	if got := a.Peek(domain.KindDetector); got != "detector.0" {
		t.Errorf("expected all counters reset, got %s", got)
	}
}

func TestPositionedObjectsSorted(t *testing.T) {
	b := New()
	first := mustTrack(t, b, 1000, "first")
	second := mustTrack(t, b, 1000, "second")
	for _, pos := range []int64{900, 100, 500} {
		if _, err := second.AddDetector(pos, ""); err != nil {
			t.Fatal(err)
		}
		if _, err := first.AddSignal(pos, SignalOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := first.AddDetector(700, ""); err != nil {
		t.Fatal(err)
	}

	infra, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	var detPositions, sigPositions []string
	for _, d := range infra.Detectors {
		detPositions = append(detPositions, fmt.Sprintf("%s@%d", d.Track, d.Position))
	}
	for _, s := range infra.Signals {
		sigPositions = append(sigPositions, fmt.Sprintf("%s@%d", s.Track, s.Position))
	}
	if diff := cmp.Diff([]string{"first@700", "second@100", "second@500", "second@900"}, detPositions); diff != "" {
		t.Errorf("detector order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first@100", "first@500", "first@900"}, sigPositions); diff != "" {
		t.Errorf("signal order (-want +got):\n%s", diff)
	}
}

func TestGeometry(t *testing.T) {
	b := New()
	fromCoords := mustTrack(t, b, 10, "coords")
	explicit := mustTrack(t, b, 10, "explicit")
	bare := mustTrack(t, b, 10, "bare")
	if err := fromCoords.Begin().SetCoords(-0.12, 50); err != nil {
		t.Fatal(err)
	}
	if err := fromCoords.End().SetCoords(-0.1, 50); err != nil {
		t.Fatal(err)
	}
	if err := explicit.SetGeometry(domain.Point{0, 0}, domain.Point{1, 1}, domain.Point{2, 0}); err != nil {
		t.Fatal(err)
	}

	infra, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	got, _ := infra.Track(fromCoords.ID())
	if diff := cmp.Diff(domain.MakeGeoLine(domain.Point{-0.12, 50}, domain.Point{-0.1, 50}), got.Geo); diff != "" {
		t.Errorf("geometry from coords (-want +got):\n%s", diff)
	}
	got, _ = infra.Track(explicit.ID())
	if len(got.Geo.Coordinates) != 3 {
		t.Errorf("expected 3 explicit vertices, got %v", got.Geo.Coordinates)
	}
	got, _ = infra.Track(bare.ID())
	if got.Geo != nil {
		t.Errorf("expected no geometry, got %v", got.Geo)
	}
}

func TestLogicalSignals(t *testing.T) {
	b := New()
	track := mustTrack(t, b, 100, "t")
	sig, err := track.AddSignal(50, SignalOptions{Label: "s", SightDistance: Distance(0)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sig.AddLogicalSignal("KVB", map[string]string{"Nf": "true"}); !errors.Is(err, domain.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}

	b = New()
	track = mustTrack(t, b, 100, "t")
	sig, err = track.AddSignal(50, SignalOptions{Label: "s", SightDistance: Distance(0)})
	if err != nil {
		t.Fatal(err)
	}
	bal, err := sig.AddLogicalSignal(domain.BAL, map[string]string{"Nf": "false"}, domain.BAL)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := bal.AddConditionalParameters("rt.a", map[string]string{"jaune_cli": "true"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := bal.SetDefaultParameter("jaune_cli", "true"); err != nil {
		t.Fatal(err)
	}
	if _, err := sig.AddLogicalSignal(domain.ETCSLevel2, map[string]string{"Nf": "false"}); err != nil {
		t.Fatal(err)
	}

	infra, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	got := infra.Signals[0]
	if got.SightDistance != 0 {
		t.Errorf("expected explicit zero sight distance, got %d", got.SightDistance)
	}
	if len(got.LogicalSignals) != 2 || got.LogicalSignals[1].SignalingSystem != domain.ETCSLevel2 {
		t.Fatalf("unexpected logical signals %+v", got.LogicalSignals)
	}
	first := got.LogicalSignals[0]
	if len(first.ConditionalParameters) != 2 {
		t.Errorf("expected duplicated overrides to be kept, got %d", len(first.ConditionalParameters))
	}
	if first.DefaultParameters["jaune_cli"] != "true" {
		t.Errorf("expected default parameter override, got %v", first.DefaultParameters)
	}
}

func TestOperationalPointsAndElectrification(t *testing.T) {
	b := New()
	t1 := mustTrack(t, b, 20_000, "t_1")
	t2 := mustTrack(t, b, 2_000, "t_2")
	op, err := b.AddOperationalPoint("op.start", "STA", 8700, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.AddPart(t1, 0); err != nil {
		t.Fatal(err)
	}
	if err := op.AddPart(t2, 2_001); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	b = New()
	t1 = mustTrack(t, b, 20_000, "t_1")
	t2 = mustTrack(t, b, 2_000, "t_2")
	if _, err := b.AddElectrification("electrification_1500", "1500V", t1, t2); err != nil {
		t.Fatal(err)
	}
	if _, err := t1.AddBufferStop(0, "bf.1"); err != nil {
		t.Fatal(err)
	}
	infra, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"t_1", "t_2"}, infra.Electrifications[0].Tracks); diff != "" {
		t.Errorf("electrified tracks (-want +got):\n%s", diff)
	}
	if infra.BufferStops[0].ID != "bf.1" {
		t.Errorf("unexpected buffer stop %+v", infra.BufferStops[0])
	}
}

func TestSpeedSectionTagsAndRoutes(t *testing.T) {
	b := New()
	track := mustTrack(t, b, 1_000, "t")
	sec, err := b.AddSpeedSection(80/3.6, "speed.t")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.AddTrackRange(track, 0, 1_000, domain.StartToStop); err != nil {
		t.Fatal(err)
	}
	if err := sec.SetSpeedLimitByTag("freight", 60/3.6); err != nil {
		t.Fatal(err)
	}
	if err := sec.RestrictToRoutes("rt.unknown", "rt.unknown"); err != nil {
		t.Fatalf("route ids must not be resolved: %v", err)
	}
	if err := sec.SetSpeedLimitByTag("bad", -1); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Errorf("expected negative limit to fail, got %v", err)
	}

	// the failed call above is sticky
	if _, err := b.Build(); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Fatalf("expected Build to report ErrOutOfBounds, got %v", err)
	}

	b = New()
	track = mustTrack(t, b, 1_000, "t")
	sec, err = b.AddSpeedSection(80/3.6, "speed.t")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.AddTrackRange(track, 0, 1_000, domain.StartToStop); err != nil {
		t.Fatal(err)
	}
	if err := sec.SetSpeedLimitByTag("freight", 60/3.6); err != nil {
		t.Fatal(err)
	}
	if err := sec.RestrictToRoutes("rt.a", "rt.a"); err != nil {
		t.Fatal(err)
	}
	infra, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	got := infra.SpeedSections[0]
	if diff := cmp.Diff(map[string]float64{"freight": 60 / 3.6}, got.SpeedLimitByTag); diff != "" {
		t.Errorf("speed_limit_by_tag (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"rt.a", "rt.a"}, got.OnRoutes); diff != "" {
		t.Errorf("on_routes are kept as given (-want +got):\n%s", diff)
	}
}

func TestNonFiniteValuesRejected(t *testing.T) {
	tests := []struct {
		name string
		call func(b *Builder, track *Track) error
	}{
		{"speed limit", func(b *Builder, _ *Track) error {
			_, err := b.AddSpeedSection(math.NaN(), "")
			return err
		}},
		{"speed limit by tag", func(b *Builder, _ *Track) error {
			sec, err := b.AddSpeedSection(10, "")
			if err != nil {
				return err
			}
			return sec.SetSpeedLimitByTag("freight", math.Inf(1))
		}},
		{"operational point weight", func(b *Builder, _ *Track) error {
			_, err := b.AddOperationalPoint("op", "OPX", 1, math.Inf(1))
			return err
		}},
		{"slope gradient", func(_ *Builder, track *Track) error {
			return track.AddSlope(0, 100, math.NaN())
		}},
		{"curve radius", func(_ *Builder, track *Track) error {
			return track.AddCurve(0, 100, math.Inf(-1))
		}},
		{"endpoint coordinate", func(_ *Builder, track *Track) error {
			return track.Begin().SetCoords(math.NaN(), 49.5)
		}},
		{"geometry point", func(_ *Builder, track *Track) error {
			return track.SetGeometry(domain.Point{0, 0}, domain.Point{1, math.Inf(1)})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			track := mustTrack(t, b, 1_000, "t")
			if err := tt.call(b, track); !errors.Is(err, domain.ErrOutOfBounds) {
				t.Fatalf("expected ErrOutOfBounds, got %v", err)
			}
			infra, err := b.Build()
			if !errors.Is(err, domain.ErrOutOfBounds) {
				t.Fatalf("expected Build to report ErrOutOfBounds, got %v", err)
			}
			if infra != nil {
				t.Error("expected no document from a failed build")
			}
		})
	}
}
