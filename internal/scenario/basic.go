package scenario

import (
	"fmt"

	"railgen/internal/builder"
	"railgen/internal/domain"
)

// circleInfra closes four 200 long tracks into a ring:
//
//	          +-- track_b --+
//	track_a --+             +-- track_d --> (back to track_a)
//	          +-- track_c --+
func circleInfra(b *builder.Builder) error {
	tracks := make(map[string]*builder.Track, 4)
	for _, label := range []string{"track_a", "track_b", "track_c", "track_d"} {
		t, err := b.AddTrackSection(200, label)
		if err != nil {
			return err
		}
		tracks[label] = t
	}
	a, bb, c, d := tracks["track_a"], tracks["track_b"], tracks["track_c"], tracks["track_d"]

	if _, err := b.AddLink(d.End(), a.Begin(), ""); err != nil {
		return err
	}
	if _, err := b.AddPointSwitch(a.End(), bb.Begin(), c.Begin(), "switch1"); err != nil {
		return err
	}
	if _, err := b.AddPointSwitch(d.Begin(), bb.End(), c.End(), "switch2"); err != nil {
		return err
	}
	return nil
}

// oneLine chains ten 1000 long tracks, every odd one inverted, and puts two
// detectors per track, each carrying a route delimiting BAL signal.
func oneLine(b *builder.Builder) error {
	const count = 10
	tracks := make([]*builder.Track, count)
	inverted := func(i int) bool { return i%2 == 1 }

	for i := range tracks {
		t, err := b.AddTrackSection(1000, "")
		if err != nil {
			return err
		}
		tracks[i] = t

		lo, hi := float64(1000*i), float64(1000*(i+1))
		first, second := t.End(), t.Begin()
		if inverted(i) {
			first, second = t.Begin(), t.End()
		}
		if err := first.SetCoords(lo, 0); err != nil {
			return err
		}
		if err := second.SetCoords(hi, 0); err != nil {
			return err
		}
	}

	for i := 0; i+1 < count; i++ {
		src, dst := tracks[i].End(), tracks[i+1].Begin()
		if inverted(i) {
			src = tracks[i].Begin()
		}
		if inverted(i + 1) {
			dst = tracks[i+1].End()
		}
		if _, err := b.AddLink(src, dst, ""); err != nil {
			return err
		}
	}

	placements := []struct {
		position  int64
		direction domain.ApplicableDirection
	}{
		{400, domain.StartToStop},
		{600, domain.StopToStart},
	}
	for _, t := range tracks {
		for _, p := range placements {
			det, err := t.AddDetector(p.position, "")
			if err != nil {
				return err
			}
			sig, err := b.AddSignalAtDetector(det, builder.SignalOptions{
				Direction:        p.direction,
				IsRouteDelimiter: true,
			})
			if err != nil {
				return err
			}
			if _, err := sig.AddLogicalSignal(domain.BAL, map[string]string{"Nf": domain.FlagTrue}); err != nil {
				return fmt.Errorf("signal at %s: %w", det.ID(), err)
			}
		}
	}
	return nil
}
