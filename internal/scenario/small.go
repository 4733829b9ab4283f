package scenario

import (
	"fmt"

	"railgen/internal/builder"
	"railgen/internal/domain"
)

// smallInfra returns a script laying out two stations joined by a main line
// with a passing loop, signalled with the given system:
//
//	TA0 ==\                                      /== TC0 ==\
//	       PA0 ======== TB0 ========== PB0 ====<           >PC0 ===== TD0 ===== TE0
//	TA1 ==/                                      \== TC1 ==/
//	op.west                                                             op.east
func smallInfra(system domain.SignalingSystem) func(b *builder.Builder) error {
	return func(b *builder.Builder) error {
		return (&smallLayout{b: b, system: system}).build()
	}
}

type smallLayout struct {
	b      *builder.Builder
	system domain.SignalingSystem
	tracks map[string]*builder.Track
}

type smallTrack struct {
	label  string
	length int64
	x0, x1 float64
	y      float64
}

func (l *smallLayout) build() error {
	l.tracks = make(map[string]*builder.Track)
	for _, st := range []smallTrack{
		{"TA0", 2_000, -0.20, -0.18, 49.501},
		{"TA1", 2_000, -0.20, -0.18, 49.499},
		{"TB0", 10_000, -0.18, -0.08, 49.5},
		{"TC0", 3_000, -0.08, -0.05, 49.5},
		{"TC1", 3_000, -0.08, -0.05, 49.498},
		{"TD0", 10_000, -0.05, 0.05, 49.5},
		{"TE0", 2_000, 0.05, 0.07, 49.5},
	} {
		t, err := l.b.AddTrackSection(st.length, st.label)
		if err != nil {
			return err
		}
		if err := t.Begin().SetCoords(st.x0, st.y); err != nil {
			return err
		}
		if err := t.End().SetCoords(st.x1, st.y); err != nil {
			return err
		}
		l.tracks[st.label] = t
	}
	tr := l.tracks

	if _, err := l.b.AddPointSwitch(tr["TB0"].Begin(), tr["TA0"].End(), tr["TA1"].End(), "PA0"); err != nil {
		return err
	}
	if _, err := l.b.AddPointSwitch(tr["TB0"].End(), tr["TC0"].Begin(), tr["TC1"].Begin(), "PB0"); err != nil {
		return err
	}
	if _, err := l.b.AddPointSwitch(tr["TD0"].Begin(), tr["TC0"].End(), tr["TC1"].End(), "PC0"); err != nil {
		return err
	}
	if _, err := l.b.AddLink(tr["TD0"].End(), tr["TE0"].Begin(), ""); err != nil {
		return err
	}

	for _, bs := range []struct {
		track    string
		position int64
	}{
		{"TA0", 0}, {"TA1", 0}, {"TE0", 2_000},
	} {
		if _, err := tr[bs.track].AddBufferStop(bs.position, "buffer_stop."+bs.track); err != nil {
			return err
		}
	}

	if err := l.profile(); err != nil {
		return err
	}
	if err := l.signals(); err != nil {
		return err
	}
	return l.stations()
}

// profile adds slopes, curves, speed limits and electrification.
func (l *smallLayout) profile() error {
	tr := l.tracks
	if err := tr["TB0"].AddSlope(2_000, 6_000, 5); err != nil {
		return err
	}
	if err := tr["TD0"].AddSlope(4_000, 8_000, -3); err != nil {
		return err
	}
	if err := tr["TC1"].AddCurve(0, 500, -1_200); err != nil {
		return err
	}
	if err := tr["TC1"].AddCurve(2_500, 3_000, 1_200); err != nil {
		return err
	}

	mainLine, err := l.b.AddSpeedSection(160/3.6, "speed.main")
	if err != nil {
		return err
	}
	for _, label := range []string{"TB0", "TC0", "TD0"} {
		if err := mainLine.AddTrackRange(tr[label], 0, tr[label].Length(), domain.Both); err != nil {
			return err
		}
	}
	if err := mainLine.SetSpeedLimitByTag("MA100", 100/3.6); err != nil {
		return err
	}

	loop, err := l.b.AddSpeedSection(60/3.6, "speed.loop")
	if err != nil {
		return err
	}
	if err := loop.AddTrackRange(tr["TC1"], 0, tr["TC1"].Length(), domain.Both); err != nil {
		return err
	}

	_, err = l.b.AddElectrification("electrification.25000", "25000V", l.b.Tracks()...)
	return err
}

// signals places route delimiting signals at both ends of every block section
// and intermediate block signals every 2500 along TB0 and TD0.
func (l *smallLayout) signals() error {
	type placement struct {
		track     string
		position  int64
		direction domain.ApplicableDirection
		delimiter bool
	}
	var placements []placement
	for _, label := range []string{"TA0", "TA1"} {
		placements = append(placements, placement{label, 1_800, domain.StartToStop, true})
	}
	for _, label := range []string{"TB0", "TC0", "TC1", "TD0"} {
		length := l.tracks[label].Length()
		placements = append(placements,
			placement{label, 200, domain.StopToStart, true},
			placement{label, length - 200, domain.StartToStop, true},
		)
	}
	for _, label := range []string{"TB0", "TD0"} {
		for pos := int64(2_500); pos < l.tracks[label].Length()-200; pos += 2_500 {
			placements = append(placements, placement{label, pos, domain.StartToStop, false})
		}
	}
	placements = append(placements, placement{"TE0", 200, domain.StopToStart, true})

	for _, p := range placements {
		t := l.tracks[p.track]
		suffix := fmt.Sprintf("%s.%d", p.track, p.position)
		det, err := t.AddDetector(p.position, "det."+suffix)
		if err != nil {
			return err
		}
		sig, err := l.b.AddSignalAtDetector(det, builder.SignalOptions{
			Label:            "sig." + suffix,
			Direction:        p.direction,
			IsRouteDelimiter: p.delimiter,
		})
		if err != nil {
			return err
		}
		if _, err := sig.AddLogicalSignal(l.system, signalSettings(l.system, p.delimiter), l.system); err != nil {
			return err
		}
	}
	return nil
}

func (l *smallLayout) stations() error {
	west, err := l.b.AddOperationalPoint("op.west", "WST", 87100, 1)
	if err != nil {
		return err
	}
	for _, label := range []string{"TA0", "TA1"} {
		if err := west.AddPart(l.tracks[label], 1_000); err != nil {
			return err
		}
	}
	loop, err := l.b.AddOperationalPoint("op.loop", "LOP", 87200, 0.5)
	if err != nil {
		return err
	}
	for _, label := range []string{"TC0", "TC1"} {
		if err := loop.AddPart(l.tracks[label], 1_500); err != nil {
			return err
		}
	}
	east, err := l.b.AddOperationalPoint("op.east", "EST", 87300, 1)
	if err != nil {
		return err
	}
	return east.AddPart(l.tracks["TE0"], 1_000)
}

// signalSettings fills every setting of the system, Nf following the route delimiter flag.
func signalSettings(system domain.SignalingSystem, routeDelimiter bool) map[string]string {
	settings := make(map[string]string)
	for _, name := range system.Settings() {
		settings[name] = domain.FlagFalse
	}
	if routeDelimiter {
		settings["Nf"] = domain.FlagTrue
	}
	return settings
}
