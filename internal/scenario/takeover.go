package scenario

import (
	"fmt"
	"strings"

	"railgen/internal/builder"
	"railgen/internal/domain"
)

// takeover lays out a main line with a takeover track alongside t_2:
//
//	                           t_takeover
//	                        _>__>______>>__
//	         t_1           /    op.center  \          t_3
//	op___>___>___>___>___s.1______>___op___s.2___>___>___>___>___op
//	op.start                     t_2                          op.end
//
// Signals stand every 2000 on t_1 and t_3; each signal has a detector
// named after it.
func takeover(b *builder.Builder) error {
	type opDef struct {
		label, trigram string
		uic            int64
		weight         float64
	}
	ops := make(map[string]*builder.OperationalPoint)
	for _, o := range []opDef{
		{"op.start", "STA", 8700, 1},
		{"op.center", "CEN", 8711, 0.5},
		{"op.takeover", "TAK", 8733, 0.5},
		{"op.end", "END", 8722, 1},
	} {
		op, err := b.AddOperationalPoint(o.label, o.trigram, o.uic, o.weight)
		if err != nil {
			return err
		}
		ops[o.label] = op
	}

	t1, err := b.AddTrackSection(20_000, "t_1")
	if err != nil {
		return err
	}
	t2, err := b.AddTrackSection(2_000, "t_2")
	if err != nil {
		return err
	}
	tTakeover, err := b.AddTrackSection(2_100, "t_takeover")
	if err != nil {
		return err
	}
	t3, err := b.AddTrackSection(20_000, "t_3")
	if err != nil {
		return err
	}

	parts := []struct {
		op       string
		track    *builder.Track
		position int64
	}{
		{"op.start", t1, 0},
		{"op.end", t3, 20_000},
		{"op.center", t2, 1_500},
		{"op.takeover", tTakeover, 1_500},
	}
	for _, p := range parts {
		if err := ops[p.op].AddPart(p.track, p.position); err != nil {
			return err
		}
	}
	if _, err := t1.AddBufferStop(0, "bf.1"); err != nil {
		return err
	}
	if _, err := t3.AddBufferStop(20_000, "bf.3"); err != nil {
		return err
	}

	if _, err := b.AddElectrification("electrification_1500", "1500V", t1, t2, t3, tTakeover); err != nil {
		return err
	}
	speed, err := b.AddSpeedSection(30/3.6, "")
	if err != nil {
		return err
	}
	if err := speed.AddTrackRange(tTakeover, 0, tTakeover.Length(), domain.Both); err != nil {
		return err
	}

	if err := takeoverSignals(t1, t2, tTakeover, t3); err != nil {
		return err
	}

	if _, err := b.AddPointSwitch(t1.End(), t2.Begin(), tTakeover.Begin(), "s.1"); err != nil {
		return err
	}
	if _, err := b.AddPointSwitch(t3.Begin(), t2.End(), tTakeover.End(), "s.2"); err != nil {
		return err
	}

	const latMain, latTakeover = 50, 49.999
	coords := []struct {
		ep   *builder.Endpoint
		x, y float64
	}{
		{t1.Begin(), -0.12, latMain},
		{t1.End(), -0.1, latMain},
		{t2.Begin(), -0.1, latMain},
		{t2.End(), -0.09, latMain},
		{t3.Begin(), -0.09, latMain},
		{t3.End(), -0.07, latMain},
		{tTakeover.Begin(), -0.1, latTakeover},
		{tTakeover.End(), -0.09, latTakeover},
	}
	for _, c := range coords {
		if err := c.ep.SetCoords(c.x, c.y); err != nil {
			return err
		}
	}
	return nil
}

func takeoverSignals(t1, t2, tTakeover, t3 *builder.Track) error {
	sight := domain.DefaultSightDistance
	type signalDef struct {
		name           string
		track          *builder.Track
		position       int64
		routeDelimiter bool
		sight          int64
	}
	defs := []signalDef{
		{"s.2.1500", t2, 1_500, false, sight},
		{"s.takeover.start.1", tTakeover, 1, true, sight},
		// start.1 -> start.2 is at least as long as the overtaken train
		{"s.takeover.start.2", tTakeover, 500, true, sight},
		// start.2 -> end.1 leaves room to almost stop and restart under the 30km/h limit
		{"s.takeover.end.1", tTakeover, 2_000 - sight - 2, true, 0},
		// end.1 -> end.2 stops propagation to the main track
		{"s.takeover.end.2", tTakeover, 2_000 - sight - 1, true, 0},
	}
	for offset := int64(0); offset < 20_000; offset += 2_000 {
		defs = append(defs,
			signalDef{fmt.Sprintf("s.1.%d", offset), t1, offset, false, sight},
			signalDef{fmt.Sprintf("s.3.%d", offset), t3, offset, false, sight},
		)
	}

	for _, d := range defs {
		det, err := d.track.AddDetector(d.position, "det."+strings.TrimPrefix(d.name, "s."))
		if err != nil {
			return err
		}
		sig, err := d.track.AddSignal(det.Position(), builder.SignalOptions{
			Label:            d.name,
			Direction:        domain.StartToStop,
			IsRouteDelimiter: d.routeDelimiter,
			SightDistance:    builder.Distance(d.sight),
		})
		if err != nil {
			return err
		}
		nf := domain.FlagFalse
		if d.routeDelimiter {
			nf = domain.FlagTrue
		}
		if _, err := sig.AddLogicalSignal(domain.BAL, map[string]string{"Nf": nf}); err != nil {
			return err
		}
	}
	return nil
}
