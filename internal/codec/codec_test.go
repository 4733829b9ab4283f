package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"railgen/internal/builder"
	"railgen/internal/domain"
)

// sampleInfra builds a small infrastructure touching every entity kind.
func sampleInfra(t *testing.T) *domain.Infra {
	t.Helper()
	b := builder.New()
	t1, err := b.AddTrackSection(1000, "t_1")
	require.NoError(t, err)
	t2, err := b.AddTrackSection(500, "t_2")
	require.NoError(t, err)
	t3, err := b.AddTrackSection(500, "t_3")
	require.NoError(t, err)
	t4, err := b.AddTrackSection(800, "t_4")
	require.NoError(t, err)

	require.NoError(t, t1.Begin().SetCoords(-0.12, 49.5))
	require.NoError(t, t1.End().SetCoords(-0.11, 49.5))
	require.NoError(t, t1.AddSlope(0, 400, 5.5))
	require.NoError(t, t2.AddCurve(100, 200, -1500))

	_, err = b.AddPointSwitch(t1.End(), t2.Begin(), t3.Begin(), "sw")
	require.NoError(t, err)
	_, err = b.AddLink(t2.End(), t4.Begin(), "")
	require.NoError(t, err)

	det, err := t1.AddDetector(600, "det.1")
	require.NoError(t, err)
	sig, err := b.AddSignalAtDetector(det, builder.SignalOptions{Label: "sig.1", IsRouteDelimiter: true})
	require.NoError(t, err)
	bal, err := sig.AddLogicalSignal(domain.BAL, map[string]string{"Nf": "true"}, domain.BAL)
	require.NoError(t, err)
	require.NoError(t, bal.AddConditionalParameters("rt.1", map[string]string{"jaune_cli": "true"}))
	_, err = t1.AddSignal(200, builder.SignalOptions{Direction: domain.StopToStart, SightDistance: builder.Distance(250)})
	require.NoError(t, err)

	sec, err := b.AddSpeedSection(30/3.6, "speed.1")
	require.NoError(t, err)
	require.NoError(t, sec.AddTrackRange(t2, 0, 500, domain.Both))
	require.NoError(t, sec.SetSpeedLimitByTag("freight", 20))

	_, err = b.AddElectrification("el.1", "1500V", t1, t2)
	require.NoError(t, err)
	op, err := b.AddOperationalPoint("op.1", "ST1", 87001, 1)
	require.NoError(t, err)
	require.NoError(t, op.AddPart(t1, 100))
	_, err = t4.AddBufferStop(800, "bf.1")
	require.NoError(t, err)

	infra, err := b.Build()
	require.NoError(t, err)
	return infra
}

func TestRailJSONRoundTrip(t *testing.T) {
	infra := sampleInfra(t)
	c := NewRailJSONCodec()

	var buf bytes.Buffer
	require.NoError(t, c.Export(infra, &buf))
	got, err := c.Parse(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(infra, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	infra := sampleInfra(t)
	c := NewYAMLCodec()

	var buf bytes.Buffer
	require.NoError(t, c.Export(infra, &buf))
	require.Contains(t, buf.String(), "signaling_system: BAL")
	require.Contains(t, buf.String(), "length: 1000\n")

	got, err := c.Parse(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(infra, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportShape(t *testing.T) {
	infra := sampleInfra(t)
	data, err := Marshal(infra)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{
		"version", "track_sections", "switches", "links", "detectors", "signals",
		"speed_sections", "electrifications", "operational_points", "buffer_stops",
		"routes", "neutral_sections", "extended_switch_types",
	} {
		require.Contains(t, doc, key)
	}
	require.Equal(t, domain.RailJSONVersion, doc["version"])
	require.Empty(t, doc["routes"])

	el := doc["electrifications"].([]any)[0].(map[string]any)
	ranges := el["track_ranges"].([]any)
	require.Len(t, ranges, 2)
	require.Equal(t, map[string]any{
		"track": "t_2", "begin": float64(0), "end": float64(500), "applicable_directions": "BOTH",
	}, ranges[1])

	op := doc["operational_points"].([]any)[0].(map[string]any)
	ext := op["extensions"].(map[string]any)
	require.Equal(t, "ST1", ext["sncf"].(map[string]any)["trigram"])
	require.Equal(t, float64(87001), ext["identifier"].(map[string]any)["uic"])

	require.True(t, strings.Contains(string(data), `"position":600`), "offsets must be integers")
}

func TestExportEmptyInfra(t *testing.T) {
	infra, err := builder.New().Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRailJSONCodec().Export(infra, &buf))
	require.NotContains(t, buf.String(), "null")
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "detector past track end",
			doc:  `{"version":"3.4.13","track_sections":[{"id":"t","length":10}],"detectors":[{"id":"d","track":"t","position":11}]}`,
			want: domain.ErrOutOfBounds,
		},
		{
			name: "unknown signaling system",
			doc: `{"track_sections":[{"id":"t","length":10}],"signals":[{"id":"s","track":"t","position":1,
				"direction":"BOTH","logical_signals":[{"signaling_system":"KVB","settings":{}}]}]}`,
			want: domain.ErrUnknownVariant,
		},
		{
			name: "partial electrification",
			doc: `{"track_sections":[{"id":"t","length":10}],"electrifications":[{"id":"e","voltage":"25000V",
				"track_ranges":[{"track":"t","begin":2,"end":10,"applicable_directions":"BOTH"}]}]}`,
			want: domain.ErrOutOfBounds,
		},
		{
			name: "endpoint shared by link and switch",
			doc: `{"track_sections":[{"id":"a","length":1},{"id":"b","length":1},{"id":"c","length":1}],
				"links":[{"id":"l","src":{"track":"a","endpoint":"END"},"dst":{"track":"b","endpoint":"BEGIN"}}],
				"switches":[{"id":"s","switch_type":"point_switch","ports":{
					"A":{"track":"a","endpoint":"END"},"B1":{"track":"b","endpoint":"END"},"B2":{"track":"c","endpoint":"BEGIN"}}}]}`,
			want: domain.ErrEndpointConsumed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRailJSONCodec().Parse(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestExternalInputs(t *testing.T) {
	in := NewExternalInputs()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"electrical_profiles":{"levels":[],"level_order":{}}}`, string(data))

	require.NoError(t, in.Set("neutral_zones", []string{"nz.1"}))
	require.Equal(t, []string{"electrical_profiles", "neutral_zones"}, in.Names())

	var back ExternalInputs
	require.NoError(t, json.Unmarshal([]byte(`{"electrical_profiles":{"levels":[{"value":"A"}],"level_order":{"1500V":["A"]}},"extra":42}`), &back))
	raw, ok := back.Section("extra")
	require.True(t, ok)
	require.Equal(t, "42", string(raw))

	profiles, err := back.ElectricalProfiles()
	require.NoError(t, err)
	require.Len(t, profiles.Levels, 1)
	require.Equal(t, []string{"A"}, profiles.LevelOrder["1500V"])
}

func TestWriteGeneration(t *testing.T) {
	infra := sampleInfra(t)
	dir := filepath.Join(t.TempDir(), "sample")

	require.NoError(t, WriteGeneration(dir, infra, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{InfraFileName, ExternalInputsFileName}, names)

	got, inputs, err := ReadGeneration(dir)
	require.NoError(t, err)
	if diff := cmp.Diff(infra, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("generation mismatch (-want +got):\n%s", diff)
	}
	_, ok := inputs.Section(ElectricalProfilesSection)
	require.True(t, ok)
}

func TestWriteExport(t *testing.T) {
	infra := sampleInfra(t)
	dir := t.TempDir()

	path, err := WriteExport(dir, infra, NewYAMLCodec())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "infra.yaml"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := NewYAMLCodec().Parse(f)
	require.NoError(t, err)
	if diff := cmp.Diff(infra, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("yaml export mismatch (-want +got):\n%s", diff)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".railgen-*"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(sampleInfra(t))
	require.NoError(t, err)
	b, err := Fingerprint(sampleInfra(t))
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	empty, err := builder.New().Build()
	require.NoError(t, err)
	c, err := Fingerprint(empty)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestExporterFor(t *testing.T) {
	e, err := ExporterFor("yaml")
	require.NoError(t, err)
	require.Equal(t, "yaml", e.Format())

	_, err = ExporterFor("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
	require.Equal(t, []string{"json", "yaml"}, Formats())
}
