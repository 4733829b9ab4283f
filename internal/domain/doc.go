// Package domain defines the railway infrastructure entities emitted by railgen.
//
// The types in this package describe a finished, validated infrastructure: the
// document that is serialized to RailJSON and handed to the simulation backend.
// Construction happens elsewhere (see the builder package); values here are
// treated as immutable once they are part of an Infra.
//
// # Topology
//
// TrackSection is the addressable unit of track length. Each track section has
// two extremities (BEGIN and END) referenced through TrackEndpoint. Links join
// two endpoints of distinct tracks; switches bind one endpoint per port of their
// SwitchType.
//
// # Attached objects
//
// Detectors, signals, buffer stops and operational point parts are positioned
// on a track at an integer offset in [0, length]. Speed sections carry
// directional track ranges; electrifications cover whole tracks.
//
// # Signaling systems
//
// A signal bundles one or more LogicalSignal values. The set of signaling
// systems is closed (BAL, BAPR, TVM300, TVM430, ETCS_LEVEL2) and every system
// owns the schema of its settings and parameters.
//
// # Errors
//
// Validation failures are reported as *ValidationError wrapping one of the
// package sentinels, so callers can match with errors.Is and still print the
// entity kind, id and field that caused the failure.
package domain
