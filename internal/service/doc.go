// Package service implements the generation workflow of railgen.
//
// GenerationService runs a script against a fresh builder, writes the
// resulting RailJSON document and its external inputs under a directory named
// after the script, records the run in the catalog and, when an import target
// is configured, uploads the document to the infrastructure service.
//
// # Event System
//
// Every generation, failure and import is published on an EventBus. The CLI
// subscribes to report progress and the watcher publishes script reloads.
package service
