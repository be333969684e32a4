// Package output renders command results as YAML, JSON or plain text.
//
// YAML is the default: keys are self-describing, so an agent reading the
// output needs no schema. JSON carries the same structure. Text is the
// bare line form of results that have one, such as an assembled context,
// and falls back to YAML for everything else.
package output
