// Package daemon wires the resolution engine together and runs it as a
// long-lived process: single-instance locking, the HTTP API surface, and
// the janitor's sweep loop. The daemon owns collaborator lifecycles; the
// resolver and cascade stay oblivious to process concerns.
package daemon
