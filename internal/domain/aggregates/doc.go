// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts here describe write boundaries whose invariants must be enforced
// atomically. They carry no persistence or transport details.
package aggregates
