// Package aggregates commits workflow decisions to the store.
//
// The pure workflow package decides what changes; the aggregate here applies
// that change inside one transaction, guarding each row by its lock version and
// allocating ticket codes from the persisted sequence.
package aggregates
