// Package quantum provides the core value types for pulse-level qubit
// simulation: complex state vectors and dense complex operators, plus
// construction of the fixed Pauli operator basis shared by all models.
//
// States and operators are plain values. Nothing in this package mutates
// its inputs; callers own every returned slice and matrix.
package quantum
