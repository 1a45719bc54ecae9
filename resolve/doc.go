// Package resolve matches candidate entities against the vault and decides
// create versus merge versus human review. Resolution reads an immutable
// index snapshot, so outcomes within one batch are order-independent.
package resolve
