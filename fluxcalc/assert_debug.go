//go:build debug

package fluxcalc

const debugChecks = true
