//go:build !debug

package fluxcalc

const debugChecks = false
