//go:build debug

package domain

const debugInvariants = true
