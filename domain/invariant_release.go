//go:build !debug

package domain

const debugInvariants = false
