//go:build noprecession

package iers

const precessionAvailable = false
