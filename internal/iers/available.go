//go:build !noprecession

package iers

const precessionAvailable = true
