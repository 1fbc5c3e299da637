// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import "time"

// Scheduler runs f once after d. The debounce boundary goes through it so
// tests can fire timers by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call if it has not started yet.
	Stop() bool
}

type clock struct{}

func (clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Runner starts an asynchronous operation. The default runs it on a new
// goroutine.
type Runner func(func())

func goRunner(f func()) { go f() }
