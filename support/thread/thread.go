// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package thread runs functions on dedicated OS threads with best-effort
// scheduling hints.
package thread

import (
	"runtime"

	"github.com/danjacques/pixelserver/support/logging"
)

// Options configures the thread a function runs on.
type Options struct {
	// Priority is a scheduling priority hint. Values > 0 request elevated
	// scheduling for the thread; 0 leaves it at ordinary userspace priority.
	Priority int

	// CPU, if >= 0, pins the thread to the CPU with that index.
	CPU int

	// Logger, if not nil, receives hint application failures.
	Logger logging.L
}

// Run invokes fn on its own goroutine, locked to an OS thread for fn's
// lifetime, after applying opts.
//
// Scheduling hints are advisory: a hint that the OS rejects (insufficient
// privilege, no such CPU) is logged and ignored, and fn runs regardless.
func Run(opts Options, fn func()) {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		applyHints(&opts, logging.Must(opts.Logger))
		fn()
	}()
}
