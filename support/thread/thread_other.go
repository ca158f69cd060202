// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build !linux

package thread

import (
	"github.com/danjacques/pixelserver/support/logging"
)

// applyHints is a no-op on platforms without scheduling hint support.
func applyHints(opts *Options, logger logging.L) {
	if opts.CPU >= 0 || opts.Priority > 0 {
		logger.Debugf("Thread scheduling hints are not supported on this platform.")
	}
}
