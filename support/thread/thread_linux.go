// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package thread

import (
	"github.com/danjacques/pixelserver/support/logging"

	"golang.org/x/sys/unix"
)

// applyHints applies opts to the calling thread.
//
// Affinity binds the thread (tid 0 = self) to the requested CPU. Priority is
// expressed as niceness; raising it typically requires CAP_SYS_NICE, so a
// refusal is expected on unprivileged hosts.
func applyHints(opts *Options, logger logging.L) {
	if opts.CPU >= 0 {
		var mask unix.CPUSet
		mask.Set(opts.CPU)
		if err := unix.SchedSetaffinity(0, &mask); err != nil {
			logger.Warnf("Failed to set CPU affinity to %d: %s", opts.CPU, err)
		}
	}

	if opts.Priority > 0 {
		if err := unix.Setpriority(unix.PRIO_PROCESS, 0, -opts.Priority); err != nil {
			logger.Warnf("Failed to set thread priority %d: %s", opts.Priority, err)
		}
	}
}
