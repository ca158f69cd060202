// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	packetsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pixelserver_packets_received",
		Help: "Count of datagrams received on the pixel data port.",
	})

	packetsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pixelserver_packets_dropped",
		Help: "Count of malformed datagrams dropped by the receiver.",
	})

	commandsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pixelserver_commands_received",
		Help: "Count of pusher command packets passed to the output device.",
	})

	framesFlushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pixelserver_frames_flushed",
		Help: "Count of frames flushed to the output device.",
	})

	beaconBroadcasts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pixelserver_beacon_broadcasts",
		Help: "Count of discovery packets broadcast by the beacon.",
	})

	beaconErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pixelserver_beacon_errors",
		Help: "Count of discovery broadcast failures.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		packetsReceived,
		packetsDropped,
		commandsReceived,
		framesFlushed,
		beaconBroadcasts,
		beaconErrors,
	)
}
