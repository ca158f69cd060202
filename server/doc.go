// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package server implements the device side of the PixelPusher protocol.
//
// A running server impersonates a PixelPusher on the local network: it
// broadcasts a discovery beacon once per second and accepts pixel data
// pushed to the PixelPusher data port, handing decoded frames to a
// user-supplied OutputDevice.
//
// The server runs two long-lived loops, each on its own locked OS thread:
// the beacon, which owns the advertised telemetry, and the receiver, which
// decodes datagrams and drives the output device. The receiver reports
// per-packet statistics to the beacon through a mutex-guarded entry point;
// the output device itself is only ever touched from the receiver and need
// not be safe for concurrent use.
package server
