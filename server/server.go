// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package server

import (
	"net"
	"sync"
	"time"

	"github.com/danjacques/pixelserver/pixel"
	"github.com/danjacques/pixelserver/protocol"
	"github.com/danjacques/pixelserver/protocol/pixelpusher"
	"github.com/danjacques/pixelserver/support/logging"
	"github.com/danjacques/pixelserver/support/network"
	"github.com/danjacques/pixelserver/support/thread"

	"github.com/pkg/errors"
)

// Discovery header constants advertised by this server.
const (
	// VendorID is the vendor identifier placed in the discovery header.
	VendorID uint16 = 3
	// ProductID is the product identifier placed in the discovery header.
	ProductID uint16 = 0
	// LinkSpeed is the advertised link speed, in bits per second (10MBit).
	LinkSpeed uint32 = 10000000
)

// The network might not be up yet when we are started from an init script,
// so the interface probe is retried for up to a minute.
var (
	probeAttempts      = 60
	probeRetryInterval = time.Second
)

// Server is a running PixelPusher server instance.
//
// At most one Server exists per process; it is created by Start and
// destroyed by Shutdown.
type Server struct {
	logger   logging.L
	beacon   *beacon
	receiver *receiver
}

var (
	runningMu sync.Mutex
	running   *Server
)

// Start probes the network, assembles the discovery state for device, and
// starts the beacon and receiver threads.
//
// The server borrows device; it is never closed. Exactly one server may run
// per process: a second Start while one is running fails.
//
// A non-nil error means nothing was started and no partial instance is left
// behind.
func Start(opts Options, device OutputDevice) error {
	runningMu.Lock()
	if running != nil {
		runningMu.Unlock()
		return errors.New("a PixelPusher server is already running")
	}

	// Reserve the process-wide slot while we initialize.
	srv := &Server{logger: logging.Must(opts.Logger)}
	running = srv
	runningMu.Unlock()

	if err := srv.init(opts, device); err != nil {
		runningMu.Lock()
		running = nil
		runningMu.Unlock()
		return err
	}
	return nil
}

// Shutdown stops the running server, if there is one.
//
// Shutdown blocks until both threads have exited: at most one beacon period
// plus one receiver read timeout.
func Shutdown() {
	runningMu.Lock()
	defer runningMu.Unlock()

	if running == nil {
		return
	}
	running.stop()
	running = nil
}

func (s *Server) init(opts Options, device OutputDevice) error {
	if err := opts.validate(); err != nil {
		return err
	}

	numStrips := device.NumStrips()
	pixelsPerStrip := device.NumPixelsPerStrip()
	switch {
	case numStrips < 1 || numStrips > 255:
		return errors.Errorf("strip count %d out of range (1...255)", numStrips)
	case pixelsPerStrip < 1 || pixelsPerStrip > 65535:
		return errors.Errorf("pixels per strip %d out of range (1...65535)", pixelsPerStrip)
	}

	// Whatever fits in one packet after the sequence number, but not more
	// than one full frame.
	maxStrips := maxStripsPerPacket(opts.UDPPacketSize, pixelsPerStrip, numStrips)
	if maxStrips == 0 {
		return errors.Errorf(
			"packet size limit (%d bytes) smaller than needed to transmit one row (%d bytes)",
			opts.UDPPacketSize-4, 1+(pixel.Bytes*pixelsPerStrip))
	}

	info, err := s.probeNetwork(opts.NetworkInterface)
	if err != nil {
		return err
	}
	s.logger.Infof("Interface %s: IP: %s; MAC: %s.", opts.NetworkInterface, info.IP, info.HardwareAddr)

	header := protocol.DeviceHeader{
		DeviceType:       protocol.PixelPusherDeviceType,
		ProtocolVersion:  protocol.DefaultProtocolVersion,
		VendorID:         VendorID,
		ProductID:        ProductID,
		SoftwareRevision: pixelpusher.SoftwareRevision,
		LinkSpeed:        LinkSpeed,
	}
	header.SetHardwareAddr(info.HardwareAddr)
	header.SetIP4Address(info.IP)

	base := pixelpusher.Base{
		BaseHeader: pixelpusher.BaseHeader{
			StripsAttached:     uint8(numStrips),
			MaxStripsPerPacket: uint8(maxStrips),
			PixelsPerStrip:     uint16(pixelsPerStrip),
			UpdatePeriod:       1000, // initial assumption
			PowerTotal:         1,
			ControllerOrdinal:  int32(opts.Controller),
			GroupOrdinal:       int32(opts.Group),
			MyPort:             uint16(pixelpusher.ListenPort),
		},
		StripFlags: make([]pixelpusher.StripFlags, numStrips),
	}
	if opts.ArtNetUniverse >= 0 && opts.ArtNetChannel >= 0 {
		base.ArtNetUniverse = uint16(opts.ArtNetUniverse)
		base.ArtNetChannel = uint16(opts.ArtNetChannel)
	}
	// SFLAG_LOGARITHMIC is the only strip flag this server advertises; the
	// others (RGBOW, WIDEPIXELS, MONOCHROME, ...) describe strip hardware it
	// doesn't model and stay zero.
	for i := range base.StripFlags {
		base.StripFlags[i].SetLogarithmic(opts.IsLogarithmic)
	}

	container := pixelpusher.Container{
		Base: &base,
		Ext: pixelpusher.Ext{
			Segments: 1,
		},
	}

	s.logger.Infof("Display: %dx%d (%d pixels each on %d strips); accepting max %d strips per packet (with UDP packet limit %d).",
		pixelsPerStrip, numStrips, pixelsPerStrip, numStrips,
		maxStrips, opts.UDPPacketSize)

	// Open both sockets before starting anything, so a misconfigured host
	// fails startup cleanly.
	sender, err := network.UDP4BroadcastSender(protocol.DiscoveryUDPPort)
	if err != nil {
		return errors.Wrap(err, "opening discovery broadcast socket")
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP:   net.IPv4zero,
		Port: int(pixelpusher.ListenPort),
	})
	if err != nil {
		_ = sender.Close()
		return errors.Wrapf(err, "binding pixel data port %d", pixelpusher.ListenPort)
	}

	s.beacon = newBeacon(s.logger, sender, header, &container)
	s.receiver = newReceiver(s.logger, conn, device, s.beacon)

	// Start threads, choosing priority and CPU affinity. The beacon gets an
	// elevated priority so telemetry broadcasts stay accurate under load.
	thread.Run(thread.Options{CPU: 1, Logger: s.logger}, s.receiver.run)
	thread.Run(thread.Options{Priority: 5, CPU: 2, Logger: s.logger}, s.beacon.run)
	return nil
}

func (s *Server) probeNetwork(ifaceName string) (*network.InterfaceInfo, error) {
	var lastErr error
	for i := 0; i < probeAttempts; i++ {
		if i > 0 {
			time.Sleep(probeRetryInterval)
		}

		info, err := network.ProbeInterface(ifaceName)
		if err == nil {
			return info, nil
		}
		lastErr = err
	}
	return nil, errors.Wrapf(lastErr, "couldn't listen on network interface %q", ifaceName)
}

func (s *Server) stop() {
	s.receiver.stop()
	s.beacon.stop()
}

// maxStripsPerPacket computes how many strip records fit in a single pixel
// packet of the given size, capped at the device's strip count.
func maxStripsPerPacket(udpPacketSize, pixelsPerStrip, numStrips int) int {
	usable := udpPacketSize - 4 // 4 bytes seq#
	perStrip := 1 + (pixel.Bytes * pixelsPerStrip)

	strips := usable / perStrip
	if strips > numStrips {
		strips = numStrips
	}
	return strips
}
