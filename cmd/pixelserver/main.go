// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Command pixelserver runs a PixelPusher server that renders pushed frames
// as text.
//
// It impersonates a PixelPusher device on the local network: controllers
// discover it through its broadcast beacon and push pixel data to it, which
// is rendered to stdout. It exists as a demonstration of embedding the
// server package; real deployments supply their own output device.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/danjacques/pixelserver/demo/textdevice"
	"github.com/danjacques/pixelserver/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// config is the YAML-loadable server configuration.
type config struct {
	NetworkInterface string `yaml:"network_interface"`
	UDPPacketSize    int    `yaml:"udp_packet_size"`
	IsLogarithmic    bool   `yaml:"is_logarithmic"`
	Group            int    `yaml:"group"`
	Controller       int    `yaml:"controller"`
	ArtNetUniverse   int    `yaml:"artnet_universe"`
	ArtNetChannel    int    `yaml:"artnet_channel"`

	Strips         int `yaml:"strips"`
	PixelsPerStrip int `yaml:"pixels_per_strip"`
}

func defaultConfig() config {
	opts := server.DefaultOptions()
	return config{
		NetworkInterface: opts.NetworkInterface,
		UDPPacketSize:    opts.UDPPacketSize,
		IsLogarithmic:    opts.IsLogarithmic,
		Group:            opts.Group,
		Controller:       opts.Controller,
		ArtNetUniverse:   opts.ArtNetUniverse,
		ArtNetChannel:    opts.ArtNetChannel,

		Strips:         4,
		PixelsPerStrip: 128,
	}
}

func loadConfigYAML(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var (
	configPath  = ""
	metricsAddr = ""
	verbose     = false

	cfg = defaultConfig()
)

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVarP(&configPath, "config", "c", configPath,
		"If specified, load configuration from a YAML file at this path, overriding flags.")

	pf.StringVar(&metricsAddr, "metrics_addr", metricsAddr,
		"If specified, serve Prometheus metrics over HTTP at this address.")

	pf.BoolVarP(&verbose, "verbose", "v", verbose,
		"Enable debug logging.")

	pf.StringVarP(&cfg.NetworkInterface, "interface", "i", cfg.NetworkInterface,
		"The network interface whose address is advertised in the beacon.")

	pf.IntVar(&cfg.UDPPacketSize, "udp_packet_size", cfg.UDPPacketSize,
		"Maximum pixel packet size advertised to controllers.")

	pf.BoolVar(&cfg.IsLogarithmic, "logarithmic", cfg.IsLogarithmic,
		"Advertise strips with a logarithmic response.")

	pf.IntVar(&cfg.Group, "group", cfg.Group,
		"The PixelPusher group ordinal.")

	pf.IntVar(&cfg.Controller, "controller", cfg.Controller,
		"The PixelPusher controller ordinal.")

	pf.IntVar(&cfg.ArtNetUniverse, "artnet_universe", cfg.ArtNetUniverse,
		"ArtNet universe; advertised only if channel is also >= 0.")

	pf.IntVar(&cfg.ArtNetChannel, "artnet_channel", cfg.ArtNetChannel,
		"ArtNet channel; advertised only if universe is also >= 0.")

	pf.IntVar(&cfg.Strips, "strips", cfg.Strips,
		"Controls the number of strips attached.")

	pf.IntVar(&cfg.PixelsPerStrip, "pixels_per_strip", cfg.PixelsPerStrip,
		"Controls the number of LEDs per strip.")
}

var rootCmd = &cobra.Command{
	Use:          "pixelserver",
	Short:        "Impersonate a PixelPusher device, rendering frames as text.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewDevelopmentConfig()
		if !verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
		zl, err := zapCfg.Build()
		if err != nil {
			return err
		}
		defer zl.Sync()
		logger := zl.Sugar()

		if configPath != "" {
			loaded, err := loadConfigYAML(configPath)
			if err != nil {
				logger.Errorf("Failed to load config from %q: %s", configPath, err)
				return err
			}
			cfg = *loaded
		}

		if metricsAddr != "" {
			server.RegisterMonitoring(prometheus.DefaultRegisterer)
			go func() {
				if err := http.ListenAndServe(metricsAddr, promhttp.Handler()); err != nil {
					logger.Errorf("Metrics endpoint failed: %s", err)
				}
			}()
		}

		device := textdevice.Device{
			Strips:         cfg.Strips,
			PixelsPerStrip: cfg.PixelsPerStrip,
			Out:            os.Stdout,
			Logger:         logger,
		}

		opts := server.Options{
			NetworkInterface: cfg.NetworkInterface,
			UDPPacketSize:    cfg.UDPPacketSize,
			IsLogarithmic:    cfg.IsLogarithmic,
			Group:            cfg.Group,
			Controller:       cfg.Controller,
			ArtNetUniverse:   cfg.ArtNetUniverse,
			ArtNetChannel:    cfg.ArtNetChannel,
			Logger:           logger,
		}

		if err := server.Start(opts, &device); err != nil {
			logger.Errorf("Failed to start server: %s", err)
			return err
		}
		defer server.Shutdown()

		sigC := make(chan os.Signal, 1)
		signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
		sig := <-sigC
		logger.Infof("Received signal %s; shutting down.", sig)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
