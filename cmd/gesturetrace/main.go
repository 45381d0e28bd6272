// SPDX-License-Identifier: Unlicense OR MIT

// Command gesturetrace replays recorded touch traces, or the live
// events of a Linux touch device, through a gesture Router and logs
// the recognized gestures.
//
// Usage:
//
//	gesturetrace [flags] trace.yaml...
//	gesturetrace [flags] -device /dev/input/event3
//
// Trace steps with expectations are checked; gesturetrace exits with
// status 1 if any of them fails.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"touchflow.org/config"
	"touchflow.org/gesture"
	"touchflow.org/internal/logging"
	"touchflow.org/internal/trace"
	"touchflow.org/io/evdev"
	"touchflow.org/io/input"
	"touchflow.org/io/touch"
)

var (
	configPath = flag.String("config", "", "configuration file (.yaml, .yml or .toml)")
	device     = flag.String("device", "", "read a live evdev device instead of traces")
	grab       = flag.Bool("grab", false, "grab the device for exclusive access")
	target     = flag.String("target", "device", "consumer name for device contacts")
	tick       = flag.Duration("tick", 50*time.Millisecond, "interval of time based gesture checks for devices")
	logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat  = flag.String("log-format", "text", "log format (text, json)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: gesturetrace [flags] trace.yaml...\n       gesturetrace [flags] -device path\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if err := mainErr(); err != nil {
		fmt.Fprintf(os.Stderr, "gesturetrace: %v\n", err)
		os.Exit(1)
	}
}

func mainErr() error {
	log, err := logging.New(logging.Options{Level: *logLevel, Format: *logFormat})
	if err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	newRouter := func() *input.Router {
		return input.New(
			input.WithConfig(cfg.Gesture),
			input.WithMetric(cfg.Metric),
			input.WithLogger(log),
		)
	}
	if *device != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return replayDevice(ctx, log, newRouter())
	}
	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("no traces")
	}
	var errs []error
	for _, path := range flag.Args() {
		if err := replayFile(log, newRouter(), path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func replayFile(log *slog.Logger, r *input.Router, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	steps, err := trace.Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log = log.With("trace", path)
	err = trace.Run(r, steps, func(i int, s trace.Step, evts []gesture.Event) {
		for _, e := range evts {
			logGesture(log, r, e, "step", i)
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Info("trace passed", "steps", len(steps))
	return nil
}

func replayDevice(ctx context.Context, log *slog.Logger, r *input.Router) error {
	dev, err := evdev.Open(*device, *grab)
	if err != nil {
		return err
	}
	log.Info("reading device", "path", *device, "grab", *grab)
	frames := make(chan []touch.Event)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(frames)
		rd := evdev.NewReader(dev)
		for {
			evts, err := rd.Read()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			select {
			case frames <- evts:
			case <-ctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		// Closing the device unblocks the reader.
		defer dev.Close()
		consumer := trace.Tag(*target)
		ticker := time.NewTicker(*tick)
		defer ticker.Stop()
		// Tick uses the clock of the device timestamps.
		var last time.Duration
		var arrived time.Time
		for {
			select {
			case <-ctx.Done():
				return nil
			case evts, ok := <-frames:
				if !ok {
					return nil
				}
				for _, e := range evts {
					last, arrived = e.Time, time.Now()
					for _, ge := range r.ProcessTouchEventForGesture(e, touch.Unconsumed, consumer) {
						logGesture(log, r, ge)
					}
				}
			case <-ticker.C:
				if arrived.IsZero() {
					continue
				}
				for _, ge := range r.Tick(last + time.Since(arrived)) {
					logGesture(log, r, ge)
				}
			}
		}
	})
	return g.Wait()
}

func logGesture(log *slog.Logger, r *input.Router, e gesture.Event, args ...interface{}) {
	args = append(args,
		"kind", e.Kind,
		"target", trace.Name(r.TargetForGestureEvent(e)),
		"pos", e.Position,
		"contacts", e.Contacts,
		"t", e.Time,
	)
	switch e.Kind {
	case gesture.ScrollUpdate:
		args = append(args, "delta", e.Delta)
	case gesture.Fling, gesture.Swipe:
		args = append(args, "velocity", e.Velocity, "dir", e.Direction)
	case gesture.PinchUpdate:
		args = append(args, "scale", e.Scale, "rotation", e.Rotation)
	case gesture.Tap:
		args = append(args, "taps", e.TapCount)
	}
	log.Info("gesture", args...)
}
