// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"viscore/cmd"
	"viscore/internal/analyzer"
	"viscore/internal/config"
	applog "viscore/internal/log"
	"viscore/internal/recorder"
	"viscore/internal/transport"
	"viscore/internal/tui"
	"viscore/internal/vis"
)

// analysisResult is the per-frame result the analyzer step publishes and
// the consumer side reads. Instances rotate through the frame handoff, so
// each carries its own spectrum backing.
type analysisResult struct {
	spectrum analyzer.Spectrum
	volume   analyzer.SignalStrength
	beat     bool
}

// main runs in three phases:
//
//  1. Startup (cold path): parse arguments, load configuration, initialize
//     PortAudio, handle one-off commands.
//  2. Concurrent (hot path): capture pushing into the sample ring, the
//     detached analyzer publishing frames, the TUI and transports consuming.
//  3. Shutdown (cold path): stop the analyzer, the capture backend and the
//     transports in order.
func main() {
	// ==================== STARTUP PHASE ====================

	// One thread for capture and analysis, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	if err := recorder.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer recorder.Terminate()

	if cfg.Command == "list" {
		if err := recorder.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	// ==================== CONCURRENT PHASE ====================

	rec, closeRec, err := openRecorder(cfg)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	// Analyzers are planned against the buffer's actual rate, which for WAV
	// replay is the file's rate rather than the configured one.
	rate := rec.SampleBuffer().Rate()

	windowFn, err := analyzer.ParseWindowFunc(cfg.Fourier.Window)
	if err != nil {
		applog.Fatalf("%v", err)
	}
	fa := analyzer.PlanFourier(analyzer.FourierConfig{
		Length:     cfg.Fourier.Length,
		Window:     windowFn,
		Downsample: cfg.Fourier.Downsample,
		Rate:       rate,
	})
	beat := analyzer.NewBeatDetector(analyzer.BeatConfig{
		Decay:         cfg.Beat.Decay,
		Trigger:       cfg.Beat.Trigger,
		Low:           cfg.Beat.Low,
		High:          cfg.Beat.High,
		FourierLength: cfg.Beat.FourierLength,
		Downsample:    cfg.Beat.Downsample,
		Rate:          rate,
	})

	newResult := func() analysisResult {
		return analysisResult{
			spectrum: analyzer.NewSpectrum(
				make([]analyzer.SignalStrength, fa.Buckets()), fa.Lowest(), fa.Highest()),
		}
	}
	step := func(info *analysisResult, samples *analyzer.SampleBuffer) {
		fa.Analyze(samples)
		info.spectrum.FillFrom(fa.Average())
		info.volume = samples.Volume(0.05)
		info.beat = beat.Detect(samples)
	}

	frames := vis.New(newResult, step).
		Recorder(rec).
		AsyncAnalyzer(cfg.Vis.ConversionsPerSecond).
		Frames()

	transports, err := openTransports(cfg)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	iter := frames.Iter()
	payload := &transport.Payload{
		Spectrum: make([]float32, fa.Buckets()),
	}

	poll := func(s *tui.Snapshot) {
		frame := iter.Next()
		frame.Info(func(r *analysisResult) {
			r.spectrum.FillBuckets(s.Bars)
			s.Volume = r.volume
			s.Beat = r.beat

			for i, v := range r.spectrum.Buckets() {
				payload.Spectrum[i] = float32(v)
			}
			payload.Volume = float32(r.volume)
			payload.Beat = r.beat
		})
		s.Time = frame.Time
		s.Frame = uint32(frame.Frame)
		payload.Time = float32(frame.Time)
		payload.Frame = uint32(frame.Frame)

		for _, t := range transports {
			t.Send(payload)
		}
	}

	program := tea.NewProgram(tui.NewSpectrumModel(poll), tea.WithAltScreen())

	// The TUI quits on its own keys; termination signals quit it too.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		applog.Errorf("TUI error: %v", err)
	}

	// ==================== SHUTDOWN PHASE ====================

	frames.Close()

	if err := closeRec(); err != nil {
		applog.Errorf("Error closing recorder: %v", err)
	}
	if cfg.Recording.Enabled {
		fmt.Printf("Recording saved to: %s\n", cfg.Recording.OutputFile)
	}

	for _, t := range transports {
		if err := t.Close(); err != nil {
			applog.Errorf("Error closing transport: %v", err)
		}
	}
}

// openRecorder picks the capture backend: WAV replay when an input file is
// given, live PortAudio capture otherwise.
func openRecorder(cfg *config.Config) (vis.Recorder, func() error, error) {
	recCfg := recorder.Config{
		Device:   cfg.Audio.Device,
		Rate:     cfg.Audio.Rate,
		Buffer:   cfg.Audio.Buffer,
		ReadSize: cfg.Audio.ReadSize,
	}

	if cfg.InputFile != "" {
		w, err := recorder.OpenWAVFile(cfg.InputFile, recCfg)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Close, nil
	}

	p, err := recorder.OpenPortAudio(recCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Start(); err != nil {
		p.Close()
		return nil, nil, err
	}
	if cfg.Recording.Enabled {
		if err := p.StartRecording(cfg.Recording.OutputFile); err != nil {
			p.Close()
			return nil, nil, err
		}
	}
	return p, p.Close, nil
}

// openTransports starts the enabled frame publishers.
func openTransports(cfg *config.Config) ([]transport.Transport, error) {
	var transports []transport.Transport

	if cfg.Transport.WebSocketEnabled {
		transports = append(transports,
			transport.NewWebSocketTransport(cfg.Transport.WebSocketPort))
	}
	if cfg.Transport.UDPEnabled {
		udp, err := transport.NewUDPTransport(cfg.Transport.UDPTargetAddress)
		if err != nil {
			for _, t := range transports {
				t.Close()
			}
			return nil, err
		}
		transports = append(transports, udp)
	}
	return transports, nil
}
