// Package profiling captures CPU profiles and execution traces when frame
// times degrade, and measures frame rate.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pluvia/logger"
)

var (
	// ErrCooldown is returned when a capture was requested too soon after the last one
	ErrCooldown = errors.New("capture on cooldown")

	// ErrBusy is returned when a capture is already running
	ErrBusy = errors.New("already profiling")
)

// Profiler writes a CPU profile and an execution trace covering a fixed
// window after each capture request
type Profiler struct {
	mu              sync.Mutex
	isProfiling     bool
	lastCaptureTime time.Time
	captureCooldown time.Duration
	captureDuration time.Duration
	profilesDir     string

	wg  sync.WaitGroup
	log *logrus.Entry
}

// NewProfiler creates a profiler writing into dir
func NewProfiler(dir string, duration, cooldown time.Duration) (*Profiler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profiles dir: %w", err)
	}
	return &Profiler{
		captureCooldown: cooldown,
		captureDuration: duration,
		profilesDir:     dir,
		log:             logger.Component("profiling"),
	}, nil
}

// Capture starts a background capture named after reason
func (p *Profiler) Capture(reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isProfiling {
		return ErrBusy
	}
	if !p.lastCaptureTime.IsZero() && time.Since(p.lastCaptureTime) < p.captureCooldown {
		return fmt.Errorf("%w: last capture was %v ago", ErrCooldown, time.Since(p.lastCaptureTime))
	}

	p.isProfiling = true
	p.lastCaptureTime = time.Now()
	baseName := fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), reason)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			p.isProfiling = false
			p.mu.Unlock()
		}()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := p.captureCPUProfile(baseName); err != nil {
				p.log.WithError(err).Warn("cpu profile capture failed")
			}
		}()
		go func() {
			defer wg.Done()
			if err := p.captureTrace(baseName); err != nil {
				p.log.WithError(err).Warn("trace capture failed")
			}
		}()
		wg.Wait()

		p.logMemStats(baseName)
	}()

	return nil
}

// Wait blocks until the running capture, if any, has been written
func (p *Profiler) Wait() {
	p.wg.Wait()
}

// IsProfiling reports whether a capture is in progress
func (p *Profiler) IsProfiling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isProfiling
}

func (p *Profiler) captureCPUProfile(baseName string) error {
	path := filepath.Join(p.profilesDir, baseName+".cpu.prof")
	stop, err := StartCPUProfile(path)
	if err != nil {
		return err
	}
	time.Sleep(p.captureDuration)
	stop()

	p.log.WithField("path", path).Info("cpu profile saved")
	return nil
}

func (p *Profiler) captureTrace(baseName string) error {
	path := filepath.Join(p.profilesDir, baseName+".trace")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer file.Close()

	if err := trace.Start(file); err != nil {
		return fmt.Errorf("failed to start trace: %w", err)
	}
	time.Sleep(p.captureDuration)
	trace.Stop()

	p.log.WithField("path", path).Info("trace saved")
	return nil
}

func (p *Profiler) logMemStats(baseName string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	p.log.WithFields(logrus.Fields{
		"capture":      baseName,
		"alloc_kb":     m.Alloc / 1024,
		"sys_kb":       m.Sys / 1024,
		"num_gc":       m.NumGC,
		"heap_objects": m.HeapObjects,
	}).Info("memory stats at capture time")
}

// StartCPUProfile writes a CPU profile to path until the returned stop is called
func StartCPUProfile(path string) (stop func(), err error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		file.Close()
	}, nil
}
