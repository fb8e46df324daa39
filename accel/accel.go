// Package accel selects the compute device used by the offline engine.
package accel

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// EnvDeviceType is read by Argos Translate and overrides detection when set.
const EnvDeviceType = "ARGOS_DEVICE_TYPE"

// Device is an Argos device type.
type Device string

const (
	CPU  Device = "cpu"
	CUDA Device = "cuda"
)

// Selector picks a device. The function fields exist so tests can fake the host.
type Selector struct {
	Getenv   func(string) (string, bool)
	Stat     func(string) (os.FileInfo, error)
	LookPath func(string) (string, error)
	Stderr   io.Writer
	Logger   *zap.Logger
}

// NewSelector returns a Selector probing the real host.
func NewSelector(stderr io.Writer, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		Getenv:   os.LookupEnv,
		Stat:     os.Stat,
		LookPath: exec.LookPath,
		Stderr:   stderr,
		Logger:   logger,
	}
}

// Select returns the user's ARGOS_DEVICE_TYPE if set, otherwise CUDA when an
// NVIDIA device is visible and CPU when not.
func (s *Selector) Select() Device {
	if v, ok := s.Getenv(EnvDeviceType); ok && v != "" {
		s.Logger.Debug("using user-defined device", zap.String(EnvDeviceType, v))
		return Device(v)
	}

	device := CPU
	if s.cudaVisible() {
		device = CUDA
		s.report("GPU acceleration enabled (CUDA available)")
	} else {
		s.report("Using CPU (no CUDA device found)")
	}

	s.Logger.Debug("selected device", zap.String(EnvDeviceType, string(device)))
	return device
}

// Env returns the KEY=value pair to hand to child processes.
func (d Device) Env() string {
	return EnvDeviceType + "=" + string(d)
}

func (s *Selector) cudaVisible() bool {
	if _, err := s.Stat("/dev/nvidia0"); err == nil {
		return true
	}
	if _, err := s.LookPath("nvidia-smi"); err == nil {
		return true
	}
	return false
}

func (s *Selector) report(msg string) {
	if s.Stderr != nil {
		fmt.Fprintf(s.Stderr, "[translate] %s\n", msg)
	}
}
