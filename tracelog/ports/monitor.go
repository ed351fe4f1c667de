package ports

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"go.bug.st/serial"
)

// pollInterval is how often the monitor looks for new devices.
const pollInterval = 5 * time.Second

// Opener connects to a device found by the monitor.
type Opener interface {
	Open(devicePath string) (io.ReadCloser, error)
}

// SerialOpener opens devices as serial ports.
type SerialOpener struct {
	BaudRate int
}

func (o SerialOpener) Open(devicePath string) (io.ReadCloser, error) {
	port, err := serial.Open(devicePath, &serial.Mode{BaudRate: o.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", devicePath, err)
	}

	return port, nil
}

// MonitoringDeviceReader polls for touch controllers, attaches to new ones and merges
// their lines. Devices that stop producing lines are forgotten and may be picked up again.
type MonitoringDeviceReader struct {
	pathToLookup string

	devicesList map[string]io.ReadCloser
	lock        sync.RWMutex

	opener  Opener
	ports   func() ([]string, error)
	matches func(string) bool

	pollingInterval time.Duration
}

func NewMonitoringDeviceReader(pathToLookup string, opener Opener) *MonitoringDeviceReader {
	return &MonitoringDeviceReader{
		pathToLookup:    pathToLookup,
		devicesList:     make(map[string]io.ReadCloser),
		lock:            sync.RWMutex{},
		opener:          opener,
		ports:           serial.GetPortsList,
		matches:         LooksLikeTouchDevice,
		pollingInterval: pollInterval,
	}
}

func DefaultMonitoringDeviceReader(baudRate int) *MonitoringDeviceReader {
	return NewMonitoringDeviceReader("/dev/", SerialOpener{BaudRate: baudRate})
}

// SetMatcher replaces the device name filter.
func (r *MonitoringDeviceReader) SetMatcher(matches func(string) bool) {
	r.matches = matches
}

// SetPortLister replaces the serial port enumeration.
func (r *MonitoringDeviceReader) SetPortLister(ports func() ([]string, error)) {
	r.ports = ports
}

func (r *MonitoringDeviceReader) SetPollingInterval(d time.Duration) {
	r.pollingInterval = d
}

func (r *MonitoringDeviceReader) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for i, device := range r.devicesList {
		if err := device.Close(); err != nil {
			return fmt.Errorf("error closing device %s: %w", i, err)
		}

		delete(r.devicesList, i)
	}

	return nil
}

// Devices lists the attached devices.
func (r *MonitoringDeviceReader) Devices() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	result := make([]string, 0, len(r.devicesList))
	for k := range r.devicesList {
		result = append(result, k)
	}

	return result
}

func (r *MonitoringDeviceReader) forget(devicePath string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if device, exists := r.devicesList[devicePath]; exists {
		if err := device.Close(); err != nil {
			slog.WarnContext(logCtx, "Error closing device", "path", devicePath, "error", err)
		}

		delete(r.devicesList, devicePath)
		slog.InfoContext(logCtx, "Device closed and removed from list", "path", devicePath)
	}
}

func (r *MonitoringDeviceReader) AddDevice(devicePath string, out chan<- string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.devicesList[devicePath]; exists {
		slog.DebugContext(logCtx, "Device already exists, skipping", "path", devicePath)

		return nil
	}

	device, err := r.opener.Open(devicePath)
	if err != nil {
		return fmt.Errorf("error opening device %s: %w", devicePath, err)
	}

	r.devicesList[devicePath] = device

	go func() {
		slog.InfoContext(logCtx, "Device loop started", "path", devicePath)

		for line := range ReadFile(device) {
			out <- line
		}

		r.forget(devicePath)
	}()

	return nil
}

func (r *MonitoringDeviceReader) FindDevices() ([]string, error) {
	serialDevices, err := r.ports()
	if err != nil {
		return nil, fmt.Errorf("could not get list of serial ports: %w", err)
	}

	entries, err := os.ReadDir(r.pathToLookup)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", r.pathToLookup, err)
	}

	newDevices := make(map[string]bool)

	for _, devicePath := range serialDevices {
		if r.shouldOpenDevice(devicePath) {
			newDevices[devicePath] = true
		}
	}

	for _, entry := range entries {
		shouldOpen, devicePath := r.shouldOpenFile(entry)
		if !shouldOpen {
			continue
		}

		newDevices[devicePath] = true
	}

	keys := make([]string, 0, len(newDevices))
	for k := range newDevices {
		keys = append(keys, k)
	}

	return keys, nil
}

// Channel starts polling. Polling stops when done is closed.
func (r *MonitoringDeviceReader) Channel(done <-chan struct{}) <-chan string {
	outputChan := make(chan string, 5)

	go func() {
		slog.InfoContext(logCtx, "Monitoring started", "path", r.pathToLookup)

		defer slog.InfoContext(logCtx, "End monitoring", "path", r.pathToLookup)

		ticker := time.NewTicker(r.pollingInterval)
		defer ticker.Stop()

		for {
			devices, err := r.FindDevices()
			if err != nil {
				slog.ErrorContext(logCtx, "Error finding devices", "error", err)
			}

			for _, devicePath := range devices {
				slog.InfoContext(logCtx, "Found device", "path", devicePath)

				if err := r.AddDevice(devicePath, outputChan); err != nil {
					slog.ErrorContext(logCtx, "Could not add device", "path", devicePath, "error", err)
				}
			}

			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return outputChan
}

func (r *MonitoringDeviceReader) shouldOpenFile(entry os.DirEntry) (bool, string) {
	if entry.IsDir() {
		return false, ""
	}

	devicePath := path.Join(r.pathToLookup, entry.Name())

	return r.shouldOpenDevice(devicePath), devicePath
}

func (r *MonitoringDeviceReader) shouldOpenDevice(devicePath string) bool {
	if !r.matches(devicePath) {
		return false
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.devicesList[devicePath]

	return !ok
}
