// Package ports reads trace lines from files, stdin and serial touch controllers.
package ports

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dasdy/softkeys/logging"
	"go.bug.st/serial"
)

const DefaultBaudRate = 115200

var logCtx = logging.PackageCtx("ports")

// Open connects to a serial device. The returned closer logs instead of failing.
func Open(path string, baudRate int) (r io.Reader, closer func(), err error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baudRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not open serial port %s: %w", path, err)
	}

	c := func() {
		if err := port.Close(); err != nil {
			slog.ErrorContext(logCtx, "Could not close serial port", "path", path, "error", err)
		}
	}

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		c()

		return nil, nil, fmt.Errorf("could not configure serial port %s: %w", path, err)
	}

	return port, c, nil
}

// ReadFile streams lines of r. The channel is closed at EOF.
func ReadFile(r io.Reader) <-chan string {
	ch := make(chan string)

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}

		if err := scanner.Err(); err != nil {
			slog.ErrorContext(logCtx, "Stopped reading", "error", err)
		}
	}()

	return ch
}

// ReadFiles interleaves lines of several readers line by line. The channel is closed
// once every reader is exhausted.
func ReadFiles(readers ...io.Reader) <-chan string {
	out := make(chan string)

	var wg sync.WaitGroup

	for _, r := range readers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for line := range ReadFile(r) {
				out <- line
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// OpenFiles opens every device and merges their lines. On error, already opened
// devices are closed.
func OpenFiles(baudRate int, paths ...string) (<-chan string, func(), error) {
	readers := make([]io.Reader, 0, len(paths))
	closers := make([]func(), 0, len(paths))

	closer := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, p := range paths {
		r, c, err := Open(p, baudRate)
		if err != nil {
			closer()

			return nil, nil, err
		}

		readers = append(readers, r)
		closers = append(closers, c)
	}

	return ReadFiles(readers...), closer, nil
}

// LooksLikeTouchDevice matches USB CDC and USB serial adapters.
func LooksLikeTouchDevice(path string) bool {
	name := filepath.Base(path)
	if filepath.Dir(path) != "/dev" {
		return false
	}

	for _, prefix := range []string{"tty.usbmodem", "ttyACM", "ttyUSB"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

func GetAvailableDevices() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}

	result := make([]string, 0)

	for _, n := range names {
		if LooksLikeTouchDevice(n) {
			result = append(result, n)
		}
	}

	return result, nil
}
