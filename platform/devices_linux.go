//go:build linux

package platform

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const procInputDevices = "/proc/bus/input/devices"

// findKeyboardDevices lists the evdev nodes of every device the kernel
// attached the kbd handler to
func findKeyboardDevices() ([]string, error) {
	f, err := os.Open(procInputDevices)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseKeyboardDevices(f)
}

func parseKeyboardDevices(r io.Reader) ([]string, error) {
	var paths []string
	var name string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "N: Name=") {
			name = strings.ToLower(line)
		}

		if strings.HasPrefix(line, "H: Handlers=") {
			fields := strings.Fields(strings.TrimPrefix(line, "H: Handlers="))
			isKeyboard := strings.Contains(name, "keyboard")
			event := ""
			for _, f := range fields {
				if f == "kbd" {
					isKeyboard = true
				}
				if strings.HasPrefix(f, "event") {
					event = f
				}
			}
			if isKeyboard && event != "" {
				paths = append(paths, "/dev/input/"+event)
			}
		}

		if line == "" {
			name = ""
		}
	}

	return paths, scanner.Err()
}
