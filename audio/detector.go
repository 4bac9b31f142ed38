package audio

import (
	"os"
	"path/filepath"
	"runtime"
)

// DetectDevice reports whether an audio output is likely reachable
// Initializing the speaker without one can block or spam the terminal, so it is checked first
// Priority: PulseAudio/PipeWire socket > ALSA device nodes > FreeBSD OSS
func DetectDevice() (string, bool) {
	switch runtime.GOOS {
	case "darwin", "windows", "ios", "android":
		return runtime.GOOS, true
	}

	if os.Getenv("PULSE_SERVER") != "" {
		return "pulse", true
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		if _, err := os.Stat(filepath.Join(dir, "pulse", "native")); err == nil {
			return "pulse", true
		}
		if _, err := os.Stat(filepath.Join(dir, "pipewire-0")); err == nil {
			return "pipewire", true
		}
	}

	if matches, _ := filepath.Glob("/dev/snd/pcmC*D*p"); len(matches) > 0 {
		return "alsa", true
	}

	if runtime.GOOS == "freebsd" {
		if _, err := os.Stat("/dev/dsp"); err == nil {
			return "oss", true
		}
	}

	return "", false
}
