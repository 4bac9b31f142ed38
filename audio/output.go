package audio

import (
	"fmt"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output is the device the mixed stream plays on
// Lock guards streamer mutation against the device's pull goroutine
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// SpeakerOutput plays through the process-wide beep speaker
type SpeakerOutput struct{}

func (SpeakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	if _, ok := DetectDevice(); !ok {
		return ErrNoAudioDevice
	}
	if err := speaker.Init(rate, bufferSize); err != nil {
		return fmt.Errorf("audio: speaker init: %w", err)
	}
	return nil
}

func (SpeakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (SpeakerOutput) Lock()                { speaker.Lock() }
func (SpeakerOutput) Unlock()              { speaker.Unlock() }
func (SpeakerOutput) Close()               { speaker.Close() }
