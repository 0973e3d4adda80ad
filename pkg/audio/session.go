package audio

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Global audio context singleton; oto allows only one per process
var (
	globalAudioCtx  *oto.Context
	globalAudioOnce sync.Once
	globalAudioErr  error
)

func prepareAudioContext(format *wavFormat) (*oto.Context, error) {
	globalAudioOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			globalAudioErr = err
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		log.Println("Audio context initialized successfully")
	})

	if globalAudioErr != nil {
		return nil, globalAudioErr
	}
	return globalAudioCtx, nil
}

// OtoFactory creates WAV playback sessions backed by oto.
type OtoFactory struct{}

func NewOtoFactory() *OtoFactory { return &OtoFactory{} }

// NewSession reads the WAV asset and prepares a playable session.
func (f *OtoFactory) NewSession(assetPath string) (Session, error) {
	wavData, err := os.ReadFile(assetPath)
	if err != nil {
		return nil, fmt.Errorf("read sound asset: %w", err)
	}

	format, audioData, err := parseWAV(wavData)
	if err != nil {
		return nil, fmt.Errorf("parse sound asset %s: %w", assetPath, err)
	}

	ctx, err := prepareAudioContext(format)
	if err != nil {
		return nil, fmt.Errorf("audio context not ready: %w", err)
	}

	return &otoSession{
		ctx:      ctx,
		data:     audioData,
		status:   make(chan Status, 8),
		stopChan: make(chan struct{}),
	}, nil
}

// otoSession plays one decoded WAV buffer. Each Play creates a fresh
// oto player over the same samples; a completed status is emitted when
// playback drains so the controller can re-issue Play for looping.
type otoSession struct {
	ctx  *oto.Context
	data []byte

	mu       sync.Mutex
	player   *oto.Player
	volume   float64
	stopped  bool
	released bool

	status   chan Status
	stopChan chan struct{}
}

func (s *otoSession) Play() error {
	s.mu.Lock()
	if s.released || s.stopped {
		s.mu.Unlock()
		return errors.New("session is stopped")
	}

	player := s.ctx.NewPlayer(bytes.NewReader(s.data))
	if s.volume > 0 {
		player.SetVolume(s.volume)
	}
	s.player = player
	s.mu.Unlock()

	player.Play()
	s.emit(StatusRunning)

	go s.waitDone(player)
	return nil
}

func (s *otoSession) waitDone(player *oto.Player) {
	for player.IsPlaying() {
		select {
		case <-s.stopChan:
			// Stop already paused and closed the player
			return
		case <-time.After(10 * time.Millisecond):
			// Continue checking
		}
	}

	select {
	case <-s.stopChan:
		return
	default:
	}

	if err := player.Close(); err != nil {
		log.Printf("Failed to close audio player: %v", err)
	}
	s.emit(StatusCompleted)
}

func (s *otoSession) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = v
	if s.player != nil {
		s.player.SetVolume(v)
	}
}

func (s *otoSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopChan)

	if s.player != nil {
		s.player.Pause()
		s.player.Close()
		s.player = nil
	}
	s.emitLocked(StatusPaused)
}

// Release frees the session. The status channel closes so watchers
// terminate; the session cannot be played again.
func (s *otoSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	if !s.stopped {
		s.stopped = true
		close(s.stopChan)
		if s.player != nil {
			s.player.Pause()
			s.player.Close()
			s.player = nil
		}
	}
	s.released = true
	close(s.status)
}

func (s *otoSession) Status() <-chan Status {
	return s.status
}

func (s *otoSession) emit(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(status)
}

// emitLocked drops the event if nobody is draining the buffer; the
// controller only cares about the latest completed status anyway.
func (s *otoSession) emitLocked(status Status) {
	if s.released {
		return
	}
	select {
	case s.status <- status:
	default:
	}
}
