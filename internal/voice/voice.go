// Package voice bridges a realtime audio model session to text
// transcripts. Audio playback is left to the caller; the bridge only
// surfaces completed transcript turns.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/rcliao/coldsteel/internal/model"
)

// Role is the speaker of a transcript turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ErrAlreadyActive is returned when Start is called on a running bridge.
var ErrAlreadyActive = errors.New("voice bridge already active")

// TranscriptFunc receives one completed transcript turn.
type TranscriptFunc func(text string, role Role)

// CloseFunc is called once when a started session ends, whether through Stop
// or from the remote side. err is the receive error that ended it.
type CloseFunc func(err error)

// Config describes one live session.
type Config struct {
	APIKey            string
	SystemInstruction string
	VoiceName         string
	ModelID           string
}

// Bridge is a live voice channel.
type Bridge interface {
	Start(ctx context.Context, cfg Config, onTranscript TranscriptFunc, onClose CloseFunc) error
	Stop() error
}

// transcriber accumulates partial transcriptions and flushes them at turn
// boundaries.
type transcriber struct {
	input  strings.Builder
	output strings.Builder
}

func (t *transcriber) handle(msg *genai.LiveServerMessage, emit TranscriptFunc) {
	sc := msg.ServerContent
	if sc == nil {
		return
	}
	if sc.OutputTranscription != nil {
		t.output.WriteString(sc.OutputTranscription.Text)
	} else if sc.InputTranscription != nil {
		t.input.WriteString(sc.InputTranscription.Text)
	}

	if sc.TurnComplete {
		if t.input.Len() > 0 {
			emit(t.input.String(), RoleUser)
		}
		if t.output.Len() > 0 {
			emit(t.output.String(), RoleModel)
		}
		t.reset()
	}
	if sc.Interrupted {
		t.reset()
	}
}

func (t *transcriber) reset() {
	t.input.Reset()
	t.output.Reset()
}

// LiveBridge runs a Gemini Live session.
type LiveBridge struct {
	logger *zap.Logger
	audio  io.Reader

	mu      sync.Mutex
	session *genai.Session
	done    chan struct{}
}

// LiveOption configures a LiveBridge.
type LiveOption func(*LiveBridge)

// WithLogger sets the bridge's logger.
func WithLogger(l *zap.Logger) LiveOption {
	return func(b *LiveBridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithAudioInput streams raw 16 kHz mono PCM from r to the model.
func WithAudioInput(r io.Reader) LiveOption {
	return func(b *LiveBridge) { b.audio = r }
}

// NewLiveBridge returns an idle bridge.
func NewLiveBridge(opts ...LiveOption) *LiveBridge {
	b := &LiveBridge{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

const (
	inputMIMEType = "audio/pcm;rate=16000"
	chunkSize     = 8192
)

// Start connects and begins delivering transcripts to onTranscript from a
// background goroutine. onClose, if non-nil, runs when that goroutine exits.
func (b *LiveBridge) Start(ctx context.Context, cfg Config, onTranscript TranscriptFunc, onClose CloseFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		return ErrAlreadyActive
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("create live client: %w", err)
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = model.DefaultLiveModel
	}
	voiceName := cfg.VoiceName
	if voiceName == "" {
		voiceName = model.DefaultVoiceName
	}

	session, err := client.Live.Connect(ctx, modelID, &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction:  genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	})
	if err != nil {
		return fmt.Errorf("connect live session: %w", err)
	}

	b.session = session
	b.done = make(chan struct{})
	b.logger.Info("live bridge opened", zap.String("model", modelID), zap.String("voice", voiceName))

	go b.receive(session, b.done, onTranscript, onClose)
	if b.audio != nil {
		go b.send(session, b.audio)
	}
	return nil
}

func (b *LiveBridge) receive(session *genai.Session, done chan struct{}, emit TranscriptFunc, onClose CloseFunc) {
	var t transcriber
	for {
		msg, err := session.Receive()
		if err != nil {
			b.logger.Debug("live bridge terminated", zap.Error(err))
			b.terminated(session, done, onClose, err)
			return
		}
		t.handle(msg, emit)
	}
}

// terminated releases session if it is still the active one, so a remote
// close leaves the bridge startable again, then reports the close.
func (b *LiveBridge) terminated(session *genai.Session, done chan struct{}, onClose CloseFunc, err error) {
	defer close(done)
	b.mu.Lock()
	if b.session == session {
		b.session, b.done = nil, nil
	}
	b.mu.Unlock()
	if onClose != nil {
		onClose(err)
	}
}

// Active reports whether a session is open.
func (b *LiveBridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session != nil
}

func (b *LiveBridge) send(session *genai.Session, r io.Reader) {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if serr := session.SendRealtimeInput(genai.LiveRealtimeInput{
				Audio: &genai.Blob{Data: chunk, MIMEType: inputMIMEType},
			}); serr != nil {
				b.logger.Warn("live bridge send failed", zap.Error(serr))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				b.logger.Warn("live bridge audio input", zap.Error(err))
			}
			return
		}
	}
}

// Stop closes the session and waits for the receive loop to exit. Stopping
// an idle bridge is a no-op.
func (b *LiveBridge) Stop() error {
	b.mu.Lock()
	session, done := b.session, b.done
	b.session, b.done = nil, nil
	b.mu.Unlock()

	if session == nil {
		return nil
	}
	err := session.Close()
	<-done
	b.logger.Info("live bridge closed")
	if err != nil {
		return fmt.Errorf("close live session: %w", err)
	}
	return nil
}
