package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/compiler"
	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/voice"
)

// StartVoice opens the live bridge with directives compiled at the current
// priority. In dictation mode user transcripts accumulate in the input
// buffer instead of the log.
func (s *Session) StartVoice(ctx context.Context, dictation bool) error {
	s.mu.Lock()
	switch {
	case s.bridge == nil:
		s.mu.Unlock()
		return ErrNoBridge
	case s.live:
		s.mu.Unlock()
		return voice.ErrAlreadyActive
	case s.identity == nil:
		s.mu.Unlock()
		return ErrNoIdentity
	}
	cfg, _ := s.activeLocked()
	key := cfg.APIKey
	if key == "" {
		key = s.fallbackKey
	}
	if key == "" && s.online {
		s.mu.Unlock()
		return ErrNoCredential
	}
	compiled := compiler.Compile(*s.identity, s.priority)
	prefs := s.identity.VoicePreferences
	s.live, s.dictating = true, dictation
	s.voiceGen++
	gen := s.voiceGen
	s.mu.Unlock()

	persistCtx := context.WithoutCancel(ctx)
	err := s.bridge.Start(ctx, voice.Config{
		APIKey:            key,
		SystemInstruction: compiled.SystemDirectives,
		VoiceName:         prefs.PreferredVoiceName,
		ModelID:           prefs.ModelID,
	}, func(text string, role voice.Role) {
		s.transcript(persistCtx, text, role)
	}, func(err error) {
		s.voiceClosed(gen, err)
	})
	if err != nil {
		s.voiceClosed(gen, err)
		return fmt.Errorf("start voice bridge: %w", err)
	}
	return nil
}

// voiceClosed clears the live state for bridge session gen. A close from an
// earlier session does not touch a newer one.
func (s *Session) voiceClosed(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voiceGen != gen || !s.live {
		return
	}
	s.live, s.dictating = false, false
	s.logger.Info("voice bridge closed", zap.Error(err))
}

// StopVoice closes the live bridge. It is a no-op when voice is not active.
func (s *Session) StopVoice() error {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return nil
	}
	s.live, s.dictating = false, false
	s.voiceGen++
	bridge := s.bridge
	s.mu.Unlock()

	if err := bridge.Stop(); err != nil {
		return fmt.Errorf("stop voice bridge: %w", err)
	}
	return nil
}

// VoiceActive reports whether the bridge is open.
func (s *Session) VoiceActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// SetDictation switches user transcripts between the input buffer and the
// log while the bridge is open.
func (s *Session) SetDictation(on bool) {
	s.mu.Lock()
	s.dictating = on && s.live
	s.mu.Unlock()
}

// TakeInput returns and clears the dictated input buffer.
func (s *Session) TakeInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.input.String()
	s.input.Reset()
	return text
}

func (s *Session) transcript(ctx context.Context, text string, role voice.Role) {
	s.mu.Lock()
	if role == voice.RoleUser && s.dictating {
		if s.input.Len() > 0 {
			s.input.WriteByte(' ')
		}
		s.input.WriteString(text)
		s.mu.Unlock()
		return
	}
	priority := s.priority
	s.mu.Unlock()

	msgRole := model.RoleUser
	if role == voice.RoleModel {
		msgRole = model.RoleAssistant
	}
	msg := model.Message{
		ID:              s.newID(),
		Role:            msgRole,
		Content:         text,
		Timestamp:       s.now(),
		IsTranscription: true,
		Priority:        priority,
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		s.logger.Warn("transcript not persisted", zap.Error(err))
		return
	}
	if s.onTranscript != nil {
		s.onTranscript(msg)
	}
}
