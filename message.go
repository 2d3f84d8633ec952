package debugctx

import (
	"strings"

	"debugctx/internal/render"
)

// Markers around the text appended to assertion messages.
const (
	BeginMarker = "DebugContext begin"
	EndMarker   = "DebugContext end"
	// DisabledText replaces the contexts stack while the service is disabled.
	DisabledText = "DebugContext is DISABLED!"
)

// DecorateMessage appends the caller's contexts stack to msg between
// BeginMarker and EndMarker. msg is returned unchanged when
// add_to_assertion_message is off.
func (s *Service) DecorateMessage(msg string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.AddToAssertionMessage {
		return msg
	}
	text := DisabledText
	if s.cfg.Enabled {
		text = s.textLocked()
	}
	return msg + "\n" + BeginMarker + "\n" + text + "\n" + EndMarker
}

// ExtractAddedText returns the text DecorateMessage appended to msg.
func ExtractAddedText(msg string) (string, bool) {
	_, after, found := strings.Cut(msg, BeginMarker)
	if !found {
		return "", false
	}
	text, _, found := strings.Cut(after, EndMarker)
	if !found {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// ExtractAddedText is the package-level ExtractAddedText.
func (s *Service) ExtractAddedText(msg string) (string, bool) {
	return ExtractAddedText(msg)
}

// ExtractStructuredContext parses the contexts stack appended to msg. It
// reports false when the service is disabled or msg carries no valid text.
func (s *Service) ExtractStructuredContext(msg string) (render.Layers, bool) {
	s.mu.Lock()
	enabled := s.cfg.Enabled
	s.mu.Unlock()

	if !enabled {
		return nil, false
	}
	return ParseAddedText(msg)
}

// ParseAddedText parses the contexts stack appended to msg regardless of any
// service configuration.
func ParseAddedText(msg string) (render.Layers, bool) {
	text, ok := ExtractAddedText(msg)
	if !ok {
		return nil, false
	}
	return render.FromText(text)
}
