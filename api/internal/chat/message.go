package chat

import (
	"time"

	"github.com/google/uuid"

	"compify/api/internal/solver/types"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry of the conversation. It is exactly one of
// *UserMessage, *SolutionCard or *Notice.
type Message interface {
	ID() string
	Sender() Sender
	Time() time.Time
	message()
}

type meta struct {
	id string
	at time.Time
}

func newMeta() meta { return meta{id: uuid.NewString(), at: time.Now()} }

func (m meta) ID() string      { return m.id }
func (m meta) Time() time.Time { return m.at }
func (meta) message()          {}

// UserMessage is what the user submitted: text, an image data URL, or both.
type UserMessage struct {
	meta
	Text  string
	Image string
}

func (*UserMessage) Sender() Sender { return SenderUser }

// HasImage reports whether an image was attached.
func (m *UserMessage) HasImage() bool { return m.Image != "" }

// SolutionCard carries a structured solution returned by the gateway.
type SolutionCard struct {
	meta
	Solution types.Solution
}

func (*SolutionCard) Sender() Sender { return SenderAssistant }

// Notice is plain assistant text, used for failures.
type Notice struct {
	meta
	Text string
	Kind types.Kind
}

func (*Notice) Sender() Sender { return SenderAssistant }

const (
	// WelcomeText is what frontends show while the conversation is empty.
	WelcomeText = "Hi! Send me a math problem as text or a photo and I'll solve it step by step, then suggest three similar problems to practice."

	noticeFailed  = "I encountered an error solving this problem. Please try again with a clearer image or description."
	noticeAuth    = "No Gemini API key is configured. Set one and send the problem again."
	noticeTimeout = "The solver took too long to answer. Please try again."
)

// NoticeFor returns the fixed user-visible text for a gateway failure.
// The error message itself is never shown.
func NoticeFor(err error) string {
	switch types.KindOf(err) {
	case types.KindAuthenticationMissing:
		return noticeAuth
	case types.KindCapability:
		if isDeadline(err) {
			return noticeTimeout
		}
		return noticeFailed
	default:
		return noticeFailed
	}
}
