package solver

import (
	"context"

	"compify/api/internal/solver/types"
)

// Op names the two structured requests.
type Op string

const (
	OpSolve  Op = "solve"
	OpVerify Op = "verify"
)

// Part is one piece of the single conversation turn: either text or inline bytes.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

func TextPart(s string) Part { return Part{Text: s} }

func BlobPart(data []byte, mime string) Part { return Part{Data: data, MIMEType: mime} }

// IsBlob reports whether the part carries inline data.
func (p Part) IsBlob() bool { return len(p.Data) > 0 }

// Call is everything a Capability needs for one structured generation.
type Call struct {
	Op             Op
	APIKey         string
	Parts          []Part
	Schema         *types.Schema
	ThinkingBudget int32
}

// Capability is the external generative model. It returns the raw reply text,
// "" when the model produced none, or an error for provider/transport failures.
type Capability interface {
	Name() string
	Model() string
	Generate(ctx context.Context, call Call) (string, error)
}

// CredentialSource yields the current API key, "" when none is configured.
type CredentialSource interface {
	APIKey() string
}

// StaticKey is a fixed CredentialSource.
type StaticKey string

func (k StaticKey) APIKey() string { return string(k) }
