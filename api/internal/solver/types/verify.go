package types

import "strings"

// VerifyRequest is the VERIFY input. Both fields are required.
type VerifyRequest struct {
	ProblemText       string `json:"problemText"`
	CandidateSolution string `json:"candidateSolution"`
}

// Valid reports whether both inputs are non-blank.
func (r VerifyRequest) Valid() bool {
	return strings.TrimSpace(r.ProblemText) != "" && strings.TrimSpace(r.CandidateSolution) != ""
}

// VerificationOutcome is the VERIFY output.
type VerificationOutcome struct {
	IsCorrect       bool   `json:"isCorrect" yaml:"isCorrect"`
	Feedback        string `json:"feedback" yaml:"feedback"`
	CorrectSolution string `json:"correctSolution" yaml:"correctSolution"`
}
