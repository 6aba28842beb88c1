package types

import (
	"encoding/json"
	"strings"

	"compify/api/internal/util"
)

// Wire shapes with pointers so that absent and empty fields can be told apart.
type rawSolution struct {
	OriginalProblemOCR *string              `json:"originalProblemOCR"`
	StepByStepSolution *string              `json:"stepByStepSolution"`
	FinalAnswer        *string              `json:"finalAnswer"`
	SimilarProblems    *[]rawPracticeProblem `json:"similarProblems"`
}

type rawPracticeProblem struct {
	Title           *string `json:"title"`
	Source          *string `json:"source"`
	ProblemText     *string `json:"problemText"`
	SimilarityLogic *string `json:"similarityLogic"`
	Difficulty      *string `json:"difficulty"`
}

type rawVerification struct {
	IsCorrect       *bool   `json:"isCorrect"`
	Feedback        *string `json:"feedback"`
	CorrectSolution *string `json:"correctSolution"`
}

// DecodeSolution parses model output into a Solution.
// Blank input must be rejected by the caller as ErrEmptyResponse before calling this.
func DecodeSolution(text string) (Solution, error) {
	var raw rawSolution
	if err := json.Unmarshal([]byte(util.StripCodeFences(text)), &raw); err != nil {
		return Solution{}, malformed("solution: bad JSON: %v", err)
	}
	if blank(raw.StepByStepSolution) {
		return Solution{}, malformed("solution: stepByStepSolution is missing or empty")
	}
	if blank(raw.FinalAnswer) {
		return Solution{}, malformed("solution: finalAnswer is missing or empty")
	}
	if raw.SimilarProblems == nil {
		return Solution{}, malformed("solution: similarProblems is missing")
	}

	out := Solution{
		StepByStepSolution: *raw.StepByStepSolution,
		FinalAnswer:        *raw.FinalAnswer,
		SimilarProblems:    make([]PracticeProblem, 0, len(*raw.SimilarProblems)),
	}
	if raw.OriginalProblemOCR != nil {
		out.OriginalProblemOCR = *raw.OriginalProblemOCR
	}
	for i, p := range *raw.SimilarProblems {
		pp, err := p.toProblem()
		if err != nil {
			return Solution{}, malformed("solution: similarProblems[%d]: %v", i, err)
		}
		out.SimilarProblems = append(out.SimilarProblems, pp)
	}
	return out, nil
}

func (p rawPracticeProblem) toProblem() (PracticeProblem, error) {
	fields := []struct {
		name string
		v    *string
	}{
		{"title", p.Title},
		{"source", p.Source},
		{"problemText", p.ProblemText},
		{"similarityLogic", p.SimilarityLogic},
		{"difficulty", p.Difficulty},
	}
	for _, f := range fields {
		if blank(f.v) {
			return PracticeProblem{}, &fieldError{name: f.name}
		}
	}
	return PracticeProblem{
		Title:           *p.Title,
		Source:          *p.Source,
		ProblemText:     *p.ProblemText,
		SimilarityLogic: *p.SimilarityLogic,
		Difficulty:      *p.Difficulty,
	}, nil
}

// DecodeVerification parses model output into a VerificationOutcome.
func DecodeVerification(text string) (VerificationOutcome, error) {
	var raw rawVerification
	if err := json.Unmarshal([]byte(util.StripCodeFences(text)), &raw); err != nil {
		return VerificationOutcome{}, malformed("verification: bad JSON: %v", err)
	}
	if raw.IsCorrect == nil {
		return VerificationOutcome{}, malformed("verification: isCorrect is missing")
	}
	if blank(raw.Feedback) {
		return VerificationOutcome{}, malformed("verification: feedback is missing or empty")
	}
	if blank(raw.CorrectSolution) {
		return VerificationOutcome{}, malformed("verification: correctSolution is missing or empty")
	}
	return VerificationOutcome{
		IsCorrect:       *raw.IsCorrect,
		Feedback:        *raw.Feedback,
		CorrectSolution: *raw.CorrectSolution,
	}, nil
}

type fieldError struct{ name string }

func (e *fieldError) Error() string { return e.name + " is missing or empty" }

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
