package types

import "strings"

// SolveRequest is the SOLVE input. At least one of ProblemText and Image must be set;
// callers check HasInput before dispatching.
type SolveRequest struct {
	ProblemText string `json:"problemText,omitempty"`
	Image       string `json:"image,omitempty"` // data URL or raw base64
}

// HasInput reports whether the request satisfies the SOLVE precondition.
func (r SolveRequest) HasInput() bool {
	return strings.TrimSpace(r.ProblemText) != "" || strings.TrimSpace(r.Image) != ""
}

// HasImage reports whether an image is attached.
func (r SolveRequest) HasImage() bool {
	return strings.TrimSpace(r.Image) != ""
}

// PracticeProblem is one related problem retrieved alongside a Solution.
// Difficulty is free-form ("Medium", "7/10", ...).
type PracticeProblem struct {
	Title           string `json:"title" yaml:"title"`
	Source          string `json:"source" yaml:"source"`
	ProblemText     string `json:"problemText" yaml:"problemText"`
	SimilarityLogic string `json:"similarityLogic" yaml:"similarityLogic"`
	Difficulty      string `json:"difficulty" yaml:"difficulty"`
}

// Solution is the SOLVE output.
// OriginalProblemOCR is only expected when an image was supplied.
// SimilarProblems may hold any number of items; the schema asks for 3.
type Solution struct {
	OriginalProblemOCR string            `json:"originalProblemOCR,omitempty" yaml:"originalProblemOCR,omitempty"`
	StepByStepSolution string            `json:"stepByStepSolution" yaml:"stepByStepSolution"`
	FinalAnswer        string            `json:"finalAnswer" yaml:"finalAnswer"`
	SimilarProblems    []PracticeProblem `json:"similarProblems" yaml:"similarProblems"`
}
