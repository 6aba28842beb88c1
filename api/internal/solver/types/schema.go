package types

// Schema is a provider-neutral description of a structured response.
// Engines translate it into their SDK's schema type.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaArray   SchemaType = "array"
	SchemaString  SchemaType = "string"
	SchemaBoolean SchemaType = "boolean"
)

// SimilarProblemsWanted is how many related problems the SOLVE prompt asks for.
// Replies carrying a different count are still accepted.
const SimilarProblemsWanted = 3

// PracticeProblemSchema describes one item of similarProblems.
var PracticeProblemSchema = &Schema{
	Type: SchemaObject,
	Properties: map[string]*Schema{
		"title":           {Type: SchemaString, Description: "A short title for the problem"},
		"source":          {Type: SchemaString, Description: "The origin of the problem (e.g., AMC 12B 2021, Problem 15)"},
		"problemText":     {Type: SchemaString, Description: "The full, verbatim problem statement."},
		"similarityLogic": {Type: SchemaString, Description: "Explain the shared mathematical concept, theorem, or trick (e.g., 'Both use Power of a Point') that makes this problem relevant."},
		"difficulty":      {Type: SchemaString, Description: "Difficulty rating (e.g., 1-10 or Easy/Medium/Hard)"},
	},
	Required: []string{"title", "source", "problemText", "similarityLogic", "difficulty"},
}

// SolutionSchema is the SOLVE output schema.
var SolutionSchema = &Schema{
	Type: SchemaObject,
	Properties: map[string]*Schema{
		"originalProblemOCR": {Type: SchemaString, Description: "The transcribed text of the user's problem (if image was provided)"},
		"stepByStepSolution": {Type: SchemaString, Description: "A comprehensive, step-by-step rigorous proof/solution. Use LaTeX for all math."},
		"finalAnswer":        {Type: SchemaString, Description: "The final boxed answer"},
		"similarProblems": {
			Type:        SchemaArray,
			Items:       PracticeProblemSchema,
			Description: "List of 3 distinct problems from the AOPS dataset that utilize the exact same mathematical logic.",
		},
	},
	Required: []string{"stepByStepSolution", "finalAnswer", "similarProblems"},
}

// VerificationSchema is the VERIFY output schema.
var VerificationSchema = &Schema{
	Type: SchemaObject,
	Properties: map[string]*Schema{
		"isCorrect":       {Type: SchemaBoolean, Description: "True if the user's logic and answer are correct."},
		"feedback":        {Type: SchemaString, Description: "Constructive feedback on the student's approach. If incorrect, explain the mistake without giving the answer immediately if possible, or give a hint."},
		"correctSolution": {Type: SchemaString, Description: "The correct step-by-step solution using LaTeX."},
	},
	Required: []string{"isCorrect", "feedback", "correctSolution"},
}

// SchemaByName resolves "solution" and "verification".
func SchemaByName(name string) (*Schema, bool) {
	switch name {
	case "solution", "solve":
		return SolutionSchema, true
	case "verification", "verify":
		return VerificationSchema, true
	default:
		return nil, false
	}
}
