package solver

import "fmt"

const transcribeInstruction = "Analyze this image. Perform high-accuracy OCR to extract the math problem text."

const defaultSolveText = "Solve the following math problem."

const solveSystemInstruction = `
SYSTEM INSTRUCTION:
You are an expert Math Olympiad Coach with access to the AOPS dataset.

Your task is 3-fold:
1. TRANSCRIPTION: If an image is provided, accurately transcribe the math notation using LaTeX.
2. SOLUTION: Provide a rigorous, step-by-step solution. Ensure this field is NEVER empty. Explain every step clearly.
3. RETRIEVAL: Retrieve %d similar problems from the AOPS dataset.

Use $...$ for inline math and $$...$$ for display math, always in balanced pairs.
Output strictly in JSON format matching the provided schema. Any text outside the JSON is an error.
`

const verifyTemplate = `
You are a Math Tutor.

Original Problem: %s

Student's Solution: %s

Task:
1. Determine if the student's solution is correct.
2. Provide helpful feedback.
3. Provide the full correct solution (LaTeX formatted, $...$ inline and $$...$$ display).

Output JSON matching the schema. Any text outside the JSON is an error.
`

func solveInstruction(wanted int) string {
	return fmt.Sprintf(solveSystemInstruction, wanted)
}

func verifyPrompt(problem, candidate string) string {
	return fmt.Sprintf(verifyTemplate, problem, candidate)
}
