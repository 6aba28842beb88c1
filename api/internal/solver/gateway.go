package solver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"compify/api/internal/mathtext"
	"compify/api/internal/solver/types"
	"compify/api/internal/util"
)

// ErrNoInput is returned when RequestSolution is called with neither text nor image.
// Callers are expected to gate on SolveRequest.HasInput and never reach it.
var ErrNoInput = errors.New("solve: problem text or image is required")

// ErrIncompleteVerify is the RequestVerification counterpart of ErrNoInput.
var ErrIncompleteVerify = errors.New("verify: problem text and candidate solution are required")

// ErrBadImage reports an image data URL that could not be decoded.
var ErrBadImage = errors.New("solve: bad image")

// Budgets are the reasoning-effort allowances per operation.
type Budgets struct {
	Solve  int32
	Verify int32
}

var DefaultBudgets = Budgets{Solve: 4096, Verify: 2048}

// Gateway turns contract calls into exactly one capability invocation each.
type Gateway struct {
	engines *Engines
	engine  string
	creds   CredentialSource
	budgets Budgets
	log     *zap.Logger
}

func NewGateway(engines *Engines, creds CredentialSource, budgets Budgets, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if budgets.Solve <= 0 {
		budgets.Solve = DefaultBudgets.Solve
	}
	if budgets.Verify <= 0 {
		budgets.Verify = DefaultBudgets.Verify
	}
	return &Gateway{engines: engines, creds: creds, budgets: budgets, log: log}
}

// Using returns a gateway bound to the named engine.
func (g *Gateway) Using(name string) (*Gateway, error) {
	if _, err := g.engines.Get(name); err != nil {
		return nil, err
	}
	cp := *g
	cp.engine = name
	return &cp, nil
}

// RequestSolution asks the model to transcribe, solve and retrieve similar problems.
func (g *Gateway) RequestSolution(ctx context.Context, in types.SolveRequest) (types.Solution, error) {
	if !in.HasInput() {
		return types.Solution{}, ErrNoInput
	}

	var parts []Part
	if in.HasImage() {
		data, hint, err := util.DecodeBase64MaybeDataURL(in.Image)
		if err != nil {
			return types.Solution{}, fmt.Errorf("%w: %v", ErrBadImage, err)
		}
		parts = append(parts, BlobPart(data, util.PickMIME("", hint, data)), TextPart(transcribeInstruction))
	}
	text := strings.TrimSpace(in.ProblemText)
	if text == "" {
		text = defaultSolveText
	}
	parts = append(parts, TextPart(text), TextPart(solveInstruction(types.SimilarProblemsWanted)))

	reply, err := g.generate(ctx, Call{
		Op:             OpSolve,
		Parts:          parts,
		Schema:         types.SolutionSchema,
		ThinkingBudget: g.budgets.Solve,
	})
	if err != nil {
		return types.Solution{}, err
	}
	sol, err := types.DecodeSolution(reply)
	if err != nil {
		g.log.Warn("solve reply rejected", zap.Error(err), zap.String("reply", util.Truncate(reply, 200)))
		return types.Solution{}, err
	}
	g.checkDelimiters(OpSolve, sol.StepByStepSolution, sol.FinalAnswer)
	if len(sol.SimilarProblems) != types.SimilarProblemsWanted {
		g.log.Debug("similar problem count differs from request",
			zap.Int("got", len(sol.SimilarProblems)), zap.Int("wanted", types.SimilarProblemsWanted))
	}
	return sol, nil
}

// RequestVerification asks the model to judge a candidate solution.
func (g *Gateway) RequestVerification(ctx context.Context, in types.VerifyRequest) (types.VerificationOutcome, error) {
	if !in.Valid() {
		return types.VerificationOutcome{}, ErrIncompleteVerify
	}
	reply, err := g.generate(ctx, Call{
		Op:             OpVerify,
		Parts:          []Part{TextPart(verifyPrompt(in.ProblemText, in.CandidateSolution))},
		Schema:         types.VerificationSchema,
		ThinkingBudget: g.budgets.Verify,
	})
	if err != nil {
		return types.VerificationOutcome{}, err
	}
	out, err := types.DecodeVerification(reply)
	if err != nil {
		g.log.Warn("verify reply rejected", zap.Error(err), zap.String("reply", util.Truncate(reply, 200)))
		return types.VerificationOutcome{}, err
	}
	g.checkDelimiters(OpVerify, out.Feedback, out.CorrectSolution)
	return out, nil
}

// generate gates on the credential, makes the single attempt and rejects blank replies.
func (g *Gateway) generate(ctx context.Context, call Call) (reply string, err error) {
	c, err := g.engines.Get(g.engine)
	if err != nil {
		return "", err
	}
	start := time.Now()
	defer func() {
		g.log.Info("solver call",
			zap.String("engine", c.Name()),
			zap.String("model", c.Model()),
			zap.String("op", string(call.Op)),
			zap.Duration("took", time.Since(start)),
			zap.String("outcome", outcome(err)),
		)
	}()

	key := ""
	if g.creds != nil {
		key = strings.TrimSpace(g.creds.APIKey())
	}
	if key == "" {
		return "", types.ErrAuthenticationMissing
	}
	call.APIKey = key

	reply, err = c.Generate(ctx, call)
	if err != nil {
		var ce *types.CapabilityError
		if !errors.As(err, &ce) {
			err = &types.CapabilityError{Engine: c.Name(), Op: string(call.Op), Err: err}
		}
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%s %s: %w", c.Name(), call.Op, types.ErrEmptyResponse)
	}
	return reply, nil
}

// checkDelimiters only logs; renderers fall back to literal text for unclosed math.
func (g *Gateway) checkDelimiters(op Op, fields ...string) {
	for i, f := range fields {
		if !mathtext.Balanced(f) {
			g.log.Warn("unbalanced math delimiters in reply", zap.String("op", string(op)), zap.Int("field", i))
		}
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(types.KindOf(err))
}
