package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/context"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
	"github.com/vibelang-org/vibe/values"
)

// handleAICall implements §4.9: the prompt has already been evaluated into
// last_result by the preceding ExecExpr. This instruction resolves the
// model, assembles the requested context, and suspends.
func handleAICall(s *RuntimeState, in opcodes.AICall) error {
	prompt, ok := s.LastResult.AsText()
	if !ok {
		return engineerr.TypeMismatch(in.Position(), "prompt", "text", s.LastResult.Underlying().Type.String())
	}

	if in.Kind == ast.AIAsk {
		s.pendingUserPrompt = prompt
		s.Status = StatusAwaitingUser
		return nil
	}

	curIdx := len(s.CallStack) - 1
	modelVar, _, ok := LookupVariable(s.CallStack, curIdx, in.ModelName)
	if !ok {
		return engineerr.Reference(in.Position(), in.ModelName)
	}
	if modelVar.Value.Type != values.TypeModelHandle {
		return engineerr.Runtime(in.Position(), engineerr.ErrUnknownModel, "'%s' is not bound to a model", in.ModelName)
	}

	entries := resolveContextEntries(s, in.Context)

	var scopeParams []ScopeParam
	if in.Kind == ast.AIVibe {
		scopeParams = gatherVibeScopeParams(s)
	}

	s.LastUsedModel = in.ModelName
	s.Status = StatusAwaitingAI
	s.PendingAI = &PendingAI{
		Kind:            in.Kind,
		Prompt:          prompt,
		ModelName:       in.ModelName,
		ContextEntries:  entries,
		VibeScopeParams: scopeParams,
	}
	return nil
}

// resolveContextEntries implements the §4.5 context specifier.
func resolveContextEntries(s *RuntimeState, spec ast.ContextSpec) []context.RenderedEntry {
	switch spec.Kind {
	case ast.ContextSpecLocal:
		return s.LocalContext
	case ast.ContextSpecDefault:
		return s.GlobalContext
	case ast.ContextSpecVariable:
		curIdx := len(s.CallStack) - 1
		v, owner, ok := LookupVariable(s.CallStack, curIdx, spec.Var)
		if !ok {
			return nil
		}
		arr, ok := v.Value.AsArray()
		if !ok {
			return nil
		}
		out := make([]context.RenderedEntry, len(arr.Elements))
		for i, el := range arr.Elements {
			out[i] = context.RenderedEntry{
				FrameName: owner.Name,
				Depth:     0,
				Entry:     context.SummaryEntry{Text: values.ToDisplayString(el)},
			}
		}
		return out
	default:
		return nil
	}
}

// gatherVibeScopeParams collects every visible non-model variable reachable
// from the current frame's scope chain, nearest binding winning (§4.9).
func gatherVibeScopeParams(s *RuntimeState) []ScopeParam {
	seen := make(map[string]bool)
	var out []ScopeParam
	idx := len(s.CallStack) - 1
	for idx >= 0 {
		f := s.CallStack[idx]
		for _, name := range f.Order {
			if seen[name] {
				continue
			}
			seen[name] = true
			v := f.Locals[name]
			if v.Value.Type == values.TypeModelHandle {
				continue
			}
			out = append(out, ScopeParam{Name: v.Name, Type: v.TypeName, Value: v.Value})
		}
		if f.ParentFrameIndex == nil {
			break
		}
		idx = *f.ParentFrameIndex
	}
	return out
}

func handleHostEval(s *RuntimeState, in opcodes.HostEval) error {
	curIdx := len(s.CallStack) - 1
	paramValues := make([]*values.Value, len(in.Params))
	for i, name := range in.Params {
		v, _, ok := LookupVariable(s.CallStack, curIdx, name)
		if !ok {
			return engineerr.Reference(in.Position(), name)
		}
		paramValues[i] = v.Value
	}
	s.Status = StatusAwaitingHost
	s.PendingHost = &PendingHost{Params: in.Params, Body: in.Body, ParamValues: paramValues}
	return nil
}
