package ai

import (
	"fmt"
	"strings"
)

// defaultRefinements are the post-processing instructions appended to every
// system prompt unless the caller supplies its own.
var defaultRefinements = []string{
	"순수한 결과물만 반환해주세요.",
	"앞뒤 공백 및 개행은 제거해주세요.",
}

// BuildSystemPrompt assembles a system prompt from a role, optional background
// knowledge, and post-processing refinements.
func BuildSystemPrompt(role Role, knowledge, refine []string) string {
	prompts := []string{fmt.Sprintf("당신은 %s입니다. %s", role.Name, role.Description)}

	if len(knowledge) > 0 {
		prompts = append(prompts, "당신은 이러한 배경 지식을 가지고 있습니다.\n\n"+strings.Join(knowledge, "\n"))
	}
	if len(refine) > 0 {
		prompts = append(prompts, "결과물을 반환하기 이전, 다음과 같은 후처리 작업이 필요합니다.\n\n"+strings.Join(refine, "\n"))
	}

	return strings.Join(prompts, "\n\n")
}

// DefaultRefinements returns a copy of the standard refinement instructions.
func DefaultRefinements() []string {
	refinements := make([]string, len(defaultRefinements))
	copy(refinements, defaultRefinements)
	return refinements
}
