package ai

import (
	"strings"
	"testing"
)

func TestBuildSystemPromptRoleOnly(t *testing.T) {
	prompt := BuildSystemPrompt(EditorRole, nil, nil)

	if !strings.HasPrefix(prompt, "당신은 "+EditorRole.Name+"입니다.") {
		t.Errorf("prompt should open with the role, got %q", prompt)
	}
	if strings.Contains(prompt, "배경 지식") {
		t.Error("prompt should not mention knowledge when none given")
	}
	if strings.Contains(prompt, "후처리") {
		t.Error("prompt should not mention refinements when none given")
	}
}

func TestBuildSystemPromptSections(t *testing.T) {
	prompt := BuildSystemPrompt(WriterRole, []string{"fact one", "fact two"}, DefaultRefinements())

	sections := strings.Split(prompt, "\n\n")
	if len(sections) < 3 {
		t.Fatalf("expected role, knowledge and refine sections, got %d", len(sections))
	}
	if !strings.Contains(prompt, "fact one\nfact two") {
		t.Error("knowledge lines should be newline-joined")
	}
	if !strings.Contains(prompt, defaultRefinements[0]) {
		t.Error("refinements should appear in the prompt")
	}
}

func TestDefaultRefinementsIsACopy(t *testing.T) {
	refinements := DefaultRefinements()
	refinements[0] = "mutated"
	if defaultRefinements[0] == "mutated" {
		t.Error("DefaultRefinements must not expose the backing slice")
	}
}

func TestActionPrompts(t *testing.T) {
	system, prompt, err := ActionPrompts(ActionSummarize, "본문입니다")
	if err != nil {
		t.Fatalf("ActionPrompts failed: %v", err)
	}
	if !strings.Contains(prompt, "본문입니다") {
		t.Error("content should be embedded in the user prompt")
	}
	if !strings.Contains(system, "에디터") {
		t.Errorf("summarize should use the editor persona, got %q", system)
	}
}

func TestActionPromptsUnknown(t *testing.T) {
	if _, _, err := ActionPrompts(Action("nope"), "x"); err == nil {
		t.Error("expected error for unknown action")
	}
	if ValidAction("nope") {
		t.Error("ValidAction should reject unknown actions")
	}
	if !ValidAction(ActionSpellcheck) {
		t.Error("ValidAction should accept spellcheck")
	}
}
