package ai

import "fmt"

// Action is a canned editor-assist transformation applied to a piece of text.
type Action string

const (
	ActionSpellcheck        Action = "spellcheck"
	ActionSummarize         Action = "summarize"
	ActionRewrite           Action = "rewrite"
	ActionTranslate         Action = "translate"
	ActionElaborate         Action = "elaborate"
	ActionTitleRefinement   Action = "title_refinement"
	ActionContentRefinement Action = "content_refinement"
	ActionTagRecommendation Action = "tag_recommendation"
)

var actionPrompts = map[Action]string{
	ActionSpellcheck:        "다음 텍스트의 맞춤법을 교정해주세요:\n\n%s",
	ActionSummarize:         "다음 텍스트를 3-5문장으로 요약해주세요:\n\n%s",
	ActionRewrite:           "다음 텍스트를 다른 표현으로 다시 작성해주세요:\n\n%s",
	ActionTranslate:         "다음 한국어 텍스트를 영어로 번역해주세요:\n\n%s",
	ActionElaborate:         "다음 텍스트를 더 자세하고 구체적으로 확장해서 작성해주세요:\n\n%s",
	ActionTitleRefinement:   "다음 제목을 좀 더 다듬어주세요:\n\n%s",
	ActionContentRefinement: "다음 내용을 좀 더 다듬어주세요:\n\n%s",
	ActionTagRecommendation: "다음 내용에 대한 태그를 추천해주세요:\n\n%s",
}

var actionSystemPrompts = map[Action]string{
	ActionSpellcheck:        "당신은 전문 교정 교열가입니다. 맞춤법, 띄어쓰기, 문법을 정확하게 교정해주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백은 제거해주세요.",
	ActionSummarize:         "당신은 전문 에디터입니다. 핵심 내용을 간단명료하게 요약해주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백 및 개행은 제거해주세요.",
	ActionRewrite:           "당신은 창의적인 작가입니다. 원문의 의미는 유지하면서 새로운 표현으로 다시 작성해주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백 및 개행은 제거해주세요.",
	ActionTranslate:         "당신은 전문 번역가입니다. 자연스러운 영어로 번역해주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백 및 개행은 제거해주세요.",
	ActionElaborate:         "당신은 전문 작가입니다. 주어진 내용을 더 풍부하고 상세하게 발전시켜주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백 및 개행은 제거해주세요.",
	ActionTitleRefinement:   "당신은 전문 작가입니다. 주어진 제목을 좀 더 매력적으로 다듬어주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백 및 개행은 제거해주세요.",
	ActionContentRefinement: "당신은 전문 작가입니다. 주어진 내용을 좀 더 설득력이 있도록 2줄 이내로 다듬어주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백 및 개행은 제거해주세요.",
	ActionTagRecommendation: "당신은 전문 작가입니다. 주어진 내용에 대한 태그를 5개 이내로 추천해주세요. 순수한 결과물만 반환해주세요. 앞뒤 공백 및 개행은 제거해주세요.",
}

// ValidAction reports whether the given action kind is supported.
func ValidAction(action Action) bool {
	_, ok := actionPrompts[action]
	return ok
}

// ActionPrompts returns the system and user prompts for an action over the
// given content.
func ActionPrompts(action Action, content string) (system, prompt string, err error) {
	template, ok := actionPrompts[action]
	if !ok {
		return "", "", fmt.Errorf("unknown action %q", action)
	}
	return actionSystemPrompts[action], fmt.Sprintf(template, content), nil
}
