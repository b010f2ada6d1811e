package app

import "strings"

// DomainError carries an HTTP status and the user-facing messages rendered in
// the response envelope.
type DomainError struct {
	Status   int
	Messages []string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return strings.Join(e.Messages, "; ")
}

func domainError(status int, messages ...string) *DomainError {
	return &DomainError{
		Status:   status,
		Messages: messages,
	}
}

// Fixed user-facing messages.
const (
	msgUnauthorized       = "인증되지 않은 요청입니다."
	msgBadInput           = "잘못된 입력값입니다."
	msgForbidden          = "권한이 없습니다."
	msgUnexpected         = "예기치 못한 오류가 발생했습니다."
	msgUserIDRequired     = "사용자 ID가 필요합니다."
	msgUserNotFound       = "사용자를 찾을 수 없습니다."
	msgSpaceNotFound      = "Space를 찾을 수 없습니다."
	msgSpaceTitleTaken    = "이미 존재하는 Space입니다."
	msgMomentNotFound     = "Moment를 찾을 수 없습니다."
	msgMomentAlreadyAdded = "이미 추가된 Moment입니다."
	msgMomentNotInSpace   = "존재하지 않는 Moment입니다."
	msgContributorOnlyAdd = "Contributor만 다른 사용자를 추가할 수 있습니다."
	msgTargetUserMissing  = "존재하지 않는 사용자입니다."
	msgAlreadyContributor = "해당 사용자는 이미 Contributor로 등록되어 있습니다."
	msgNotContributor     = "Contributor가 아닙니다."
	msgLastContributor    = "마지막 Contributor는 제거할 수 없습니다."
	msgTagForbidden       = "태그를 수정할 권한이 없습니다."
	msgSpaceListFailed    = "Space 목록을 가져오는데 실패했습니다"
	msgAITextFailed       = "AI 텍스트 생성에 실패했습니다."
	msgAIKeywordFailed    = "AI 키워드 추출에 실패했습니다."
)
