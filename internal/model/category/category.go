package category

import "strings"

// Category is one of the six fixed kiosk question categories.
// The wire values match the labels used by the kiosk front-end.
type Category string

const (
	NationalPension Category = "국민연금"
	MoveInReport    Category = "전입신고"
	LandBuilding    Category = "토지-건축물"
	YouthRent       Category = "청년월세"
	HousingBenefit  Category = "주거급여"
	Etc             Category = "etc"
)

// All lists every category in classification-prompt order.
func All() []Category {
	return []Category{NationalPension, MoveInReport, LandBuilding, YouthRent, HousingBenefit, Etc}
}

// Services lists the five concrete service categories, excluding the catch-all.
func Services() []Category {
	return []Category{NationalPension, MoveInReport, LandBuilding, YouthRent, HousingBenefit}
}

// Parse normalizes a raw label into a Category. It accepts the exact wire
// values case-insensitively for "etc"; anything else fails the parse so the
// caller can coerce to Etc instead of leaking an unknown label.
func Parse(raw string) (Category, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, string(Etc)) {
		return Etc, true
	}
	for _, c := range Services() {
		if trimmed == string(c) {
			return c, true
		}
	}
	return "", false
}

// IsGuidance reports whether c is the catch-all category that triggers the
// guided conversation instead of a canned answer.
func (c Category) IsGuidance() bool {
	return c == Etc
}

// Description returns the prompt description used to classify questions.
func (c Category) Description() string {
	switch c {
	case NationalPension:
		return "국민연금 가입, 자격 취득·상실, 보험료 납부·납부예외, 노령·장애·유족연금 수급, 가입·납부이력 및 각종 증명서 발급 관련 질문"
	case MoveInReport:
		return "전입신고, 주소변경, 세대 분리·합가, 주민등록 관련 질문"
	case LandBuilding:
		return "토지대장·건축물대장 발급, 토지·건축물 정보 확인·정정, 부동산 등기용 서류 관련 질문"
	case YouthRent:
		return "청년월세 지원금 대상·자격, 신청 절차·구비서류, 지급액·지급기간 관련 질문"
	case HousingBenefit:
		return "주거급여 수급 자격·기준, 신규 신청, 지급액 산정·변경 관련 질문"
	case Etc:
		return "위 5개 카테고리와 전혀 관련 없는 인사, 날씨, 일반적인 대화 등 (어느 쪽에도 분류할 수 없을 때만 선택)"
	default:
		return ""
	}
}

// answers is the canned answer table for the five service categories.
// Content is static and read-only at request time.
var answers = map[Category]string{
	NationalPension: "국민연금 가입은 신분증을 지참하시고 가까운 국민연금공단 지사나 행정복지센터에서 신청하실 수 있어요. 직장 가입자는 회사에서 자동으로 처리되고, 지역 가입자는 소득 신고와 함께 가입 신청서를 작성하시면 됩니다. 보험료 납부나 예외 신청에 대한 안내도 필요하신가요?",
	MoveInReport:    "전입신고는 이사한 날부터 14일 이내에 새 거주지의 행정복지센터에 방문하시거나 정부24에서 온라인으로 하실 수 있어요. 신분증만 있으면 되고, 세대주가 아닌 분이 신고할 때는 세대주 신분증과 도장이 추가로 필요합니다. 세대 분리나 합가 절차도 안내해 드릴까요?",
	LandBuilding:    "토지대장과 건축물대장은 신분증을 지참하시면 행정복지센터 민원 창구나 정부24에서 바로 발급받으실 수 있어요. 열람은 수수료가 더 저렴하고, 등기용 서류는 용도를 말씀해 주시면 맞게 발급해 드립니다. 어떤 서류가 필요하신가요?",
	YouthRent:       "청년월세 지원은 만 19세에서 34세 무주택 청년 중 소득 요건을 충족하면 월 최대 20만 원까지 12개월간 지원받으실 수 있어요. 임대차계약서와 소득 증빙 서류를 준비하셔서 복지로 또는 행정복지센터에서 신청하시면 됩니다. 자격 요건을 더 자세히 확인해 드릴까요?",
	HousingBenefit:  "주거급여는 소득인정액이 기준 중위소득 48% 이하인 가구에 임차료나 주택 수선비를 지원하는 제도예요. 신분증과 임대차계약서를 지참하시고 행정복지센터에서 신청하시면 소득·주거 조사를 거쳐 지급 여부가 결정됩니다. 수급 자격 기준부터 확인해 보시겠어요?",
}

// Answer returns the canned answer for a service category. It is a pure
// lookup, total over the five service categories; Etc has no canned answer
// because the guidance flow owns that branch.
func Answer(c Category) string {
	return answers[c]
}
