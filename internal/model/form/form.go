package form

import "github.com/jinseok-oh/minwon-kiosk/internal/model/category"

// FieldSpec describes one fillable field of a civil-affairs document.
type FieldSpec struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Document is a per-category document template with its ordered fields.
type Document struct {
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	Fields []FieldSpec `json:"fields"`
}

// Templates returns the document templates for a service category.
// Content is seeded and read-only; the catch-all category has no documents.
func Templates(c category.Category) []Document {
	return templates[c]
}

var templates = map[category.Category][]Document{
	category.NationalPension: {
		{
			Name:  "pension_acquisition",
			Title: "국민연금 자격취득 신고서",
			Fields: []FieldSpec{
				{Name: "person.name", Label: "성명", Description: "가입자 본인의 이름"},
				{Name: "person.birth_date", Label: "생년월일", Description: "가입자 생년월일 (예: 1995-03-02)"},
				{Name: "person.address", Label: "주소", Description: "주민등록상 주소"},
				{Name: "person.phone", Label: "전화번호", Description: "연락 가능한 전화번호"},
				{Name: "acquisition.date", Label: "자격취득일", Description: "가입 자격이 발생한 날짜"},
			},
		},
	},
	category.MoveInReport: {
		{
			Name:  "move_in_report",
			Title: "전입신고서",
			Fields: []FieldSpec{
				{Name: "reporter.name", Label: "신고인 성명", Description: "전입신고를 하는 사람의 이름"},
				{Name: "reporter.birth_date", Label: "신고인 생년월일"},
				{Name: "reporter.phone", Label: "신고인 전화번호"},
				{Name: "previous.address", Label: "전(前) 주소", Description: "이사 오기 전 주소"},
				{Name: "new.address", Label: "신(新) 주소", Description: "새로 이사한 주소"},
				{Name: "move_in.date", Label: "전입일", Description: "실제 이사한 날짜"},
			},
		},
	},
	category.LandBuilding: {
		{
			Name:  "land_register_request",
			Title: "토지(임야)대장 발급 신청서",
			Fields: []FieldSpec{
				{Name: "applicant.name", Label: "신청인 성명"},
				{Name: "applicant.phone", Label: "신청인 전화번호"},
				{Name: "parcel.address", Label: "토지 소재지", Description: "발급 대상 토지의 주소(지번 포함)"},
				{Name: "request.purpose", Label: "발급 용도", Description: "예: 매매, 등기, 확인용"},
			},
		},
	},
	category.YouthRent: {
		{
			Name:  "youth_rent_application",
			Title: "청년월세 지원 신청서",
			Fields: []FieldSpec{
				{Name: "applicant.name", Label: "신청인 성명"},
				{Name: "applicant.birth_date", Label: "신청인 생년월일"},
				{Name: "applicant.phone", Label: "신청인 전화번호"},
				{Name: "lease.address", Label: "임차주택 주소", Description: "임대차계약서상 주소"},
				{Name: "lease.monthly_rent", Label: "월세액", Description: "월 임차료 (만원 단위)"},
				{Name: "account.number", Label: "지원금 수령 계좌", Description: "은행명과 계좌번호"},
			},
		},
	},
	category.HousingBenefit: {
		{
			Name:  "housing_benefit_application",
			Title: "주거급여 신청서",
			Fields: []FieldSpec{
				{Name: "applicant.name", Label: "신청인 성명"},
				{Name: "applicant.birth_date", Label: "신청인 생년월일"},
				{Name: "applicant.address", Label: "주소"},
				{Name: "applicant.phone", Label: "전화번호"},
				{Name: "household.size", Label: "가구원 수", Description: "함께 사는 가구원 수"},
			},
		},
	},
}
