// Package i18n holds the label catalog used for exported artifacts and error messages.
package i18n

import "strings"

// FallbackLang is used when a request names no supported language.
const FallbackLang = "en"

var catalog = map[string]map[string]string{
	"en": {
		"csv.management_no": "management_no",
		"csv.work_content":  "work_content",
		"csv.actual_hours":  "actual_hours",

		"invalid_argument":   "Invalid request",
		"nothing_to_invoice": "No time logged for this month",
		"not_found":          "Not found",
		"conflict":           "Already exists",
		"already_closed":     "This month is already invoiced",
		"sequence_exhausted": "Invoice numbers for this month are exhausted",
		"internal_error":     "Internal error",
		"unauthorized":       "Authentication required",
		"forbidden":          "Forbidden",
		"required":           "Required",
		"must_be_positive":   "Must be positive",

		"must_not_be_negative": "Must not be negative",
		"too_long":             "Too long",
		"invalid_color":        "Must be a #RRGGBB color",
		"invalid_id":           "Invalid identifier",
		"invalid_date":         "Must be a YYYY-MM-DD date",
		"method_not_allowed":   "Method not allowed",
		"bad_request":          "Malformed request body",

		"immutable": "Cannot be changed",
	},
	"ja": {
		"csv.management_no": "管理No",
		"csv.work_content":  "委託業務内容",
		"csv.actual_hours":  "実工数",

		"invalid_argument":   "リクエストが不正です",
		"nothing_to_invoice": "対象月の工数がありません",
		"not_found":          "見つかりません",
		"conflict":           "既に存在します",
		"already_closed":     "この月は請求済みです",
		"sequence_exhausted": "この月の請求書番号が上限に達しました",
		"internal_error":     "内部エラー",
		"unauthorized":       "認証が必要です",
		"forbidden":          "権限がありません",
		"required":           "必須です",
		"must_be_positive":   "正の値を指定してください",

		"must_not_be_negative": "負の値は指定できません",
		"too_long":             "長すぎます",
		"invalid_color":        "#RRGGBB 形式で指定してください",
		"invalid_id":           "IDが不正です",
		"invalid_date":         "YYYY-MM-DD 形式で指定してください",
		"method_not_allowed":   "許可されていないメソッドです",
		"bad_request":          "リクエスト本文が不正です",

		"immutable": "変更できません",
	},
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// T translates code into lang. Unknown languages fall back to FallbackLang,
// unknown codes to the code itself.
func T(lang, code string) string {
	if msgs, ok := catalog[lang]; ok {
		if s, ok := msgs[code]; ok {
			return s
		}
	}
	if s, ok := catalog[FallbackLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the first supported primary tag from an Accept-Language header.
func DetectLanguage(acceptLang string) string {
	for _, part := range strings.Split(acceptLang, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		primary, _, _ := strings.Cut(tag, "-")
		primary = strings.ToLower(primary)
		if Supported(primary) {
			return primary
		}
	}
	return FallbackLang
}

// Resolve prefers an explicit lang, then the Accept-Language header, then def.
func Resolve(explicit, acceptLang, def string) string {
	if l := strings.ToLower(explicit); Supported(l) {
		return l
	}
	if acceptLang != "" {
		return DetectLanguage(acceptLang)
	}
	if Supported(def) {
		return def
	}
	return FallbackLang
}
