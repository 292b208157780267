package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for error codes.
// data provides optional values substituted into {placeholders}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalogs = map[string]map[string]string{
	"en": {
		"untagged_conflict":          "a type cannot be both untagged and tagged",
		"content_without_tag":        "content directive requires a tag directive",
		"internal_tag_tuple_variant": "internally tagged variant payload cannot be merged with the tag field",
		"unsupported_shape":          "unsupported type shape",
		"recursive_type":             "recursive type reference",
		"invalid_type":               "invalid type",
		"required":                   "required property missing",
		"unknown_key":                "unknown key",
		"duplicate_key":              "duplicate key",
		"invalid_enum":               "invalid value, expected one of {expected}",
		"parse_error":                "parse error",
	},
	"ja": {
		"untagged_conflict":          "untagged と tag は同時に指定できません",
		"content_without_tag":        "content を指定するには tag が必要です",
		"internal_tag_tuple_variant": "内部タグ付けのバリアントはタグと結合できないペイロードを持っています",
		"unsupported_shape":          "サポートされていない型の形です",
		"recursive_type":             "型参照が循環しています",
		"invalid_type":               "型が不正です",
		"required":                   "必須プロパティが不足しています",
		"unknown_key":                "未知のキーです",
		"duplicate_key":              "キーが重複しています",
		"invalid_enum":               "値が不正です（{expected} のいずれか）",
		"parse_error":                "解析エラー",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogs[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

// holder keeps the Translator swappable while generators read it from
// several goroutines.
type holder struct{ tr Translator }

var current atomic.Value

func init() { current.Store(holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().(holder).tr.Message(code, data)
}
