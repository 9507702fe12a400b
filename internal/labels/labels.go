// Package labels holds the static RU/KZ display names for services,
// categories and statuses. Lookups fall back to the raw value so an unknown
// code is still renderable.
package labels

const (
	LangRU = "ru"
	LangKZ = "kz"
)

// Normalize returns a supported language code, defaulting to Russian.
func Normalize(lang string) string {
	if lang == LangKZ {
		return LangKZ
	}
	return LangRU
}

var serviceLabels = map[string]map[string]string{
	LangRU: {
		"consultation": "Консультация",
		"admission":    "Поступление",
		"contest":      "Грант конкурс",
		"online":       "Онлайн поступление",
	},
	LangKZ: {
		"consultation": "Кеңес алу",
		"admission":    "Оқуға түсу",
		"contest":      "Грант конкурсы",
		"online":       "Онлайн өтініш",
	},
}

var categoryLabels = map[string]map[string]string{
	LangRU: {
		"after11":      "После 11 класса",
		"afterCollege": "После колледжа",
		"foreign":      "Иностранец",
		"master":       "Магистратура/Докторантура",
		"masters":      "Магистратура/Докторантура",
		"army":         "Военный",
	},
	LangKZ: {
		"after11":      "11 сыныптан кейін",
		"afterCollege": "Колледжден кейін",
		"foreign":      "Шетел азаматы",
		"master":       "Магистратура/Докторантура",
		"masters":      "Магистратура/Докторантура",
		"army":         "Әскер",
	},
}

var statusLabels = map[string]map[string]string{
	LangRU: {
		"PENDING":   "Ожидает",
		"ACCEPTED":  "Вызван",
		"DONE":      "Завершён",
		"CANCELLED": "Отменён",
	},
	LangKZ: {
		"PENDING":   "Күтуде",
		"ACCEPTED":  "Шақырылды",
		"DONE":      "Аяқталды",
		"CANCELLED": "Бас тартылды",
	},
}

func lookup(table map[string]map[string]string, value, lang string) string {
	if l, ok := table[lang][value]; ok {
		return l
	}
	return value
}

func Service(value, lang string) string {
	return lookup(serviceLabels, value, lang)
}

func Category(value, lang string) string {
	return lookup(categoryLabels, value, lang)
}

func Status(value, lang string) string {
	return lookup(statusLabels, value, lang)
}
