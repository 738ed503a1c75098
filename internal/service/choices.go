package service

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// maxChoices - не больше трех вариантов на сегмент
	maxChoices = 3
	// maxChoiceWords - лимит длины варианта в словах (по пробельным разделителям)
	maxChoiceWords = 20
)

// ordinalPrefixRe вырезает нумерацию вида "1. " в начале строки.
var ordinalPrefixRe = regexp.MustCompile(`^\d+\. `)

// NormalizeChoices приводит сырой вывод текстовой модели к списку вариантов выбора.
// Модель не гарантирует формат, поэтому это защитная нормализация, а не парсер:
// пустые строки и слишком длинные варианты отбрасываются, исходная нумерация
// игнорируется, оставшиеся варианты перенумеровываются "1. ", "2. ", "3. ".
// Всегда возвращает не-nil срез длиной от 0 до 3.
func NormalizeChoices(raw string) []string {
	choices := make([]string, 0, maxChoices)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = ordinalPrefixRe.ReplaceAllString(line, "")
		if len(strings.Fields(line)) > maxChoiceWords {
			continue
		}
		choices = append(choices, line)
		if len(choices) == maxChoices {
			break
		}
	}

	for i, choice := range choices {
		choices[i] = fmt.Sprintf("%d. %s", i+1, choice)
	}

	return choices
}
