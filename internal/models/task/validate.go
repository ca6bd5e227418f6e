package task

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const TitleMinLen = 2
const TitleMaxLen = 255
const CommentsMaxLen = 1000

// ValidateTitle проверяет название после обрезки пробелов
func ValidateTitle(title string) error {
	// длина считается в символах, не в байтах: кириллица в UTF-8 двухбайтовая
	trimmed := strings.TrimSpace(title)
	if utf8.RuneCountInString(trimmed) < TitleMinLen {
		return fmt.Errorf("название должно содержать минимум %d символа", TitleMinLen)
	}
	if utf8.RuneCountInString(trimmed) > TitleMaxLen {
		return fmt.Errorf("название не может быть длиннее %d символов", TitleMaxLen)
	}
	return nil
}

func ValidateComments(comments *string) error {
	if comments == nil {
		return nil
	}
	if utf8.RuneCountInString(*comments) > CommentsMaxLen {
		return fmt.Errorf("комментарий не может быть длиннее %d символов", CommentsMaxLen)
	}
	return nil
}

// NormalizeComments приводит пустой комментарий к nil перед передачей дальше
func NormalizeComments(comments *string) *string {
	if comments == nil || strings.TrimSpace(*comments) == "" {
		return nil
	}
	return comments
}
