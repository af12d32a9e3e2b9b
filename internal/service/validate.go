// validate.go — проверка входных данных моделей.
package service

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// decimalPattern — десятичная запись без знака, экспоненты и спецзначений (NaN, Inf, 0x...).
var decimalPattern = regexp.MustCompile(`^\d*\.?\d+$`)

// validationErrors — накопитель сообщений валидации.
type validationErrors []string

func (v *validationErrors) add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

// err возвращает ErrValidation со всеми сообщениями или nil.
func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(v, "; "))
}

// checkLength проверяет длину строки в символах.
func (v *validationErrors) checkLength(field, value string, minLen, maxLen int) {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		v.add("%s: длина должна быть от %d до %d символов", field, minLen, maxLen)
	}
}

// checkNonNegative проверяет, что число не отрицательное и помещается в INTEGER.
func (v *validationErrors) checkNonNegative(field string, value *int) {
	if value != nil && (*value < 0 || *value > math.MaxInt32) {
		v.add("%s: значение должно быть от 0 до %d", field, math.MaxInt32)
	}
}

// checkURL проверяет абсолютный http(s) URL.
func (v *validationErrors) checkURL(field string, value *string) {
	if value == nil {
		return
	}
	u, err := url.ParseRequestURI(*value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.add("%s: некорректный URL", field)
	}
}

// checkEquity проверяет долю: десятичное число в диапазоне [0, 1].
func (v *validationErrors) checkEquity(field string, value *string) {
	if value == nil {
		return
	}
	if !decimalPattern.MatchString(*value) {
		v.add("%s: ожидается число от 0 до 1", field)
		return
	}
	f, err := strconv.ParseFloat(*value, 64)
	if err != nil || f < 0 || f > 1 {
		v.add("%s: ожидается число от 0 до 1", field)
	}
}
