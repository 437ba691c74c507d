// Package validation содержит проверки бизнес-полей и правил перед записью.
// Проверки не имеют состояния: каждая возвращает Result, где ошибки блокируют
// сохранение, а предупреждения только информируют оператора.
package validation

import "strings"

// Result - результат проверки одного поля или целой формы
type Result struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func newResult() *Result {
	return &Result{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

func (r *Result) addError(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge добавляет ошибки и предупреждения других результатов
func (r *Result) Merge(others ...*Result) *Result {
	for _, o := range others {
		if o == nil {
			continue
		}
		if !o.IsValid {
			r.IsValid = false
		}
		r.Errors = append(r.Errors, o.Errors...)
		r.Warnings = append(r.Warnings, o.Warnings...)
	}
	return r
}

// Err возвращает *Error, если результат содержит ошибки, иначе nil
func (r *Result) Err() error {
	if r.IsValid {
		return nil
	}
	return &Error{
		Errors:   r.Errors,
		Warnings: r.Warnings,
	}
}

// Error - ошибка валидации с полным списком причин
// Слой доставки отдает ее клиенту как данные (422), а не как общую ошибку
type Error struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
