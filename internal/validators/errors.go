package validators

import "sort"

// Errors сопоставляет имени поля сообщение для человека. Пустая карта означает успех.
type Errors map[string]string

// Add записывает сообщение для поля, сохраняя первое
func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Clear убирает сообщение одного поля
func (e Errors) Clear(field string) {
	delete(e, field)
}

// OK сообщает, что сообщений нет
func (e Errors) OK() bool {
	return len(e) == 0
}

// Fields возвращает имена полей по алфавиту
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Clone возвращает независимую копию
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
