package engine

import (
	"sync"

	"github.com/cloud-ru/erp-finance-summary/internal/entities"
	"github.com/cloud-ru/erp-finance-summary/internal/validators"
)

// Draft хранит состояние редактируемой записи. Вычисляемые поля пересчитываются
// на каждом Set. Ошибки полей появляются только после Submit и снимаются
// по одному полю по мере правки.
type Draft struct {
	mu      sync.Mutex
	profile entities.Profile
	limits  validators.Limits
	values  map[string]any
	errors  validators.Errors
	last    Result
}

// NewDraft создаёт черновик из начальных значений (nil для пустой формы)
func NewDraft(p entities.Profile, limits validators.Limits, initial map[string]any) *Draft {
	d := &Draft{
		profile: p,
		limits:  limits,
		values:  make(map[string]any, len(initial)),
		errors:  validators.Errors{},
	}
	for k, v := range initial {
		d.values[k] = v
	}
	d.last = Summarize(p, d.values, limits)
	return d
}

// Set сохраняет значение, снимает ошибку поля и пересчитывает вычисляемые поля
func (d *Draft) Set(field string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if value == nil {
		delete(d.values, field)
	} else {
		d.values[field] = value
	}
	d.errors.Clear(field)
	d.last = Summarize(d.profile, d.values, d.limits)
}

// Values возвращает текущую запись с заполненными вычисляемыми полями
func (d *Draft) Values() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]any, len(d.last.Record))
	for k, v := range d.last.Record {
		out[k] = v
	}
	return out
}

// Errors возвращает показываемые сейчас ошибки полей
func (d *Draft) Errors() validators.Errors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errors.Clone()
}

// Warnings возвращает предупреждения для текущих значений
func (d *Draft) Warnings() validators.Errors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.Warnings.Clone()
}

// Submit запускает полную проверку. Запись можно отправлять, если результат OK.
func (d *Draft) Submit() Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = Summarize(d.profile, d.values, d.limits)
	d.errors = d.last.Errors.Clone()
	return d.last
}
