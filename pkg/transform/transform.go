// Package transform - слой очистки и нормализации данных.
// Преобразует нетипизированные записи из localStorage-экспорта
// в строгие структуры целевой схемы MySQL.
//
// Все функции пакета чистые: никакого I/O, никаких обращений к БД.
package transform

import "fmt"

// Issues накапливает результат валидации одной исходной записи.
// Любая ошибка делает запись непригодной для миграции (она пропускается
// и учитывается в errorCount). Предупреждения миграцию не блокируют.
type Issues struct {
	Errors   []string
	Warnings []string
}

// OK сообщает, пригодна ли запись для миграции
func (i *Issues) OK() bool {
	return len(i.Errors) == 0
}

// Errorf добавляет ошибку валидации
func (i *Issues) Errorf(format string, args ...any) {
	i.Errors = append(i.Errors, fmt.Sprintf(format, args...))
}

// Warnf добавляет предупреждение
func (i *Issues) Warnf(format string, args ...any) {
	i.Warnings = append(i.Warnings, fmt.Sprintf(format, args...))
}

// Merge переносит ошибки и предупреждения из другого результата
func (i *Issues) Merge(other Issues) {
	i.Errors = append(i.Errors, other.Errors...)
	i.Warnings = append(i.Warnings, other.Warnings...)
}
