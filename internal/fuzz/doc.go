// Package fuzztests houses Go fuzz harnesses for the front half of the
// stepscan pipeline (source -> lexer -> record splitter -> entity table).
// Harnesses only check that arbitrary bytes never panic, hang or break the
// structural invariants from internal/testkit.
//
// Назначение: загрузить байты в FileSet и прогнать их через лексер, парсер
// записей и построение таблицы сущностей.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/parser, internal/graph,
// internal/diag, internal/testkit.

package fuzztests
