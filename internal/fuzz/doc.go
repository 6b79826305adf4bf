// Package fuzztests houses Go fuzz harnesses for the C# front end and the
// rule engine (source -> lexer -> parser -> binder -> analyzers). They guard
// against panics, hangs and lossy trees on arbitrary input.
//
// Назначение: гонять произвольные байты через лексер, парсер и анализаторы и
// проверять инварианты дерева.
//
// Не делает: генерацию корпусов, запись файлов, применение исправлений.
//
// Зависимости: internal/source, internal/lexer, internal/parser,
// internal/codefix, internal/analysis, internal/rules, internal/testkit.

package fuzztests
