// Package fuzztests houses Go fuzz harnesses for the preprocessing pipeline:
// reference parsing, include expansion and compiler-log translation. They
// guard against panics and check the invariants that must hold for any
// input.
//
// Назначение: гонять произвольные байты через ref.Parse, Engine.ExpandString
// и Translator.
//
// Не делает: запись файлов, обращение к диску, выполнение CLI.
package fuzztests
