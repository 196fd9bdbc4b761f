package runner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleQueue() {
	q := NewQueue()
	q.Enqueue("first")
	q.Enqueue("second")

	for code, ok := q.Dequeue(); ok; code, ok = q.Dequeue() {
		fmt.Println(code)
	}

	// Output: first
	// second
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a")
	q.Enqueue("b")

	q.Clear()

	assert.Equal(t, 0, q.Len())
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestCompilationFailure(t *testing.T) {
	err := &CompilationFailure{Diagnostics: []Diagnostic{
		{Severity: SeverityWarning, Code: CodeMissingTerminator, Message: "ignored"},
		{Severity: SeverityError, Code: CodeExpressionResultUnused, Line: 2, Message: "unused"},
	}}

	assert.False(t, err.Has(CodeMissingTerminator))
	assert.True(t, err.Has(CodeExpressionResultUnused))
	assert.Equal(t, "compilation failed: warning: ignored; error: line 2: unused", err.Error())
}
