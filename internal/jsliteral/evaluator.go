// Package jsliteral statically reduces a narrow, side-effect-free subset
// of JavaScript — the kind of subset used to embed page data in a
// <script> block — to plain JSON values. It never executes code: it
// only uses goja's parser/ast packages to obtain a real ECMAScript AST
// and then walks that AST by hand, recognising a small closed set of
// literal shapes and discarding everything else (§4.2).
package jsliteral

import (
	"encoding/json"
	"math"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

// Bindings maps a top-level variable (or `window.*` property) name to
// its statically-reduced JSON value. Last writer wins within one script,
// matching document-order merge semantics applied by the caller across
// multiple <script> blocks.
type Bindings map[string]any

// Eval parses src as a full JavaScript program and reduces every
// recognised top-level declaration/assignment to a JSON value. A parse
// failure yields an empty, non-nil Bindings and no error is surfaced to
// the caller — per §4.2/§7 a script that fails to parse contributes
// nothing and the indexer moves on to the next script.
func Eval(src string) Bindings {
	out := Bindings{}

	fset := new(file.FileSet)
	program, err := parser.ParseFile(fset, "", src, 0)
	if err != nil || program == nil {
		return out
	}

	for _, stmt := range program.Body {
		evalStatement(stmt, out)
	}

	return out
}

func evalStatement(stmt ast.Statement, out Bindings) {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		for _, b := range s.List {
			evalBinding(b, out)
		}
	case *ast.LexicalDeclaration:
		for _, b := range s.List {
			evalBinding(b, out)
		}
	case *ast.ExpressionStatement:
		evalTopLevelAssignment(s.Expression, out)
	}
}

func evalBinding(b *ast.Binding, out Bindings) {
	if b == nil || b.Initializer == nil {
		return
	}
	id, ok := b.Target.(*ast.Identifier)
	if !ok {
		return
	}
	v, ok := reduce(b.Initializer)
	if !ok {
		return
	}
	out[string(id.Name)] = v
}

// evalTopLevelAssignment recognises `name = expr` and the special-cased
// `window.name = expr` member assignment (§4.2). Any other assignment
// target, including arbitrary member expressions, is ignored.
func evalTopLevelAssignment(expr ast.Expression, out Bindings) {
	assign, ok := expr.(*ast.AssignExpression)
	if !ok || assign.Operator.String() != "=" {
		return
	}

	switch target := assign.Left.(type) {
	case *ast.Identifier:
		if v, ok := reduce(assign.Right); ok {
			out[string(target.Name)] = v
		}
	case *ast.DotExpression:
		if obj, ok := target.Left.(*ast.Identifier); ok && string(obj.Name) == "window" {
			if v, ok := reduce(assign.Right); ok {
				out[string(target.Identifier.Name)] = v
			}
		}
	}
}

// reduce statically evaluates expr to a JSON-compatible Go value
// (string, float64, int64, bool, nil, []any, map[string]any). The
// second return value is false for any expression shape outside the
// recognised subset.
func reduce(expr ast.Expression) (any, bool) {
	switch e := expr.(type) {
	case *ast.StringLiteral:
		return string(e.Value), true
	case *ast.BooleanLiteral:
		return e.Value, true
	case *ast.NullLiteral:
		return nil, true
	case *ast.NumberLiteral:
		return reduceNumber(e.Value)
	case *ast.UnaryExpression:
		return reduceUnaryMinus(e)
	case *ast.TemplateLiteral:
		return reduceTemplateLiteral(e)
	case *ast.ArrayLiteral:
		return reduceArray(e)
	case *ast.ObjectLiteral:
		return reduceObject(e)
	case *ast.CallExpression:
		return reduceJSONParseCall(e)
	default:
		return nil, false
	}
}

// reduceNumber converts goja's parsed numeric literal value (float64 or
// int64 depending on the source form) to the JSON representation: a
// signed 64-bit integer when the value is integral and in range,
// otherwise an IEEE-754 double. Non-finite doubles are rejected.
func reduceNumber(v any) (any, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
		return n, true
	default:
		return nil, false
	}
}

func reduceUnaryMinus(e *ast.UnaryExpression) (any, bool) {
	if e.Operator.String() != "-" {
		return nil, false
	}
	num, ok := e.Operand.(*ast.NumberLiteral)
	if !ok {
		return nil, false
	}
	v, ok := reduceNumber(num.Value)
	if !ok {
		return nil, false
	}
	switch n := v.(type) {
	case int64:
		return -n, true
	case float64:
		return -n, true
	}
	return nil, false
}

// reduceTemplateLiteral accepts only template literals with zero
// interpolated expressions, returning the single raw quasi as a string.
func reduceTemplateLiteral(e *ast.TemplateLiteral) (any, bool) {
	if len(e.Expressions) != 0 || len(e.Elements) != 1 {
		return nil, false
	}
	return string(e.Elements[0].Parsed), true
}

func reduceArray(e *ast.ArrayLiteral) (any, bool) {
	out := make([]any, len(e.Value))
	for i, el := range e.Value {
		if el == nil {
			continue
		}
		if v, ok := reduce(el); ok {
			out[i] = v
		}
	}
	return out, true
}

func reduceObject(e *ast.ObjectLiteral) (any, bool) {
	out := map[string]any{}
	for _, prop := range e.Value {
		keyed, ok := prop.(*ast.PropertyKeyed)
		if !ok || keyed.Computed {
			continue
		}
		key, ok := propertyKeyName(keyed.Key)
		if !ok {
			continue
		}
		val, ok := reduce(keyed.Value)
		if !ok {
			continue
		}
		out[key] = val
	}
	return out, true
}

func propertyKeyName(key ast.Expression) (string, bool) {
	switch k := key.(type) {
	case *ast.Identifier:
		return string(k.Name), true
	case *ast.StringLiteral:
		return string(k.Value), true
	case *ast.NumberLiteral:
		return k.Literal, true
	default:
		return "", false
	}
}

// reduceJSONParseCall recognises `JSON.parse('literal string')` and
// parses the string-literal argument as JSON. Any other callee shape,
// argument count, or non-string argument is rejected.
func reduceJSONParseCall(e *ast.CallExpression) (any, bool) {
	dot, ok := e.Callee.(*ast.DotExpression)
	if !ok {
		return nil, false
	}
	obj, ok := dot.Left.(*ast.Identifier)
	if !ok || string(obj.Name) != "JSON" || string(dot.Identifier.Name) != "parse" {
		return nil, false
	}
	if len(e.ArgumentList) != 1 {
		return nil, false
	}
	str, ok := e.ArgumentList[0].(*ast.StringLiteral)
	if !ok {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(str.Value), &v); err != nil {
		return nil, false
	}
	return v, true
}
