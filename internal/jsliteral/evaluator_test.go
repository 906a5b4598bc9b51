package jsliteral

import (
	"reflect"
	"testing"
)

func TestEvalVarDeclarations(t *testing.T) {
	src := `
		var jobs = JSON.parse('[{"id":"123"}]');
		let name = "Acme";
		const count = 42;
		var negative = -3.5;
		window.pageType = "product";
	`

	b := Eval(src)

	if got, want := b["name"], "Acme"; got != want {
		t.Fatalf("name = %v, want %v", got, want)
	}
	if got, want := b["count"], int64(42); got != want {
		t.Fatalf("count = %v, want %v", got, want)
	}
	if got, want := b["negative"], -3.5; got != want {
		t.Fatalf("negative = %v, want %v", got, want)
	}
	if got, want := b["pageType"], "product"; got != want {
		t.Fatalf("pageType = %v, want %v", got, want)
	}

	jobs, ok := b["jobs"].([]any)
	if !ok || len(jobs) != 1 {
		t.Fatalf("jobs = %#v, want one-element slice", b["jobs"])
	}
	first, ok := jobs[0].(map[string]any)
	if !ok || first["id"] != "123" {
		t.Fatalf("jobs[0] = %#v, want {id: 123}", jobs[0])
	}
}

func TestEvalObjectAndArrayLiterals(t *testing.T) {
	src := `var config = {name: "widget", tags: ["a", "b"], nested: {on: true, off: null}, skip: undefinedFn()};`

	b := Eval(src)
	cfg, ok := b["config"].(map[string]any)
	if !ok {
		t.Fatalf("config not reduced: %#v", b["config"])
	}

	if cfg["name"] != "widget" {
		t.Fatalf("name = %v", cfg["name"])
	}
	if !reflect.DeepEqual(cfg["tags"], []any{"a", "b"}) {
		t.Fatalf("tags = %#v", cfg["tags"])
	}
	nested, ok := cfg["nested"].(map[string]any)
	if !ok || nested["on"] != true || nested["off"] != nil {
		t.Fatalf("nested = %#v", cfg["nested"])
	}
	if _, dropped := cfg["skip"]; dropped {
		t.Fatalf("unreducible property %q should be dropped, not nulled", "skip")
	}
}

func TestEvalTemplateLiteralNoInterpolation(t *testing.T) {
	b := Eval("var greeting = `hello world`;")
	if b["greeting"] != "hello world" {
		t.Fatalf("greeting = %v", b["greeting"])
	}
}

func TestEvalRejectsInterpolatedTemplateLiteral(t *testing.T) {
	b := Eval("var greeting = `hello ${name}`;")
	if _, ok := b["greeting"]; ok {
		t.Fatalf("interpolated template literal should yield no binding")
	}
}

func TestEvalUnsupportedExpressionYieldsNoBinding(t *testing.T) {
	b := Eval("var x = doSomething();")
	if _, ok := b["x"]; ok {
		t.Fatalf("call to an arbitrary function should yield no binding")
	}
}

func TestEvalMalformedScriptYieldsEmptyBindings(t *testing.T) {
	b := Eval("var x = {")
	if len(b) != 0 {
		t.Fatalf("malformed script should yield empty bindings, got %#v", b)
	}
}
