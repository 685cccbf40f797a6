package params

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type viewModel struct {
	Props
	Foo string
}

func (v *viewModel) Greeting() string { return "hi" }

type counter struct {
	hits int
}

func TestRegistry_AddValidatesInput(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Add("", "var", "value"); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
	if err := reg.Add("foo::bar", " ", "value"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if got := reg.Scopes(); len(got) != 0 {
		t.Fatalf("expected no scopes after failed adds, got %v", got)
	}
}

func TestRegistry_SameKeyOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("foo::bar", "var", "first")
	reg.MustAdd("foo::bar", "var", "second")

	if diff := cmp.Diff(map[string]any{"var": "second"}, reg.Scope("foo::bar")); diff != "" {
		t.Fatalf("scope mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_DefaultsTemplateOverridesGlobal(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd(ScopeAll, "x", "g")
	reg.MustAdd(ScopeAll, "only", "global")
	reg.MustAdd("foo::bar", "x", "t")

	want := map[string]any{"x": "t", "only": "global"}
	if diff := cmp.Diff(want, reg.Defaults("foo::bar")); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	got := reg.Defaults("foo::bar")
	got["x"] = "mutated"
	if reg.Defaults("foo::bar")["x"] != "t" {
		t.Fatalf("Defaults must return a copy")
	}
}

func TestMerger_GlobalDefaultsApplyToMaps(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")

	got := m.Resolve("foo::bar", map[string]any{})
	if diff := cmp.Diff(map[string]any{"var": "value"}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_PerTemplateDefaultsWinOverGlobal(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "x", "g")
	m.Registry().MustAdd("foo::bar", "x", "t")

	got := m.Resolve("foo::bar", map[string]any{})
	if diff := cmp.Diff(map[string]any{"x": "t"}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_SuppliedValuesWin(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")
	m.Registry().MustAdd("foo::bar", "other", "default")

	supplied := map[string]any{"var": "VALUE"}
	got := m.Resolve("foo::bar", supplied)

	want := map[string]any{"var": "VALUE", "other": "default"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"var": "VALUE"}, supplied); diff != "" {
		t.Fatalf("supplied map must not be mutated (-want +got):\n%s", diff)
	}
}

func TestMerger_ScopeIsolation(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd("baz::qux", "var", "value")

	got := m.Resolve("foo::bar", map[string]any{"a": 1})
	if diff := cmp.Diff(map[string]any{"a": 1}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_ScalarsPassThrough(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")

	for _, supplied := range []any{"plain", 42, 3.5, true, nil} {
		if got := m.Resolve("foo::bar", supplied); got != supplied {
			t.Fatalf("expected %v to pass through, got %v", supplied, got)
		}
	}
}

type vars map[string]any

type key string

func TestMerger_StringKeyedMapShapes(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")
	m.Registry().MustAdd(ScopeAll, "a", "default")

	tests := []struct {
		name     string
		supplied any
		want     map[string]any
	}{
		{
			name:     "named map type",
			supplied: vars{"a": 1},
			want:     map[string]any{"a": 1, "var": "value"},
		},
		{
			name:     "string values",
			supplied: map[string]string{"a": "x"},
			want:     map[string]any{"a": "x", "var": "value"},
		},
		{
			name:     "named key type",
			supplied: map[key]int{"b": 2},
			want:     map[string]any{"a": "default", "b": 2, "var": "value"},
		},
	}
	for _, tt := range tests {
		got := m.Resolve("foo::bar", tt.supplied)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%s: resolve mismatch (-want +got):\n%s", tt.name, diff)
		}
	}

	in := vars{"a": 1}
	m.Resolve("foo::bar", in)
	if diff := cmp.Diff(vars{"a": 1}, in); diff != "" {
		t.Fatalf("supplied map must not be modified (-want +got):\n%s", diff)
	}
}

func TestMerger_NilTypedMapReceivesDefaults(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")

	var in map[string]string
	got := m.Resolve("foo::bar", in)
	if diff := cmp.Diff(map[string]any{"var": "value"}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_NestedMapsAreReplaced(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "site", map[string]any{"name": "Example", "lang": "en"})
	m.Registry().MustAdd("blog::post", "site", map[string]any{"name": "Blog"})

	got := m.Resolve("blog::post", map[string]any{})
	want := map[string]any{"site": map[string]any{"name": "Blog"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("template scope must replace nested defaults (-want +got):\n%s", diff)
	}

	got = m.Resolve("page", map[string]any{"site": map[string]any{"lang": "fr"}})
	want = map[string]any{"site": map[string]any{"lang": "fr"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("supplied nested map must replace the default (-want +got):\n%s", diff)
	}
}

func TestMerger_UnsupportedShapesPassThrough(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")

	c := &counter{hits: 3}
	if got := m.Resolve("foo::bar", c); got != c {
		t.Fatalf("expected non-object pointer to pass through, got %#v", got)
	}
	if c.hits != 3 {
		t.Fatalf("pass-through must not touch the value")
	}

	list := []string{"a"}
	got := m.Resolve("foo::bar", list)
	if diff := cmp.Diff(list, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_FillsViewModelsInPlace(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")
	m.Registry().MustAdd(ScopeAll, "Foo", "default-foo")
	m.Registry().MustAdd(ScopeAll, "Greeting", "default-greeting")
	m.Registry().MustAdd("foo::bar", "var2", "value2")

	vm := &viewModel{Foo: "bar"}
	got := m.Resolve("foo::bar", vm)

	if got != vm {
		t.Fatalf("expected the same view model instance back, got %#v", got)
	}
	if vm.Foo != "bar" {
		t.Fatalf("existing field overwritten: %q", vm.Foo)
	}
	want := map[string]any{"var": "value", "var2": "value2"}
	if diff := cmp.Diff(want, vm.Properties()); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_FillKeepsExistingProperties(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")
	m.Registry().MustAdd(ScopeAll, "empty", "filled")

	vm := &viewModel{}
	vm.SetProperty("var", "mine")
	vm.SetProperty("empty", nil)
	m.Resolve("foo::bar", vm)

	want := map[string]any{"var": "mine", "empty": "filled"}
	if diff := cmp.Diff(want, vm.Properties()); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_CustomStrategyIsConsultedFirst(t *testing.T) {
	type bag struct {
		values   map[string]any
		defaults map[string]any
	}

	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")
	m.Registry().MustAdd("foo::bar", "var2", "value2")
	m.Attach(StrategyFunc(func(p any, defaults map[string]any) any {
		b, ok := p.(*bag)
		if !ok {
			return nil
		}
		b.defaults = defaults
		return b
	}))

	supplied := &bag{values: map[string]any{"foo": "bar"}}
	if got := m.Resolve("foo::bar", supplied); got != supplied {
		t.Fatalf("expected custom strategy result, got %#v", got)
	}
	want := map[string]any{"var": "value", "var2": "value2"}
	if diff := cmp.Diff(want, supplied.defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_DecliningStrategyFallsThrough(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")

	calls := 0
	m.Attach(StrategyFunc(func(any, map[string]any) any {
		calls++
		return nil
	}))
	m.Attach(StrategyFunc(func(any, map[string]any) any {
		calls++
		return "scalar results decline too"
	}))

	got := m.Resolve("foo::bar", map[string]any{"foo": "bar"})
	want := map[string]any{"foo": "bar", "var": "value"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
	if calls != 2 {
		t.Fatalf("expected both custom strategies to run, got %d calls", calls)
	}

	vm := &viewModel{}
	m.Resolve("foo::bar", vm)
	if v, _ := vm.Property("var"); v != "value" {
		t.Fatalf("expected built-in object fill after declines, got %v", v)
	}
}

func TestMerger_StrategiesCannotMutateRegistry(t *testing.T) {
	m := NewMerger(nil)
	m.Registry().MustAdd(ScopeAll, "var", "value")
	m.Attach(StrategyFunc(func(_ any, defaults map[string]any) any {
		defaults["var"] = "tampered"
		defaults["extra"] = true
		return nil
	}))

	got := m.Resolve("foo::bar", map[string]any{})
	if diff := cmp.Diff(map[string]any{"var": "value"}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"var": "value"}, m.Registry().Scope(ScopeAll)); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_EmptyMapIsAccepted(t *testing.T) {
	m := NewMerger(nil)
	got := m.Resolve("foo::bar", map[string]any{})
	if diff := cmp.Diff(map[string]any{}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestHasMember(t *testing.T) {
	vm := &viewModel{}
	vm.SetProperty("dyn", "x")

	cases := map[string]bool{
		"Foo":        true,
		"Greeting":   true,
		"dyn":        true,
		"foo":        false,
		"missing":    false,
		"Properties": true,
	}
	for name, want := range cases {
		if got := HasMember(vm, name); got != want {
			t.Fatalf("HasMember(%q) = %v, want %v", name, got, want)
		}
	}
	if HasMember(nil, "Foo") {
		t.Fatalf("nil object has no members")
	}
}
