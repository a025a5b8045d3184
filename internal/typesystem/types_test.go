package typesystem

import "testing"

func TestEqualTreatsUnknownAsWildcard(t *testing.T) {
	cases := []struct {
		a, b Type
		want bool
	}{
		{Int, Int, true},
		{Int, String, false},
		{Option(Int), Option(Unknown), true},
		{Option(Int), Result(Int, String), false},
		{TTuple{Elements: []Type{Int, Bool}}, TTuple{Elements: []Type{Int, Bool}}, true},
		{TTuple{Elements: []Type{Int}}, TTuple{Elements: []Type{Int, Bool}}, false},
		{TArray{Element: String}, TArray{Element: Unknown}, true},
	}
	for _, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("Equal(%s, %s) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestTypeTableConstructors(t *testing.T) {
	tt := NewTypeTable()
	if err := tt.DeclareSum(&SumType{Name: "Shape", Variants: []*Variant{
		{Name: "Circle", Fields: []Type{Int}},
		{Name: "Square"},
	}}); err != nil {
		t.Fatal(err)
	}
	v, ok := tt.Constructor("Circle")
	if !ok || v.Owner != "Shape" || len(v.Fields) != 1 {
		t.Fatalf("unexpected constructor %+v", v)
	}
	if err := tt.DeclareSum(&SumType{Name: "Other", Variants: []*Variant{{Name: "Square"}}}); err == nil {
		t.Errorf("expected duplicate constructor error")
	}

	some, _ := tt.Constructor("Some")
	fields := tt.FieldTypes(some, Option(String))
	if len(fields) != 1 || !Equal(fields[0], String) || IsUnknown(fields[0]) {
		t.Errorf("Some field under Option<String> = %v", fields)
	}
	if fields := tt.FieldTypes(some, Unknown); !IsUnknown(fields[0]) {
		t.Errorf("unresolved parameter should be unknown, got %v", fields[0])
	}
}
