package typescript

import (
	"testing"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
)

func TestTsType(t *testing.T) {
	str := ir.Primitive(ir.KindString)
	num := ir.Primitive(ir.KindNumber)
	null := ir.Primitive(ir.KindNull)
	index := num
	withIndex := ir.Object()
	withIndex.Index = &index

	tests := []struct {
		name      string
		namespace string
		input     ir.Struct
		expected  string
	}{
		{"string", "", str, "string"},
		{"any", "", ir.Primitive(ir.KindAny), "any"},
		{"never", "", ir.Never(), "never"},
		{"undefined", "", ir.Undefined(), "undefined"},
		{"empty object", "", ir.Object(), "{}"},
		{"string enum", "", ir.Struct{Kind: ir.KindString, Enum: []any{"a", `b"c`}}, `"a" | "b\"c"`},
		{"number enum", "", ir.Struct{Kind: ir.KindNumber, Enum: []any{float64(1), 2.5}}, "1 | 2.5"},
		{"nullable", "", ir.Nullable(str), "string | null"},
		{"reference", "", ir.Reference("Pet"), "Pet"},
		{"qualified reference", "Schemas", ir.Reference("Common.Error"), "Schemas.Common.Error"},
		{"array", "", ir.Array(str), "string[]"},
		{"array of unknown", "", ir.Array(ir.Undefined()), "unknown[]"},
		{"array of union", "", ir.Array(ir.Union(str, null)), "(string | null)[]"},
		{"array of enum", "", ir.Array(ir.Struct{Kind: ir.KindString, Enum: []any{"a", "b"}}), `("a" | "b")[]`},
		{
			"union of intersection",
			"S",
			ir.Union(ir.Intersection(ir.Reference("A"), ir.Reference("B")), str),
			"(S.A & S.B) | string",
		},
		{
			"object",
			"",
			ir.Object(
				ir.Property{Name: "id", Struct: num, Comment: "the id"},
				ir.Property{Name: "content-type", Struct: str, Optional: true},
			),
			"{\n    /** the id */\n    id: number;\n    \"content-type\"?: string;\n}",
		},
		{"index signature", "", withIndex, "{\n    [key: string]: number;\n}"},
		{
			"nested object",
			"",
			ir.Object(ir.Property{Name: "a", Struct: ir.Object(ir.Property{Name: "b", Struct: str})}),
			"{\n    a: {\n        b: string;\n    };\n}",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := printer{namespace: test.namespace}.tsType(test.input, 0)
			if got != test.expected {
				t.Errorf("tsType() = %q, expected %q", got, test.expected)
			}
		})
	}
}

func TestDocComment(t *testing.T) {
	tests := []struct {
		text     string
		indent   int
		expected string
	}{
		{"one line", 0, "/** one line */\n"},
		{"one line", 1, "    /** one line */\n"},
		{"first\nsecond", 1, "    /**\n     * first\n     * second\n     */\n"},
		{"ends */ early", 0, "/** ends *\\/ early */\n"},
	}
	for _, test := range tests {
		if got := docComment(test.text, test.indent); got != test.expected {
			t.Errorf("docComment(%q, %d) = %q, expected %q", test.text, test.indent, got, test.expected)
		}
	}
}

func TestTypeSafe(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"listPets", "listPets"},
		{"get-pets", "getPets"},
		{"pets.list", "petsList"},
		{"", "_"},
	}
	for _, test := range tests {
		if got := typeSafe(test.input); got != test.expected {
			t.Errorf("typeSafe(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestRequestBodyType(t *testing.T) {
	bodies := []ir.MediaStruct{
		{ContentType: "application/json", Struct: ir.Reference("NewPet")},
		{ContentType: "multipart/form-data", Struct: ir.Primitive(ir.KindAny)},
	}
	slot := ir.ParameterType{RequestBodies: bodies, RequestContentType: "application/json"}
	if got, want := requestBodyType("createPet", slot), `RequestBody$createPet["application/json"]`; got != want {
		t.Errorf("requestBodyType(slot) = %q, expected %q", got, want)
	}
	all := ir.ParameterType{RequestBodies: bodies}
	if got, want := requestBodyType("createPet", all), `RequestBody$createPet["application/json" | "multipart/form-data"]`; got != want {
		t.Errorf("requestBodyType(no slot) = %q, expected %q", got, want)
	}
}

func TestSuccessResponses(t *testing.T) {
	tests := []struct {
		name     string
		ops      []operationView
		expected string
	}{
		{"none", nil, "void"},
		{"only never", []operationView{{Response: "never"}}, "void"},
		{
			"distinct",
			[]operationView{{Response: "S.Pet"}, {Response: "never"}, {Response: "S.Pet[]"}, {Response: "S.Pet"}},
			"S.Pet | S.Pet[]",
		},
	}
	for _, test := range tests {
		if got := successResponses(test.ops); got != test.expected {
			t.Errorf("%s: successResponses() = %q, expected %q", test.name, got, test.expected)
		}
	}
}

func TestBuildOperationAbsent(t *testing.T) {
	op := buildOperation(ir.Contract{
		OperationID: "health",
		Method:      "GET",
		RequestURI:  "/health",
		Summary:     "Liveness",
		Deprecated:  true,
		Parameters:  ir.ParameterType{Absent: true},
		Response:    ir.Never(),
	}, printer{namespace: "S"})

	if op.ParamsName != "" || op.ArgType != "undefined" {
		t.Errorf("ParamsName = %q, ArgType = %q, expected no argument type", op.ParamsName, op.ArgType)
	}
	if op.ResponseContentTypes != "undefined" {
		t.Errorf("ResponseContentTypes = %q, expected undefined", op.ResponseContentTypes)
	}
	if op.Doc != "Liveness\n@deprecated" {
		t.Errorf("Doc = %q", op.Doc)
	}
	if op.RequestURI != `"/health"` {
		t.Errorf("RequestURI = %q, expected a quoted literal", op.RequestURI)
	}
}
