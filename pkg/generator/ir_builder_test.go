package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/config"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
)

func buildPetstore(t *testing.T) ir.IR {
	t.Helper()
	store, err := openapi.LoadDocument(context.Background(), "testdata/petstore.yml")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	out, err := BuildIR(store, Options{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("BuildIR: %v", err)
	}
	return out
}

func buildInline(t *testing.T, src string) (ir.IR, error) {
	t.Helper()
	return BuildIR(newTestStore(t, src, nil), Options{Logger: discardLogger()})
}

func TestBuildIRDeclarations(t *testing.T) {
	out := buildPetstore(t)

	var names []string
	for _, d := range out.Declarations {
		names = append(names, d.QualifiedName())
	}
	want := []string{"NewPet", "Pet", "PetPropertiesDetails", "Tag", "Unused", "Common.Error"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("declarations mismatch (-want +got):\n%s", diff)
	}

	byName := map[string]ir.Declaration{}
	for _, d := range out.Declarations {
		byName[d.QualifiedName()] = d
	}

	number := ir.Primitive(ir.KindNumber)
	str := ir.Primitive(ir.KindString)
	details := ir.Object(ir.Property{Name: "age", Struct: number, Optional: true})
	pet := ir.Declaration{
		Name:     "Pet",
		Location: "#/components/schemas/Pet",
		Comment:  "A pet for sale.",
		Struct: ir.Object(
			ir.Property{Name: "details", Struct: details, Optional: true},
			ir.Property{Name: "id", Struct: number},
			ir.Property{Name: "name", Struct: str},
			ir.Property{Name: "owner", Struct: ir.Reference("PetPropertiesDetails"), Optional: true},
			ir.Property{Name: "parent", Struct: ir.Reference("Pet"), Optional: true},
			ir.Property{
				Name:     "status",
				Struct:   ir.Nullable(ir.Struct{Kind: ir.KindString, Enum: []any{"available", "sold"}}),
				Optional: true,
			},
			ir.Property{Name: "tag", Struct: ir.Reference("Tag"), Optional: true},
		),
	}
	if diff := cmp.Diff(pet, byName["Pet"]); diff != "" {
		t.Errorf("Pet mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name     string
		location string
		expected ir.Struct
	}{
		{"PetPropertiesDetails", "#/components/schemas/Pet/properties/details", details},
		{"Tag", "schemas/Tag.yml#", ir.Object(ir.Property{Name: "label", Struct: str, Optional: true})},
		{"Unused", "#/components/schemas/Unused", str},
		{
			"Common.Error",
			"common.yml#/components/schemas/Error",
			ir.Object(
				ir.Property{Name: "code", Struct: number, Optional: true},
				ir.Property{Name: "message", Struct: str},
			),
		},
	}
	for _, test := range tests {
		d := byName[test.name]
		if d.Location != test.location {
			t.Errorf("%s location = %q, expected %q", test.name, d.Location, test.location)
		}
		if diff := cmp.Diff(test.expected, d.Struct); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestBuildIRContractOrder(t *testing.T) {
	out := buildPetstore(t)
	var got []string
	for _, c := range out.Contracts {
		got = append(got, c.Method+" "+c.RequestURI+" "+c.OperationID)
	}
	want := []string{
		"GET /health health",
		"GET /pets listPets",
		"POST /pets createPet",
		"GET /pets/{petId} getPet",
		"DELETE /pets/{petId} deletePetsPetId",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contracts mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIRContracts(t *testing.T) {
	ops := buildPetstore(t).Operations()
	str := ir.Primitive(ir.KindString)
	commonError := ir.Reference("Common.Error")

	limit := ir.Object(ir.Property{
		Name:     "limit",
		Struct:   ir.Primitive(ir.KindNumber),
		Optional: true,
		Comment:  "How many items to return",
	})
	petID := ir.Object(ir.Property{Name: "petId", Struct: str})

	tests := []struct {
		id       string
		expected ir.Contract
	}{
		{
			id: "health",
			expected: ir.Contract{
				OperationID:          "health",
				Method:               "GET",
				RequestURI:           "/health",
				Parameters:           ir.ParameterType{Absent: true},
				Response:             ir.Never(),
				ResponseContentTypes: []string{"text/plain"},
			},
		},
		{
			id: "listPets",
			expected: ir.Contract{
				OperationID:          "listPets",
				Method:               "GET",
				RequestURI:           "/pets",
				Tags:                 []string{"pets"},
				Summary:              "List all pets",
				Parameters:           ir.ParameterType{Name: "Params$listPets", Parameter: &limit},
				Response:             ir.Array(ir.Reference("Pet")),
				ResponseContentTypes: []string{"application/json"},
				ErrorResponses:       []ir.NamedStruct{{Name: "default", Struct: commonError}},
			},
		},
		{
			id: "createPet",
			expected: ir.Contract{
				OperationID: "createPet",
				Method:      "POST",
				RequestURI:  "/pets",
				Tags:        []string{"pets"},
				Parameters: ir.ParameterType{
					Name: "Params$createPet",
					RequestBodies: []ir.MediaStruct{
						{ContentType: "application/json", Struct: ir.Reference("NewPet")},
						{ContentType: "application/x-www-form-urlencoded", Struct: ir.Reference("NewPet")},
					},
					RequestBodyRequired: true,
					RequestContentType:  "application/json",
				},
				Response:             ir.Reference("Pet"),
				RequestContentTypes:  []string{"application/json", "application/x-www-form-urlencoded"},
				ResponseContentTypes: []string{"application/json"},
			},
		},
		{
			id: "getPet",
			expected: ir.Contract{
				OperationID: "getPet",
				Method:      "GET",
				RequestURI:  "/pets/{petId}",
				Tags:        []string{"pets"},
				Parameters: ir.ParameterType{
					Name:                 "Params$getPet",
					Parameter:            &petID,
					ResponseContentTypes: []string{"application/json", "application/pdf"},
				},
				Response:             ir.Reference("Pet"),
				ResponseContentTypes: []string{"application/json", "application/pdf"},
				ErrorResponses:       []ir.NamedStruct{{Name: "404", Struct: commonError}},
			},
		},
		{
			id: "deletePetsPetId",
			expected: ir.Contract{
				OperationID: "deletePetsPetId",
				Method:      "DELETE",
				RequestURI:  "/pets/{petId}",
				Tags:        []string{"admin"},
				Deprecated:  true,
				Parameters:  ir.ParameterType{Name: "Params$deletePetsPetId", Parameter: &petID},
				Response:    ir.Never(),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.id, func(t *testing.T) {
			got, ok := ops[test.id]
			if !ok {
				t.Fatalf("operation %q missing", test.id)
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("contract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildIRContentTypeSlots(t *testing.T) {
	const src = `
paths:
  /upload:
    post:
      operationId: upload
      requestBody:
        content:
          application/octet-stream:
            schema:
              type: string
          text/plain:
            schema:
              type: string
      responses:
        200:
          description: ok
          content:
            application/problem+json:
              schema:
                type: number
`
	out, err := buildInline(t, src)
	if err != nil {
		t.Fatalf("BuildIR: %v", err)
	}
	c := out.Operations()["upload"]
	if c.Parameters.RequestContentType != "" {
		t.Errorf("RequestContentType = %q, expected no slot without application/json", c.Parameters.RequestContentType)
	}
	if c.Parameters.ResponseContentTypes != nil {
		t.Errorf("ResponseContentTypes slot = %v, expected none for a single type", c.Parameters.ResponseContentTypes)
	}
	if c.Parameters.Absent {
		t.Error("Parameters.Absent = true, expected a request body argument")
	}
	if diff := cmp.Diff(ir.Primitive(ir.KindNumber), c.Response); diff != "" {
		t.Errorf("Response mismatch, +json must count as JSON (-want +got):\n%s", diff)
	}

	want := ir.Object(ir.Property{Name: "requestBody", Struct: ir.Union(ir.Primitive(ir.KindString), ir.Primitive(ir.KindString)), Optional: true})
	if diff := cmp.Diff(want, c.Parameters.Struct()); diff != "" {
		t.Errorf("Parameters.Struct() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIRParameterOverride(t *testing.T) {
	const src = `
paths:
  /items/{id}:
    parameters:
      - name: id
        in: path
        schema:
          type: string
      - name: verbose
        in: query
        schema:
          type: boolean
    get:
      operationId: getItem
      parameters:
        - name: id
          in: path
          schema:
            type: integer
        - name: session
          in: cookie
          schema:
            type: string
      responses:
        200:
          description: ok
`
	out, err := buildInline(t, src)
	if err != nil {
		t.Fatalf("BuildIR: %v", err)
	}
	c := out.Operations()["getItem"]
	want := ir.Object(
		ir.Property{Name: "id", Struct: ir.Primitive(ir.KindNumber)},
		ir.Property{Name: "verbose", Struct: ir.Primitive(ir.KindBoolean), Optional: true},
	)
	if c.Parameters.Parameter == nil {
		t.Fatal("Parameters.Parameter = nil, expected path and query parameters")
	}
	if diff := cmp.Diff(want, *c.Parameters.Parameter); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ir.Never(), c.Response); diff != "" {
		t.Errorf("Response mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIRErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected error
	}{
		{
			name: "duplicate operationId",
			src: `
paths:
  /a:
    get:
      operationId: same
      responses: {}
  /b:
    get:
      operationId: same
      responses: {}
`,
			expected: ErrDuplicateOperation,
		},
		{
			name: "tuple items in response",
			src: `
paths:
  /a:
    get:
      responses:
        200:
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: [{type: string}]
`,
			expected: ErrUnsupportedShape,
		},
		{
			name: "unset type in component",
			src: `
components:
  schemas:
    Bare:
      description: nothing here
`,
			expected: ErrUnsetType,
		},
		{
			name: "missing parameter reference",
			src: `
paths:
  /a:
    get:
      parameters:
        - $ref: '#/components/parameters/Missing'
      responses: {}
`,
			expected: ErrUnresolvedReference,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := buildInline(t, test.src)
			if !errors.Is(err, test.expected) {
				t.Errorf("BuildIR error = %v, expected %v", err, test.expected)
			}
		})
	}
}

func TestBuildIRErrorNamesOperation(t *testing.T) {
	const src = `
paths:
  /broken:
    put:
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Nope'
      responses: {}
`
	_, err := buildInline(t, src)
	if err == nil {
		t.Fatal("BuildIR succeeded, expected an error")
	}
	if got := err.Error(); !strings.HasPrefix(got, "PUT /broken: ") {
		t.Errorf("error = %q, expected it to start with the method and path", got)
	}
}

func TestRelativeLocation(t *testing.T) {
	entry := "/spec/openapi.yml"
	tests := []struct {
		point    openapi.Point
		expected string
	}{
		{openapi.Point{URI: entry, Pointer: "/components/schemas/Pet"}, "#/components/schemas/Pet"},
		{openapi.Point{URI: "/spec/schemas/Tag.yml"}, "schemas/Tag.yml#"},
		{openapi.Point{URI: "/other/common.yml", Pointer: "/a"}, "/other/common.yml#/a"},
	}
	for _, test := range tests {
		if got := relativeLocation(entry, test.point); got != test.expected {
			t.Errorf("relativeLocation(%v) = %q, expected %q", test.point, got, test.expected)
		}
	}
}

func TestFilterIR(t *testing.T) {
	full := buildPetstore(t)
	tests := []struct {
		name     string
		output   config.Output
		expected []string
	}{
		{"no filters", config.Output{}, []string{"health", "listPets", "createPet", "getPet", "deletePetsPetId"}},
		{"include admin", config.Output{IncludeTags: []string{"^admin$"}}, []string{"deletePetsPetId"}},
		{"untagged is misc", config.Output{IncludeTags: []string{"misc"}}, []string{"health"}},
		{"exclude pets", config.Output{ExcludeTags: []string{"pets"}}, []string{"health", "deletePetsPetId"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			filtered, err := filterIR(full, test.output)
			if err != nil {
				t.Fatalf("filterIR: %v", err)
			}
			var ids []string
			for _, c := range filtered.Contracts {
				ids = append(ids, c.OperationID)
			}
			if diff := cmp.Diff(test.expected, ids); diff != "" {
				t.Errorf("contracts mismatch (-want +got):\n%s", diff)
			}
			if len(filtered.Declarations) != len(full.Declarations) {
				t.Errorf("declarations = %d, expected all %d kept", len(filtered.Declarations), len(full.Declarations))
			}
		})
	}

	if _, err := filterIR(full, config.Output{IncludeTags: []string{"("}}); err == nil {
		t.Error("filterIR with an invalid pattern succeeded, expected an error")
	}
}
