package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func petLibraryForTest(t *testing.T) *Schema {
	t.Helper()
	s, err := PetLibrary()
	require.NoError(t, err)
	return s
}

func Test_AppPetByIdQuery_Descriptor(t *testing.T) {
	op := AppPetByIdQuery

	assert.Equal(t, "AppPetByIdQuery", op.Name())
	assert.Equal(t, "query", op.Kind())
	assert.Equal(t, "query AppPetByIdQuery {\n  petById(id: \"C-1\") {\n    id\n    name\n    photo {\n      full\n    }\n  }\n}\n", op.Text())
	assert.Empty(t, op.VariableNames())

	want := []Field{{
		Key: "petById", Name: "petById", Type: "Pet", NonNull: true,
		Selections: []Field{
			{Key: "id", Name: "id", Type: "ID", NonNull: true},
			{Key: "name", Name: "name", Type: "String", NonNull: true},
			{Key: "photo", Name: "photo", Type: "Photo", Selections: []Field{
				{Key: "full", Name: "full", Type: "String"},
			}},
		},
	}}
	if diff := cmp.Diff(want, op.Shape()); diff != "" {
		t.Errorf("Shape() mismatch (-want +got):\n%s", diff)
	}
}

func Test_Descriptor_ShapeIsACopy(t *testing.T) {
	shape := AppPetByIdQuery.Shape()
	shape[0].Selections[0].Key = "mutated"

	assert.Equal(t, "id", AppPetByIdQuery.Shape()[0].Selections[0].Key)
}

func Test_AppPetByIdQuery_Variables(t *testing.T) {
	assert.NoError(t, AppPetByIdQuery.ValidateVariables(nil))
	assert.NoError(t, AppPetByIdQuery.ValidateVariables(map[string]any{}))

	err := AppPetByIdQuery.ValidateVariables(map[string]any{"id": "C-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable $id")
}

func Test_AppPetByIdQuery_Decode(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		want     *PetByIDResponse
		wantPath string
	}{
		{
			name: "full record",
			data: `{"petById":{"id":"C-1","name":"Medusa","photo":{"full":"http://x/img.png"}}}`,
			want: &PetByIDResponse{PetByID: Pet{ID: "C-1", Name: "Medusa", Photo: &Photo{Full: ptr("http://x/img.png")}}},
		},
		{
			name: "null photo",
			data: `{"petById":{"id":"C-1","name":"Medusa","photo":null}}`,
			want: &PetByIDResponse{PetByID: Pet{ID: "C-1", Name: "Medusa"}},
		},
		{
			name: "null full",
			data: `{"petById":{"id":"C-1","name":"Medusa","photo":{"full":null}}}`,
			want: &PetByIDResponse{PetByID: Pet{ID: "C-1", Name: "Medusa", Photo: &Photo{}}},
		},
		{
			name:     "null pet",
			data:     `{"petById":null}`,
			wantPath: "petById",
		},
		{
			name:     "missing name",
			data:     `{"petById":{"id":"C-1","photo":null}}`,
			wantPath: "petById.name",
		},
		{
			name:     "null name",
			data:     `{"petById":{"id":"C-1","name":null,"photo":null}}`,
			wantPath: "petById.name",
		},
		{
			name:     "photo is a string",
			data:     `{"petById":{"id":"C-1","name":"Medusa","photo":"http://x/img.png"}}`,
			wantPath: "petById.photo",
		},
		{
			name:     "name is a number",
			data:     `{"petById":{"id":"C-1","name":7,"photo":null}}`,
			wantPath: "petById.name",
		},
		{
			name:     "data is null",
			data:     `null`,
			wantPath: "",
		},
		{
			name:     "data is absent",
			data:     ``,
			wantPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppPetByIdQuery.Decode(json.RawMessage(tt.data))
			if tt.want != nil {
				require.NoError(t, err)
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
				}
				return
			}

			var sme *SchemaMismatchError
			require.True(t, errors.As(err, &sme), "error %v (%T) is not *SchemaMismatchError", err, err)
			assert.Equal(t, "AppPetByIdQuery", sme.Operation)
			assert.Equal(t, tt.wantPath, sme.Path)
			assert.Nil(t, got)
		})
	}
}

func Test_Pet_PhotoURL(t *testing.T) {
	assert.Equal(t, "", Pet{}.PhotoURL())
	assert.Equal(t, "", Pet{Photo: &Photo{}}.PhotoURL())
	assert.Equal(t, "http://x/img.png", Pet{Photo: &Photo{Full: ptr("http://x/img.png")}}.PhotoURL())
}

// ---------------------------------------------------------------------------
// Define: load-time rejection
// ---------------------------------------------------------------------------

type okPet struct {
	PetByID struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Photo *struct {
			Full *string `json:"full"`
		} `json:"photo"`
	} `json:"petById"`
}

type nullablePhotoByValue struct {
	PetByID struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Photo struct {
			Full *string `json:"full"`
		} `json:"photo"`
	} `json:"petById"`
}

type nonNullNameAsPointer struct {
	PetByID struct {
		ID    string  `json:"id"`
		Name  *string `json:"name"`
		Photo *struct {
			Full *string `json:"full"`
		} `json:"photo"`
	} `json:"petById"`
}

type nameAsInt struct {
	PetByID struct {
		ID    string `json:"id"`
		Name  int    `json:"name"`
		Photo *struct {
			Full *string `json:"full"`
		} `json:"photo"`
	} `json:"petById"`
}

type missingPhoto struct {
	PetByID struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"petById"`
}

type extraWeight struct {
	PetByID struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Weight *float64 `json:"weight"`
		Photo  *struct {
			Full *string `json:"full"`
		} `json:"photo"`
	} `json:"petById"`
}

func Test_Define_BindingMismatches(t *testing.T) {
	s := petLibraryForTest(t)

	tests := []struct {
		name     string
		define   func() error
		wantPath string
	}{
		{
			name: "matching type binds",
			define: func() error {
				_, err := Define[okPet](s, "AppPetByIdQuery", AppPetByIdQueryText)
				return err
			},
		},
		{
			name: "nullable object bound by value",
			define: func() error {
				_, err := Define[nullablePhotoByValue](s, "AppPetByIdQuery", AppPetByIdQueryText)
				return err
			},
			wantPath: "petById.photo",
		},
		{
			name: "non-null scalar bound to pointer",
			define: func() error {
				_, err := Define[nonNullNameAsPointer](s, "AppPetByIdQuery", AppPetByIdQueryText)
				return err
			},
			wantPath: "petById.name",
		},
		{
			name: "String bound to int",
			define: func() error {
				_, err := Define[nameAsInt](s, "AppPetByIdQuery", AppPetByIdQueryText)
				return err
			},
			wantPath: "petById.name",
		},
		{
			name: "selected field missing from type",
			define: func() error {
				_, err := Define[missingPhoto](s, "AppPetByIdQuery", AppPetByIdQueryText)
				return err
			},
			wantPath: "petById.photo",
		},
		{
			name: "type field not selected",
			define: func() error {
				_, err := Define[extraWeight](s, "AppPetByIdQuery", AppPetByIdQueryText)
				return err
			},
			wantPath: "petById.weight",
		},
		{
			name: "operation name differs",
			define: func() error {
				_, err := Define[okPet](s, "PetQuery", AppPetByIdQueryText)
				return err
			},
			wantPath: "",
		},
		{
			name: "root bound to non-struct",
			define: func() error {
				_, err := Define[string](s, "AppPetByIdQuery", AppPetByIdQueryText)
				return err
			},
			wantPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.define()
			if tt.name == "matching type binds" {
				require.NoError(t, err)
				return
			}
			var sme *SchemaMismatchError
			require.True(t, errors.As(err, &sme), "error %v (%T) is not *SchemaMismatchError", err, err)
			assert.Equal(t, tt.wantPath, sme.Path)
		})
	}
}

func Test_Define_InvalidDocuments(t *testing.T) {
	s := petLibraryForTest(t)

	tests := []struct {
		name string
		text string
	}{
		{name: "syntax error", text: `query AppPetByIdQuery { petById(id: "C-1") { id `},
		{name: "unknown field", text: `query AppPetByIdQuery { petById(id: "C-1") { color } }`},
		{name: "missing required argument", text: `query AppPetByIdQuery { petById { id } }`},
		{name: "object without selection", text: `query AppPetByIdQuery { petById(id: "C-1") }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Define[okPet](s, "AppPetByIdQuery", tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "query: AppPetByIdQuery:")
		})
	}
}

func Test_Define_NilSchema(t *testing.T) {
	_, err := Define[okPet](nil, "AppPetByIdQuery", AppPetByIdQueryText)
	require.Error(t, err)
}

func Test_MustDefine_Panics(t *testing.T) {
	s := petLibraryForTest(t)
	assert.Panics(t, func() {
		MustDefine[missingPhoto](s, "AppPetByIdQuery", AppPetByIdQueryText)
	})
}

func Test_Define_AliasesFragmentsAndLists(t *testing.T) {
	s := petLibraryForTest(t)

	type aliased struct {
		Pet struct {
			PetName string `json:"petName"`
		} `json:"pet"`
	}
	op, err := Define[aliased](s, "Aliased", `query Aliased { pet: petById(id: "C-1") { petName: name } }`)
	require.NoError(t, err)
	got, err := op.Decode(json.RawMessage(`{"pet":{"petName":"Medusa"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Medusa", got.Pet.PetName)

	type fragmented struct {
		PetByID struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"petById"`
	}
	_, err = Define[fragmented](s, "Fragmented", `query Fragmented { petById(id: "C-1") { id ...PetName } }
fragment PetName on Pet { name id }`)
	require.NoError(t, err)

	type listed struct {
		AllPets []struct {
			Name   string  `json:"name"`
			Status *string `json:"status"`
		} `json:"allPets"`
	}
	lop, err := Define[listed](s, "Listed", `query Listed { allPets { name status } }`)
	require.NoError(t, err)

	_, err = lop.Decode(json.RawMessage(`{"allPets":[{"name":"Medusa","status":"AVAILABLE"},{"name":"Biscuit","status":null}]}`))
	require.NoError(t, err)

	_, err = lop.Decode(json.RawMessage(`{"allPets":[{"name":"Medusa","status":null},null]}`))
	var sme *SchemaMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, "allPets[1]", sme.Path)
}

func Test_Descriptor_ValidateVariables(t *testing.T) {
	s := petLibraryForTest(t)

	type total struct {
		TotalPets int `json:"totalPets"`
	}
	op, err := Define[total](s, "Total", `query Total($status: PetStatus) { totalPets(status: $status) }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, op.VariableNames())

	assert.NoError(t, op.ValidateVariables(nil))
	assert.NoError(t, op.ValidateVariables(map[string]any{"status": "AVAILABLE"}))
	assert.Error(t, op.ValidateVariables(map[string]any{"status": "LOST"}))
	assert.Error(t, op.ValidateVariables(map[string]any{"category": "CAT"}))

	type byID struct {
		PetByID struct {
			Name string `json:"name"`
		} `json:"petById"`
	}
	idOp, err := Define[byID](s, "ByID", `query ByID($id: ID!) { petById(id: $id) { name } }`)
	require.NoError(t, err)
	assert.Error(t, idOp.ValidateVariables(nil), "required variable must be provided")
	assert.NoError(t, idOp.ValidateVariables(map[string]any{"id": "C-2"}))
}

func Test_SchemaMismatchError_Error(t *testing.T) {
	err := &SchemaMismatchError{Operation: "AppPetByIdQuery", Path: "petById.name", Reason: "missing from response"}
	assert.Equal(t, "query: AppPetByIdQuery: petById.name: missing from response", err.Error())

	err.Path = ""
	assert.Equal(t, "query: AppPetByIdQuery: missing from response", err.Error())
}

func Test_LoadSchema_Invalid(t *testing.T) {
	_, err := LoadSchema("bad.graphql", `type Query { pet: Missing }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.graphql")
}

func ptr[T any](v T) *T { return &v }
