package query

// AppPetByIdQueryText is the document sent for AppPetByIdQuery. The pet id
// is a literal, so the operation takes no variables.
const AppPetByIdQueryText = `query AppPetByIdQuery {
  petById(id: "C-1") {
    id
    name
    photo {
      full
    }
  }
}
`

// PetByIDResponse is the data of an AppPetByIdQuery response.
type PetByIDResponse struct {
	PetByID Pet `json:"petById"`
}

// Pet is the selection of Pet made by AppPetByIdQuery.
type Pet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo *Photo `json:"photo"`
}

// Photo is the selection of Photo made by AppPetByIdQuery.
type Photo struct {
	Full *string `json:"full"`
}

// PhotoURL returns the full-size photo URL, or "" when the pet has no photo.
func (p Pet) PhotoURL() string {
	if p.Photo == nil || p.Photo.Full == nil {
		return ""
	}
	return *p.Photo.Full
}

// AppPetByIdQuery fetches pet C-1. It is validated against the embedded Pet
// Library schema and bound to PetByIDResponse at program start.
var AppPetByIdQuery = MustDefine[PetByIDResponse](mustPetLibrary(), "AppPetByIdQuery", AppPetByIdQueryText)

func mustPetLibrary() *Schema {
	s, err := PetLibrary()
	if err != nil {
		panic(err)
	}
	return s
}
