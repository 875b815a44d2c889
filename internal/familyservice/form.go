package familyservice

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kinfolk/internal/apperr"
	"github.com/starford/kinfolk/internal/models"
)

// ParentLink names a parent or child in a person form.
type ParentLink struct {
	ID   int64             `json:"id"`
	Type models.ParentType `json:"type"`
}

// Validate implements validation.Validatable.
func (l ParentLink) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Type, validation.In(models.Biological, models.Adoptive)),
	)
}

// SpouseLink names a spouse in a person form.
type SpouseLink struct {
	ID     int64               `json:"id"`
	Status models.SpouseStatus `json:"status"`
}

// Validate implements validation.Validatable.
func (l SpouseLink) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Status, validation.In(models.SpouseCurrent, models.SpouseDeceased, models.SpouseDivorced)),
	)
}

// PersonForm is the input of add and edit. Links with a zero id are blank
// rows and are ignored.
type PersonForm struct {
	ShortName string            `json:"shortName"`
	FullName  string            `json:"fullName"`
	Age       int               `json:"age"`
	Gender    models.Gender     `json:"gender"`
	Status    models.LifeStatus `json:"status"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	Parents   []ParentLink      `json:"parents"`
	Spouses   []SpouseLink      `json:"spouses"`
	Children  []ParentLink      `json:"children"`
}

// Validate checks the form on its own, without looking at the store.
func (f *PersonForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.ShortName, validation.Required),
		validation.Field(&f.FullName, validation.Required),
		validation.Field(&f.Gender, validation.Required, validation.In(models.GenderMale, models.GenderFemale)),
		validation.Field(&f.Status, validation.In(models.StatusAlive, models.StatusDeceased)),
		validation.Field(&f.Age, validation.Min(0)),
		validation.Field(&f.Parents),
		validation.Field(&f.Spouses),
		validation.Field(&f.Children),
	)
}

func (f *PersonForm) fields() models.PersonFields {
	status := f.Status
	if status == "" {
		status = models.StatusAlive
	}
	return models.PersonFields{
		ShortName: f.ShortName,
		FullName:  f.FullName,
		Age:       f.Age,
		Gender:    f.Gender,
		Status:    status,
		Phone:     f.Phone,
		Address:   f.Address,
	}
}

// edges returns the relationships the form describes for person id,
// without duplicates. Spouse pairs are compared regardless of direction.
func (f *PersonForm) edges(id int64) []models.Relationship {
	type key struct {
		a, b int64
		t    models.RelationshipType
	}
	seen := make(map[key]bool)
	var out []models.Relationship
	add := func(r models.Relationship) {
		k := key{r.From, r.To, r.Type}
		if r.Type == models.TypeSpouse && k.a > k.b {
			k.a, k.b = k.b, k.a
		}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, r)
	}
	for _, p := range f.Parents {
		if p.ID != 0 {
			add(models.NewParentChild(p.ID, id, parentType(p.Type)))
		}
	}
	for _, s := range f.Spouses {
		if s.ID != 0 {
			status := s.Status
			if status == "" {
				status = models.SpouseCurrent
			}
			add(models.NewSpouse(id, s.ID, status))
		}
	}
	for _, c := range f.Children {
		if c.ID != 0 {
			add(models.NewParentChild(id, c.ID, parentType(c.Type)))
		}
	}
	return out
}

func parentType(t models.ParentType) models.ParentType {
	if t == "" {
		return models.Biological
	}
	return t
}

// check validates the form and then its references against the store.
// self is the id being edited, or zero on create.
func (s *Service) check(ctx context.Context, f *PersonForm, self int64) error {
	if err := apperr.FromValidation(f.Validate()); err != nil {
		return err
	}
	persons, err := s.store.ListPersons(ctx)
	if err != nil {
		return err
	}
	known := make(map[int64]bool, len(persons))
	for _, p := range persons {
		known[p.ID] = true
	}

	bad := &apperr.ValidationError{Fields: map[string]string{}}
	ref := func(field string, i int, id int64) {
		if id == 0 {
			return
		}
		name := fmt.Sprintf("%s[%d].id", field, i)
		switch {
		case self != 0 && id == self:
			bad.Fields[name] = "cannot reference the person being edited"
		case !known[id]:
			bad.Fields[name] = fmt.Sprintf("person %d does not exist", id)
		}
	}
	for i, p := range f.Parents {
		ref("parents", i, p.ID)
	}
	for i, sp := range f.Spouses {
		ref("spouses", i, sp.ID)
	}
	for i, c := range f.Children {
		ref("children", i, c.ID)
	}
	if len(bad.Fields) > 0 {
		return bad
	}
	return nil
}
