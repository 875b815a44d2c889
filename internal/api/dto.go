package api

import (
	"github.com/starford/kinfolk/internal/familyservice"
	"github.com/starford/kinfolk/internal/kinship"
)

// PersonRequest is the body of POST /persons and PUT /persons/{id}.
type PersonRequest = familyservice.PersonForm

// PersonDetail is a person with its derived relations.
type PersonDetail = kinship.Member

// TreeResponse is the body of GET /tree.
type TreeResponse = familyservice.TreeView

// RootsResponse lists root candidates; the first is the rendered root.
type RootsResponse struct {
	Roots []int64 `json:"roots" validate:"required"`
}
