package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/kinfolk/internal/familyservice"
	"github.com/starford/kinfolk/internal/models"
	"github.com/starford/kinfolk/internal/testutil"
)

func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	svc := familyservice.NewService(testutil.TestStore(t), nil)
	return NewRouter(svc, authToken != "", authToken, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func create(t *testing.T, h http.Handler, f familyservice.PersonForm) int64 {
	t.Helper()
	w := do(t, h, http.MethodPost, "/persons", f)
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s = %d, body = %s", f.ShortName, w.Code, w.Body.String())
	}
	var m PersonDetail
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	return m.ID
}

func person(name string, g models.Gender) familyservice.PersonForm {
	return familyservice.PersonForm{ShortName: name, FullName: name + " Full", Gender: g}
}

func TestCreateAndGetPerson(t *testing.T) {
	h := testEnv(t, "")
	father := create(t, h, person("Ayah", models.GenderMale))

	child := person("Anak", models.GenderFemale)
	child.Age = 7
	child.Parents = []familyservice.ParentLink{{ID: father, Type: models.Adoptive}}
	childID := create(t, h, child)

	w := do(t, h, http.MethodGet, fmt.Sprintf("/persons/%d", father), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var m PersonDetail
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m.ShortName != "Ayah" || m.Status != models.StatusAlive {
		t.Errorf("person = %+v", m.Person)
	}
	if len(m.Children) != 1 || m.Children[0].ID != childID || m.Children[0].Type != models.Adoptive {
		t.Errorf("children = %+v", m.Children)
	}
	if m.Spouses == nil || m.Parents == nil {
		t.Error("relation arrays must be present even when empty")
	}
}

func TestCreateSetsLocation(t *testing.T) {
	h := testEnv(t, "")
	w := do(t, h, http.MethodPost, "/persons", person("Solo", models.GenderMale))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/persons/1" {
		t.Errorf("Location = %q", loc)
	}
}

func TestCreateValidation(t *testing.T) {
	h := testEnv(t, "")

	bad := person("", "Other")
	bad.Parents = []familyservice.ParentLink{{ID: 99}}
	w := do(t, h, http.MethodPost, "/persons", bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Fields["shortName"] == "" || resp.Fields["gender"] == "" {
		t.Errorf("fields = %v", resp.Fields)
	}

	ref := person("Orphan", models.GenderMale)
	ref.Parents = []familyservice.ParentLink{{ID: 99}}
	w = do(t, h, http.MethodPost, "/persons", ref)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown ref status = %d, want 400", w.Code)
	}
	resp = errResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Fields["parents[0].id"] == "" {
		t.Errorf("fields = %v", resp.Fields)
	}

	w = do(t, h, http.MethodGet, "/persons", nil)
	var list []models.Person
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 0 {
		t.Errorf("rejected writes left %d persons", len(list))
	}
}

func TestInvalidJSONAndID(t *testing.T) {
	h := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/persons", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}

	for _, path := range []string{"/persons/abc", "/persons/0", "/persons/-3"} {
		if w := do(t, h, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, w.Code)
		}
	}
}

func TestNotFound(t *testing.T) {
	h := testEnv(t, "")
	tests := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/persons/42", nil},
		{http.MethodPut, "/persons/42", person("X", models.GenderMale)},
		{http.MethodDelete, "/persons/42", nil},
	}
	for _, tt := range tests {
		if w := do(t, h, tt.method, tt.path, tt.body); w.Code != http.StatusNotFound {
			t.Errorf("%s %s = %d, want 404", tt.method, tt.path, w.Code)
		}
	}
}

func TestUpdatePerson(t *testing.T) {
	h := testEnv(t, "")
	a := create(t, h, person("A", models.GenderMale))
	b := create(t, h, person("B", models.GenderFemale))

	upd := person("A2", models.GenderMale)
	upd.Status = models.StatusDeceased
	upd.Spouses = []familyservice.SpouseLink{{ID: b, Status: models.SpouseDeceased}}
	w := do(t, h, http.MethodPut, fmt.Sprintf("/persons/%d", a), upd)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var m PersonDetail
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m.ShortName != "A2" || m.Status != models.StatusDeceased {
		t.Errorf("person = %+v", m.Person)
	}
	if len(m.Spouses) != 1 || m.Spouses[0].ID != b || m.Spouses[0].Status != models.SpouseDeceased {
		t.Errorf("spouses = %+v", m.Spouses)
	}

	self := person("A3", models.GenderMale)
	self.Children = []familyservice.ParentLink{{ID: a}}
	if w := do(t, h, http.MethodPut, fmt.Sprintf("/persons/%d", a), self); w.Code != http.StatusBadRequest {
		t.Errorf("self reference = %d, want 400", w.Code)
	}
}

func TestDeletePersonCascades(t *testing.T) {
	h := testEnv(t, "")
	a := create(t, h, person("A", models.GenderMale))
	b := person("B", models.GenderFemale)
	b.Spouses = []familyservice.SpouseLink{{ID: a}}
	bID := create(t, h, b)

	if w := do(t, h, http.MethodDelete, fmt.Sprintf("/persons/%d", a), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/relationships", nil)
	var rels []models.Relationship
	_ = json.Unmarshal(w.Body.Bytes(), &rels)
	if len(rels) != 0 {
		t.Errorf("relationships after delete = %+v", rels)
	}

	w = do(t, h, http.MethodGet, fmt.Sprintf("/persons/%d", bID), nil)
	var m PersonDetail
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if len(m.Spouses) != 0 {
		t.Errorf("dangling spouse ref: %+v", m.Spouses)
	}
}

func TestListPersonsSort(t *testing.T) {
	h := testEnv(t, "")
	for _, n := range []string{"Child10", "Child2", "Child1"} {
		create(t, h, person(n, models.GenderMale))
	}

	w := do(t, h, http.MethodGet, "/persons?sort=name", nil)
	var list []models.Person
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	var got []string
	for _, p := range list {
		got = append(got, p.ShortName)
	}
	if fmt.Sprint(got) != "[Child1 Child2 Child10]" {
		t.Errorf("sorted = %v", got)
	}

	if w := do(t, h, http.MethodGet, "/persons?sort=age", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown sort = %d, want 400", w.Code)
	}
}

func TestTree(t *testing.T) {
	h := testEnv(t, "")

	w := do(t, h, http.MethodGet, "/tree", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty tree = %d, want 404", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "no root" {
		t.Errorf("error = %q", resp.Error)
	}

	a := create(t, h, person("A", models.GenderMale))
	wife := person("W", models.GenderFemale)
	wife.Spouses = []familyservice.SpouseLink{{ID: a}}
	create(t, h, wife)
	kid := person("K", models.GenderMale)
	kid.Parents = []familyservice.ParentLink{{ID: a}}
	create(t, h, kid)

	w = do(t, h, http.MethodGet, "/tree", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tree = %d, body = %s", w.Code, w.Body.String())
	}
	var view TreeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.RootID != a || view.Tree.DisplayName != "A" {
		t.Errorf("root = %d %q", view.RootID, view.Tree.DisplayName)
	}
	// A, spouse connector (W), children connector (K)
	if view.Persons != 3 || view.Connectors != 2 {
		t.Errorf("persons = %d, connectors = %d", view.Persons, view.Connectors)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	w = do(t, h, http.MethodGet, "/tree", nil, "If-None-Match", etag)
	if w.Code != http.StatusNotModified {
		t.Errorf("If-None-Match = %d, want 304", w.Code)
	}

	z := person("Z", models.GenderFemale)
	z.Parents = []familyservice.ParentLink{{ID: a}}
	create(t, h, z)
	w = do(t, h, http.MethodGet, "/tree", nil, "If-None-Match", etag)
	if w.Code != http.StatusOK {
		t.Errorf("changed tree = %d, want 200", w.Code)
	}
}

func TestTreeCycleConflict(t *testing.T) {
	h := testEnv(t, "")
	r := create(t, h, person("R", models.GenderMale))
	a := person("A", models.GenderMale)
	a.Parents = []familyservice.ParentLink{{ID: r}}
	aID := create(t, h, a)
	b := person("B", models.GenderMale)
	b.Parents = []familyservice.ParentLink{{ID: aID}}
	b.Children = []familyservice.ParentLink{{ID: aID}}
	bID := create(t, h, b)

	w := do(t, h, http.MethodGet, "/tree", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("cyclic tree = %d, want 409", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "tree unavailable: cyclic graph" {
		t.Errorf("error = %q", resp.Error)
	}

	fix := person("B", models.GenderMale)
	fix.Parents = []familyservice.ParentLink{{ID: aID}}
	if w := do(t, h, http.MethodPut, fmt.Sprintf("/persons/%d", bID), fix); w.Code != http.StatusOK {
		t.Fatalf("fix = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/tree", nil); w.Code != http.StatusOK {
		t.Errorf("tree after fix = %d, want 200", w.Code)
	}
}

func TestRoots(t *testing.T) {
	h := testEnv(t, "")
	w := do(t, h, http.MethodGet, "/tree/roots", nil)
	var resp RootsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Roots == nil || len(resp.Roots) != 0 {
		t.Errorf("empty roots = %v", resp.Roots)
	}

	a := create(t, h, person("A", models.GenderMale))
	b := create(t, h, person("B", models.GenderFemale))
	c := person("C", models.GenderMale)
	c.Parents = []familyservice.ParentLink{{ID: a}}
	create(t, h, c)

	w = do(t, h, http.MethodGet, "/tree/roots", nil)
	resp = RootsResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if fmt.Sprint(resp.Roots) != fmt.Sprint([]int64{a, b}) {
		t.Errorf("roots = %v", resp.Roots)
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := testEnv(t, "secret")

	if w := do(t, h, http.MethodGet, "/persons", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/persons", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/persons", nil, "Authorization", "Bearer secret"); w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestEventsMounted(t *testing.T) {
	svc := familyservice.NewService(testutil.TestStore(t), nil)
	sse := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := NewRouter(svc, false, "", sse)
	if w := do(t, h, http.MethodGet, "/events", nil); w.Code != http.StatusTeapot {
		t.Errorf("events = %d, want the mounted handler", w.Code)
	}
}

func TestStoreFailureCarriesMessage(t *testing.T) {
	svc := familyservice.NewService(testutil.FailingStore{Err: errors.New("database is locked")}, nil)
	h := NewRouter(svc, false, "", nil)

	for _, tc := range []struct{ path, op string }{
		{"/persons", "list persons"},
		{"/persons/1", "get person"},
		{"/relationships", "list relationships"},
		{"/tree", "build tree"},
	} {
		w := do(t, h, http.MethodGet, tc.path, nil)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", tc.path, w.Code)
			continue
		}
		var resp errResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if resp.Error != tc.op+" failed" {
			t.Errorf("%s: error = %q, want %q", tc.path, resp.Error, tc.op+" failed")
		}
		if resp.Detail != "database is locked" {
			t.Errorf("%s: detail = %q, want the store message", tc.path, resp.Detail)
		}
	}
}
