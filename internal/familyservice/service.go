// Package familyservice runs the family pipeline: fetch or mutate the store,
// normalize relationships, select the root, build and flatten the tree.
package familyservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/facette/natsort"

	"github.com/starford/kinfolk/internal/apperr"
	"github.com/starford/kinfolk/internal/familytree"
	"github.com/starford/kinfolk/internal/kinship"
	"github.com/starford/kinfolk/internal/metrics"
	"github.com/starford/kinfolk/internal/models"
	"github.com/starford/kinfolk/internal/store"
)

// Notifier is told about every committed mutation.
type Notifier interface {
	PublishFamilyEvent(kind models.ChangeKind, personID int64)
}

// ErrNoRoot is returned by Tree when no person qualifies as the root.
var ErrNoRoot = fmt.Errorf("no root person: %w", apperr.ErrNotFound)

// TreeView is the rendered tree plus facts about the build.
type TreeView struct {
	RootID      int64                 `json:"rootId"`
	Tree        familytree.RenderNode `json:"tree"`
	Persons     int                   `json:"persons"`
	Connectors  int                   `json:"connectors"`
	DroppedRefs int                   `json:"droppedRefs"`
	Depth       int                   `json:"depth"`
}

// Service coordinates the entity store and the tree pipeline.
type Service struct {
	store  store.Store
	notify Notifier
	logger *slog.Logger
}

// NewService creates a new family service. notify may be nil.
func NewService(st store.Store, notify Notifier) *Service {
	return &Service{store: st, notify: notify, logger: slog.Default()}
}

// Snapshot fetches persons and relationships and normalizes them. It is the
// only way derived relations are produced.
func (s *Service) Snapshot(ctx context.Context) ([]kinship.Member, error) {
	snap, err := s.store.Dump(ctx)
	if err != nil {
		return nil, err
	}
	return kinship.Normalize(snap.Persons, snap.Relationships), nil
}

// Tree runs the full pipeline and returns the flattened tree.
func (s *Service) Tree(ctx context.Context) (*TreeView, error) {
	start := time.Now()
	members, err := s.Snapshot(ctx)
	if err != nil {
		metrics.ObserveBuild(metrics.ResultFailure, time.Since(start), 0)
		return nil, err
	}
	root, ok := kinship.SelectRoot(members)
	if !ok {
		metrics.ObserveBuild(metrics.ResultNoRoot, time.Since(start), 0)
		return nil, ErrNoRoot
	}
	tree, err := familytree.Build(root.ID, members)
	if err != nil {
		result := metrics.ResultFailure
		if errors.Is(err, apperr.ErrCyclicGraph) {
			result = metrics.ResultCyclic
			s.logger.Warn("tree unavailable", slog.Int64("root", root.ID), slog.String("error", err.Error()))
		}
		metrics.ObserveBuild(result, time.Since(start), 0)
		return nil, err
	}
	out := familytree.Flatten(tree.Root)
	persons, connectors := familytree.Count(out)
	metrics.ObserveBuild(metrics.ResultOK, time.Since(start), tree.DroppedRefs)
	if tree.DroppedRefs > 0 {
		s.logger.Debug("tree built with dangling references", slog.Int("dropped", tree.DroppedRefs))
	}
	return &TreeView{
		RootID:      root.ID,
		Tree:        out,
		Persons:     persons,
		Connectors:  connectors,
		DroppedRefs: tree.DroppedRefs,
		Depth:       tree.Depth,
	}, nil
}

// Roots returns every root candidate, ascending. The first one is the root
// Tree renders.
func (s *Service) Roots(ctx context.Context) ([]int64, error) {
	members, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return kinship.Roots(members), nil
}

// Sort orders for ListPersons.
const (
	SortByID   = "id"
	SortByName = "name"
)

// ListPersons returns all persons without relations. sortBy is SortByID
// (default) or SortByName for natural ordering by short name.
func (s *Service) ListPersons(ctx context.Context, sortBy string) ([]models.Person, error) {
	persons, err := s.store.ListPersons(ctx)
	if err != nil {
		return nil, err
	}
	if sortBy == SortByName {
		sort.SliceStable(persons, func(i, j int) bool {
			return natsort.Compare(persons[i].ShortName, persons[j].ShortName)
		})
	}
	return persons, nil
}

// ListRelationships returns every stored edge.
func (s *Service) ListRelationships(ctx context.Context) ([]models.Relationship, error) {
	return s.store.ListRelationships(ctx)
}

// GetMember returns one person with its derived relations.
func (s *Service) GetMember(ctx context.Context, id int64) (*kinship.Member, error) {
	members, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := kinship.Index(members)[id]
	if !ok {
		return nil, fmt.Errorf("person %d: %w", id, apperr.ErrNotFound)
	}
	return m, nil
}

// AddPerson validates f, then inserts the person and its relationships.
func (s *Service) AddPerson(ctx context.Context, f PersonForm) (*kinship.Member, error) {
	p, err := s.addPerson(ctx, &f)
	metrics.ObserveMutation("add", err)
	if err != nil {
		return nil, err
	}
	s.publish(models.ChangeCreated, p.ID)
	return s.GetMember(ctx, p.ID)
}

func (s *Service) addPerson(ctx context.Context, f *PersonForm) (models.Person, error) {
	if err := s.check(ctx, f, 0); err != nil {
		return models.Person{}, err
	}
	return s.store.CreatePerson(ctx, f.fields(), f.edges)
}

// EditPerson validates f, then overwrites the person and replaces every
// relationship touching it with the ones in f.
func (s *Service) EditPerson(ctx context.Context, id int64, f PersonForm) (*kinship.Member, error) {
	err := s.editPerson(ctx, id, &f)
	metrics.ObserveMutation("edit", err)
	if err != nil {
		return nil, err
	}
	s.publish(models.ChangeUpdated, id)
	return s.GetMember(ctx, id)
}

func (s *Service) editPerson(ctx context.Context, id int64, f *PersonForm) error {
	if _, err := s.store.GetPerson(ctx, id); err != nil {
		return err
	}
	if err := s.check(ctx, f, id); err != nil {
		return err
	}
	return s.store.ReplacePerson(ctx, id, f.fields(), f.edges(id))
}

// DeletePerson removes a person and every relationship referencing it.
func (s *Service) DeletePerson(ctx context.Context, id int64) error {
	err := s.store.DeletePerson(ctx, id)
	metrics.ObserveMutation("delete", err)
	if err != nil {
		return err
	}
	s.publish(models.ChangeDeleted, id)
	return nil
}

// Import replaces the store content with snap.
func (s *Service) Import(ctx context.Context, snap store.Snapshot) error {
	err := s.store.Restore(ctx, snap)
	metrics.ObserveMutation("import", err)
	if err != nil {
		return err
	}
	s.publish(models.ChangeImported, 0)
	return nil
}

// Empty reports whether the store holds no persons.
func (s *Service) Empty(ctx context.Context) (bool, error) {
	persons, err := s.store.ListPersons(ctx)
	if err != nil {
		return false, err
	}
	return len(persons) == 0, nil
}

// Export returns the store content.
func (s *Service) Export(ctx context.Context) (store.Snapshot, error) {
	return s.store.Dump(ctx)
}

func (s *Service) publish(kind models.ChangeKind, id int64) {
	if s.notify != nil {
		s.notify.PublishFamilyEvent(kind, id)
	}
}
