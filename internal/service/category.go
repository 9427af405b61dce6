package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emreakay/inventory-api/internal/cache"
	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
	"github.com/emreakay/inventory-api/pkg/slug"
)

// MaxTreeDepth caps how deep the category tree may grow.
const MaxTreeDepth = 10

// CreateCategoryInput carries the fields accepted when creating a category.
type CreateCategoryInput struct {
	Name        string
	Slug        string // generated from Name when empty
	Description string
	ParentID    *string
	SortOrder   int
}

// UpdateCategoryInput carries the mutable fields of a category. Nil pointers
// leave the current value unchanged.
type UpdateCategoryInput struct {
	Name        *string
	Slug        *string
	Description *string
	SortOrder   *int
	IsActive    *bool
}

// ReorderItem pairs a category with its new display position.
type ReorderItem struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}

// BatchFailure records one failed entry of a batch operation.
type BatchFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchResult reports a partially successful batch operation.
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// CategoryStats summarizes one category's place in the tree.
type CategoryStats struct {
	CategoryID      string `json:"category_id"`
	DirectProducts  int    `json:"direct_products"`
	DescendantCount int    `json:"descendant_count"`
	Level           int    `json:"level"`
}

// CategoryService owns the category tree: placement, traversal, moves, and
// deletion. Paths are materialized, so every structural change rewrites the
// affected subtree rows.
type CategoryService struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
	cache       *cache.Cache
	logger      *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	repo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	c *cache.Cache,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		repo:        repo,
		productRepo: productRepo,
		cache:       c,
		logger:      logger,
	}
}

// Create places a new category under the given parent, or at the root when
// ParentID is nil.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, apperrors.Validation("name is required")
	}

	var parent *domain.Category
	if input.ParentID != nil {
		var err error
		parent, err = s.repo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent category: %w", err)
		}
	}

	path := domain.ChildPath(parent)
	level := domain.PathLevel(path)
	if level >= MaxTreeDepth {
		return nil, apperrors.InvalidOperation(fmt.Sprintf("category tree depth limit of %d exceeded", MaxTreeDepth))
	}

	categorySlug := input.Slug
	if categorySlug == "" {
		categorySlug = slug.Generate(input.Name)
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        categorySlug,
		Description: input.Description,
		Path:        path,
		Level:       level,
		SortOrder:   input.SortOrder,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.invalidateTree(ctx)

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
		slog.Int("level", category.Level),
	)

	return category, nil
}

// Get retrieves one category by ID.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// GetBySlug retrieves one category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	category, err := s.repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// Update changes non-structural fields. Moving a category is a separate
// operation because it cascades to the subtree.
func (s *CategoryService) Update(ctx context.Context, id string, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		category.Name = *input.Name
	}
	if input.Slug != nil {
		category.Slug = *input.Slug
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	category.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.invalidateTree(ctx)
	return category, nil
}

// Roots returns all top-level categories.
func (s *CategoryService) Roots(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListRoots(ctx)
}

// Children returns the direct children of a category.
func (s *CategoryService) Children(ctx context.Context, id string) ([]*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return s.repo.ListChildren(ctx, category)
}

// Descendants returns every category below the given one, shallowest first.
func (s *CategoryService) Descendants(ctx context.Context, id string) ([]*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return s.repo.ListByPathPrefix(ctx, category.SubtreePrefix())
}

// Ancestors returns the chain from the root down to the direct parent.
func (s *CategoryService) Ancestors(ctx context.Context, id string) ([]*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	segments := category.PathSegments()
	if len(segments) == 0 {
		return []*domain.Category{}, nil
	}

	ancestors, err := s.repo.ListByIDs(ctx, segments)
	if err != nil {
		return nil, fmt.Errorf("list ancestors: %w", err)
	}
	return ancestors, nil
}

// Tree assembles the nested category tree. With an empty rootID the whole
// forest is returned; maxDepth <= 0 means unlimited. The full forest is
// served from cache when available.
func (s *CategoryService) Tree(ctx context.Context, rootID string, maxDepth int) ([]*domain.Category, error) {
	fullTree := rootID == "" && maxDepth <= 0
	if fullTree {
		if tree, err := s.cache.GetTree(ctx); err == nil {
			return tree, nil
		}
	}

	var (
		flat []*domain.Category
		err  error
		base int
	)

	if rootID == "" {
		flat, err = s.repo.ListAll(ctx)
	} else {
		var root *domain.Category
		root, err = s.repo.GetByID(ctx, rootID)
		if err != nil {
			return nil, fmt.Errorf("get tree root: %w", err)
		}
		base = root.Level
		var descendants []*domain.Category
		descendants, err = s.repo.ListByPathPrefix(ctx, root.SubtreePrefix())
		flat = append([]*domain.Category{root}, descendants...)
	}
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	tree := assembleTree(flat, base, maxDepth)

	if fullTree {
		if err := s.cache.SetTree(ctx, tree); err != nil {
			s.logger.WarnContext(ctx, "failed to cache category tree", slog.String("error", err.Error()))
		}
	}

	return tree, nil
}

// assembleTree nests a level-ordered flat list. base is the level of the
// list's shallowest nodes; nodes deeper than base+maxDepth are dropped when
// maxDepth > 0.
func assembleTree(flat []*domain.Category, base, maxDepth int) []*domain.Category {
	byID := make(map[string]*domain.Category, len(flat))
	var roots []*domain.Category

	for _, c := range flat {
		if maxDepth > 0 && c.Level-base > maxDepth {
			continue
		}
		c.Children = nil
		byID[c.ID] = c

		if c.Level == base {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[c.ParentID()]; ok {
			parent.Children = append(parent.Children, c)
		}
	}

	if roots == nil {
		roots = []*domain.Category{}
	}
	return roots
}

// Move reparents a category and rewrites the paths of its whole subtree. A
// nil newParentID moves the category to the root; a non-nil sortOrder also
// repositions the category among its new siblings. Moving a node under
// itself or one of its descendants is rejected.
func (s *CategoryService) Move(ctx context.Context, id string, newParentID *string, sortOrder *int) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	var newParent *domain.Category
	if newParentID != nil {
		if *newParentID == id {
			return nil, apperrors.InvalidOperation("cannot move a category under itself")
		}
		newParent, err = s.repo.GetByID(ctx, *newParentID)
		if err != nil {
			return nil, fmt.Errorf("resolve new parent: %w", err)
		}
		if newParent.IsDescendantOf(category) {
			return nil, apperrors.InvalidOperation("cannot move a category under one of its descendants")
		}
	}

	oldPrefix := category.SubtreePrefix()
	newPath := domain.ChildPath(newParent)
	newLevel := domain.PathLevel(newPath)

	if newPath != category.Path {
		descendants, err := s.repo.ListByPathPrefix(ctx, oldPrefix)
		if err != nil {
			return nil, fmt.Errorf("list subtree: %w", err)
		}

		deepest := category.Level
		for _, d := range descendants {
			if d.Level > deepest {
				deepest = d.Level
			}
		}
		if newLevel+(deepest-category.Level) >= MaxTreeDepth {
			return nil, apperrors.InvalidOperation(fmt.Sprintf("move would exceed the tree depth limit of %d", MaxTreeDepth))
		}

		if err := s.repo.UpdatePathLevel(ctx, category.ID, newPath, newLevel); err != nil {
			return nil, fmt.Errorf("move category: %w", err)
		}
		category.Path = newPath
		category.Level = newLevel

		// Descendants are rewritten shallowest first so a crash mid-cascade
		// leaves only deeper rows stale, never an orphaned prefix.
		newPrefix := category.SubtreePrefix()
		delta := newLevel - domain.PathLevel(oldPrefix) + 1
		for _, d := range descendants {
			rewritten := domain.RewritePath(d.Path, oldPrefix, newPrefix)
			if err := s.repo.UpdatePathLevel(ctx, d.ID, rewritten, d.Level+delta); err != nil {
				return nil, fmt.Errorf("rewrite descendant %s: %w", d.ID, err)
			}
		}

		s.logger.InfoContext(ctx, "category moved",
			slog.String("category_id", category.ID),
			slog.String("new_path", newPath),
			slog.Int("descendants", len(descendants)),
		)
	}

	if sortOrder != nil && *sortOrder != category.SortOrder {
		if err := s.repo.UpdateSortOrder(ctx, category.ID, *sortOrder); err != nil {
			return nil, fmt.Errorf("update sort order: %w", err)
		}
		category.SortOrder = *sortOrder
	}

	s.invalidateTree(ctx)

	return category, nil
}

// Reorder applies new sort positions in bulk. Each entry succeeds or fails
// on its own; the result reports both sides.
func (s *CategoryService) Reorder(ctx context.Context, items []ReorderItem) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, apperrors.Validation("at least one item is required")
	}

	result := &BatchResult{Succeeded: []string{}, Failed: []BatchFailure{}}
	for _, item := range items {
		if err := s.repo.UpdateSortOrder(ctx, item.ID, item.SortOrder); err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: item.ID, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, item.ID)
	}

	s.invalidateTree(ctx)
	return result, nil
}

// Delete removes a category. The disposition decides the fate of its
// subtree: reattach children to the deleted node's parent, promote them to
// the root, or delete everything. Products in deleted categories become
// uncategorized; products in surviving descendants keep their assignment.
func (s *CategoryService) Delete(ctx context.Context, id string, disposition domain.DeleteDisposition) error {
	if !domain.ValidDeleteDisposition(string(disposition)) {
		return apperrors.InvalidOperation(fmt.Sprintf("unknown disposition %q", disposition))
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}

	descendants, err := s.repo.ListByPathPrefix(ctx, category.SubtreePrefix())
	if err != nil {
		return fmt.Errorf("list subtree: %w", err)
	}

	switch disposition {
	case domain.DispositionDeleteAll:
		// Deepest first so no row ever points at a deleted ancestor.
		for i := len(descendants) - 1; i >= 0; i-- {
			d := descendants[i]
			if err := s.productRepo.ReassignCategory(ctx, d.ID, nil); err != nil {
				return fmt.Errorf("detach products of %s: %w", d.ID, err)
			}
			if err := s.repo.Delete(ctx, d.ID); err != nil {
				return fmt.Errorf("delete descendant %s: %w", d.ID, err)
			}
		}

	case domain.DispositionMoveToParent, domain.DispositionMoveToRoot:
		newPrefix := ""
		if disposition == domain.DispositionMoveToParent {
			newPrefix = category.Path
		}

		oldPrefix := category.SubtreePrefix()
		for _, d := range descendants {
			rewritten := domain.RewritePath(d.Path, oldPrefix, newPrefix)
			if err := s.repo.UpdatePathLevel(ctx, d.ID, rewritten, domain.PathLevel(rewritten)); err != nil {
				return fmt.Errorf("reattach descendant %s: %w", d.ID, err)
			}
		}
	}

	// The deleted node's own products move to its parent, or become
	// uncategorized at the root.
	var target *string
	if parentID := category.ParentID(); parentID != "" && disposition == domain.DispositionMoveToParent {
		target = &parentID
	}
	if err := s.productRepo.ReassignCategory(ctx, category.ID, target); err != nil {
		return fmt.Errorf("reassign products: %w", err)
	}

	if err := s.repo.Delete(ctx, category.ID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.invalidateTree(ctx)

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
		slog.String("disposition", string(disposition)),
		slog.Int("descendants", len(descendants)),
	)

	return nil
}

// Stats reports product and subtree counts for one category.
func (s *CategoryService) Stats(ctx context.Context, id string) (*CategoryStats, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	products, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	descendants, err := s.repo.ListByPathPrefix(ctx, category.SubtreePrefix())
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}

	return &CategoryStats{
		CategoryID:      id,
		DirectProducts:  products,
		DescendantCount: len(descendants),
		Level:           category.Level,
	}, nil
}

// TreeStats reports whole-forest aggregates: totals by status and level,
// root count, and the deepest level in use.
func (s *CategoryService) TreeStats(ctx context.Context) (*repository.CategoryTreeStats, error) {
	stats, err := s.repo.TreeStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("category tree stats: %w", err)
	}
	return stats, nil
}

func (s *CategoryService) invalidateTree(ctx context.Context) {
	if err := s.cache.InvalidateTree(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate category tree cache", slog.String("error", err.Error()))
	}
}
