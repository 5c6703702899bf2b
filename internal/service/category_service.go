package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajatc17/india-ecom/internal/models"
	"github.com/rajatc17/india-ecom/internal/redisclient"
	"github.com/rajatc17/india-ecom/internal/store"
	"github.com/rajatc17/india-ecom/internal/util"
)

// CategoryService maintains the category tree and resolves descendant sets
// for hierarchy-aware catalog filtering.
type CategoryService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(store *store.Store, redis *redisclient.Client) *CategoryService {
	return &CategoryService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// buildAdjacency scans the active categories into a parent -> children map.
func buildAdjacency(cats []models.Category) map[string][]string {
	adj := make(map[string][]string, len(cats))
	for _, cat := range cats {
		if cat.ParentID != nil {
			adj[*cat.ParentID] = append(adj[*cat.ParentID], cat.ID)
		}
	}
	return adj
}

// expandDescendants walks the adjacency depth-first from root, returning the
// root plus every category below it. Revisiting a node means the stored
// parent references form a cycle; that is corrupt data, not a traversal to
// follow, so the walk stops with ErrCycle.
func expandDescendants(adj map[string][]string, root string) ([]string, error) {
	visited := map[string]bool{}
	var result []string

	var walk func(id string) error
	walk = func(id string) error {
		if visited[id] {
			return ErrCycle
		}
		visited[id] = true
		result = append(result, id)
		for _, child := range adj[id] {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveDescendants returns the self-inclusive descendant set for a
// category given by ID or slug. Unknown categories yield ErrNotFound;
// catalog callers turn that into an empty product page.
func (cs *CategoryService) ResolveDescendants(ctx context.Context, idOrSlug string) ([]string, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.ResolveDescendants")
	defer span.End()

	cat, err := cs.lookup(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	if ids, err := cs.redis.GetDescendants(ctx, cat.ID); err == nil && ids != nil {
		util.CategoryCacheHits.WithLabelValues("hit").Inc()
		return ids, nil
	}
	util.CategoryCacheHits.WithLabelValues("miss").Inc()

	cats, err := cs.store.GetActiveCategories(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := expandDescendants(buildAdjacency(cats), cat.ID)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.CacheDescendants(ctx, cat.ID, ids); err != nil {
		cs.logger.Warn("Failed to cache descendant set",
			zap.String("category_id", cat.ID), zap.Error(err))
	}
	return ids, nil
}

// lookup finds a category by ID first, then by slug.
func (cs *CategoryService) lookup(ctx context.Context, idOrSlug string) (*models.Category, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		if cat, err := cs.store.GetCategoryByID(ctx, idOrSlug); err == nil {
			return cat, nil
		}
	}
	return cs.store.GetCategoryBySlug(ctx, idOrSlug)
}

// List returns categories as a flat list with optional filters.
func (cs *CategoryService) List(ctx context.Context, activeOnly bool, level *int) ([]models.Category, error) {
	return cs.store.GetCategories(ctx, activeOnly, level)
}

// Roots returns the active root categories.
func (cs *CategoryService) Roots(ctx context.Context) ([]models.Category, error) {
	return cs.store.GetRootCategories(ctx)
}

// ByID returns a category by ID.
func (cs *CategoryService) ByID(ctx context.Context, id string) (*models.Category, error) {
	return cs.store.GetCategoryByID(ctx, id)
}

// BySlug returns an active category by slug.
func (cs *CategoryService) BySlug(ctx context.Context, slug string) (*models.Category, error) {
	return cs.store.GetCategoryBySlug(ctx, slug)
}

// Children returns the direct children of a category.
func (cs *CategoryService) Children(ctx context.Context, id string) ([]models.Category, error) {
	if _, err := cs.store.GetCategoryByID(ctx, id); err != nil {
		return nil, err
	}
	return cs.store.GetCategoryChildren(ctx, id)
}

// buildTree nests the flat category list under each root.
func buildTree(cats []models.Category) []*models.CategoryNode {
	children := map[string][]*models.CategoryNode{}
	var roots []*models.CategoryNode

	nodes := make([]*models.CategoryNode, len(cats))
	for i := range cats {
		nodes[i] = &models.CategoryNode{Category: cats[i]}
	}
	for _, node := range nodes {
		if node.ParentID == nil {
			roots = append(roots, node)
		} else {
			children[*node.ParentID] = append(children[*node.ParentID], node)
		}
	}
	var attach func(node *models.CategoryNode)
	attach = func(node *models.CategoryNode) {
		node.Children = children[node.ID]
		for _, child := range node.Children {
			attach(child)
		}
	}
	for _, root := range roots {
		attach(root)
	}
	return roots
}

// Tree returns the hierarchical category structure, cached in Redis.
func (cs *CategoryService) Tree(ctx context.Context) ([]*models.CategoryNode, error) {
	if data, err := cs.redis.GetTree(ctx); err == nil && data != nil {
		var tree []*models.CategoryNode
		if err := json.Unmarshal(data, &tree); err == nil {
			util.CategoryCacheHits.WithLabelValues("hit").Inc()
			return tree, nil
		}
	}
	util.CategoryCacheHits.WithLabelValues("miss").Inc()

	cats, err := cs.store.GetActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	tree := buildTree(cats)

	if data, err := json.Marshal(tree); err == nil {
		if err := cs.redis.CacheTree(ctx, data); err != nil {
			cs.logger.Warn("Failed to cache category tree", zap.Error(err))
		}
	}
	return tree, nil
}

// CreateCategoryRequest carries admin category creation input.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug"`
	ParentID    *string `json:"parentId"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Icon        string  `json:"icon"`
	SortOrder   int     `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}

// Create inserts a category, deriving level from the parent chain and
// enforcing the three-tier depth cap.
func (cs *CategoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	level := 0
	if req.ParentID != nil {
		parent, err := cs.store.GetCategoryByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		level = parent.Level + 1
		if level > models.MaxCategoryLevel {
			return nil, Validationf("category depth exceeds %d levels", models.MaxCategoryLevel+1)
		}
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cat := &models.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slug,
		ParentID:    req.ParentID,
		Level:       level,
		Description: req.Description,
		Image:       req.Image,
		Icon:        req.Icon,
		IsActive:    active,
		SortOrder:   req.SortOrder,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := cs.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	cs.invalidate(ctx)
	cs.logger.Info("Category created",
		zap.String("category_id", cat.ID), zap.String("slug", cat.Slug), zap.Int("level", cat.Level))
	return cat, nil
}

// Update applies admin edits to a category; re-parenting re-derives the
// level and re-checks the depth cap. Re-parenting is refused while the
// category has children, since their stored levels would go stale.
func (cs *CategoryService) Update(ctx context.Context, id string, req *CreateCategoryRequest) (*models.Category, error) {
	cat, err := cs.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil && *req.ParentID == id {
		return nil, Validationf("category cannot be its own parent")
	}
	if !sameParent(cat.ParentID, req.ParentID) {
		hasChildren, err := cs.store.CategoryHasChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		if hasChildren {
			return nil, Validationf("category has child categories; move them before changing its parent")
		}
	}

	level := 0
	if req.ParentID != nil {
		parent, err := cs.store.GetCategoryByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		level = parent.Level + 1
		if level > models.MaxCategoryLevel {
			return nil, Validationf("category depth exceeds %d levels", models.MaxCategoryLevel+1)
		}
	}

	cat.Name = req.Name
	if req.Slug != "" {
		cat.Slug = req.Slug
	}
	cat.ParentID = req.ParentID
	cat.Level = level
	cat.Description = req.Description
	cat.Image = req.Image
	cat.Icon = req.Icon
	cat.SortOrder = req.SortOrder
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	if err := cs.store.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	cs.invalidate(ctx)
	return cat, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Delete removes a leaf category. Categories with children must be emptied
// first so no subtree is orphaned.
func (cs *CategoryService) Delete(ctx context.Context, id string) error {
	hasChildren, err := cs.store.CategoryHasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return Validationf("category has child categories; delete or move them first")
	}
	if err := cs.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	cs.invalidate(ctx)
	return nil
}

func (cs *CategoryService) invalidate(ctx context.Context) {
	if err := cs.redis.InvalidateCategories(ctx); err != nil {
		cs.logger.Warn("Failed to invalidate category cache", zap.Error(err))
	}
}
