package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatc17/india-ecom/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleCategories() []models.Category {
	return []models.Category{
		{ID: "handloom", Level: 0},
		{ID: "sarees", ParentID: strPtr("handloom"), Level: 1},
		{ID: "banarasi", ParentID: strPtr("sarees"), Level: 2},
		{ID: "kanjivaram", ParentID: strPtr("sarees"), Level: 2},
		{ID: "stoles", ParentID: strPtr("handloom"), Level: 1},
		{ID: "pottery", Level: 0},
	}
}

func TestBuildAdjacency(t *testing.T) {
	adj := buildAdjacency(sampleCategories())

	assert.ElementsMatch(t, []string{"sarees", "stoles"}, adj["handloom"])
	assert.ElementsMatch(t, []string{"banarasi", "kanjivaram"}, adj["sarees"])
	assert.Empty(t, adj["pottery"])
	assert.Empty(t, adj["banarasi"])
}

func TestExpandDescendantsSubtree(t *testing.T) {
	adj := buildAdjacency(sampleCategories())

	ids, err := expandDescendants(adj, "handloom")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"handloom", "sarees", "banarasi", "kanjivaram", "stoles"}, ids)

	ids, err = expandDescendants(adj, "sarees")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sarees", "banarasi", "kanjivaram"}, ids)
}

func TestExpandDescendantsLeaf(t *testing.T) {
	adj := buildAdjacency(sampleCategories())

	ids, err := expandDescendants(adj, "banarasi")
	require.NoError(t, err)
	assert.Equal(t, []string{"banarasi"}, ids)
}

func TestExpandDescendantsSelfInclusive(t *testing.T) {
	adj := buildAdjacency(sampleCategories())

	ids, err := expandDescendants(adj, "pottery")
	require.NoError(t, err)
	assert.Equal(t, []string{"pottery"}, ids)
}

func TestExpandDescendantsCycle(t *testing.T) {
	cats := []models.Category{
		{ID: "a", ParentID: strPtr("b")},
		{ID: "b", ParentID: strPtr("a")},
	}
	adj := buildAdjacency(cats)

	_, err := expandDescendants(adj, "a")
	assert.ErrorIs(t, err, ErrCycle)
}

func TestBuildTree(t *testing.T) {
	tree := buildTree(sampleCategories())

	require.Len(t, tree, 2)

	byID := map[string]*models.CategoryNode{}
	for _, root := range tree {
		byID[root.ID] = root
	}
	handloom := byID["handloom"]
	require.NotNil(t, handloom)
	require.Len(t, handloom.Children, 2)

	var sarees *models.CategoryNode
	for _, child := range handloom.Children {
		if child.ID == "sarees" {
			sarees = child
		}
	}
	require.NotNil(t, sarees)
	assert.Len(t, sarees.Children, 2)

	pottery := byID["pottery"]
	require.NotNil(t, pottery)
	assert.Empty(t, pottery.Children)
}

func TestBuildTreeOrphanedChildDropped(t *testing.T) {
	// A child whose parent was deactivated does not surface as a root.
	cats := []models.Category{
		{ID: "visible", Level: 0},
		{ID: "orphan", ParentID: strPtr("gone"), Level: 1},
	}
	tree := buildTree(cats)

	require.Len(t, tree, 1)
	assert.Equal(t, "visible", tree[0].ID)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "banarasi-silk-sarees", slugify("Banarasi Silk Sarees"))
	assert.Equal(t, "home-decor", slugify("  Home & Decor!  "))
	assert.Equal(t, "madhubani-art", slugify("Madhubani__Art"))
	assert.Equal(t, "", slugify("!!!"))
}

func TestSameParent(t *testing.T) {
	root := "root"
	other := "other"
	rootAgain := "root"

	assert.True(t, sameParent(nil, nil))
	assert.True(t, sameParent(&root, &rootAgain))
	assert.False(t, sameParent(nil, &root))
	assert.False(t, sameParent(&root, nil))
	assert.False(t, sameParent(&root, &other))
}
