package tree

import (
	"context"
	"testing"
	"time"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	folders []*entity.Folder
}

func (s *stubLister) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Folder, error) {
	return s.folders, nil
}

func folder(id uuid.UUID, parent *uuid.UUID, owner uuid.UUID) *entity.Folder {
	return &entity.Folder{
		Id:        id,
		Name:      "f-" + id.String()[:8],
		ParentId:  parent,
		UserId:    owner,
		CreatedAt: time.Now(),
	}
}

func TestDescendants(t *testing.T) {
	owner := uuid.New()
	root := uuid.New()
	childA := uuid.New()
	childB := uuid.New()
	grandchild := uuid.New()
	unrelated := uuid.New()

	lister := &stubLister{folders: []*entity.Folder{
		folder(root, nil, owner),
		folder(childA, &root, owner),
		folder(childB, &root, owner),
		folder(grandchild, &childA, owner),
		folder(unrelated, nil, owner),
	}}

	got, err := NewResolver(lister).Descendants(context.Background(), owner, root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{childA, childB, grandchild}, got)
	assert.NotContains(t, got, root, "root itself is excluded")
	assert.NotContains(t, got, unrelated)
}

func TestDescendantsMissingRoot(t *testing.T) {
	owner := uuid.New()
	lister := &stubLister{folders: []*entity.Folder{
		folder(uuid.New(), nil, owner),
	}}

	got, err := NewResolver(lister).Descendants(context.Background(), owner, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDescendantsForeignRoot(t *testing.T) {
	// The repository is owner-scoped, so a foreign root simply never shows
	// up in the owner's folder set.
	owner := uuid.New()
	lister := &stubLister{folders: []*entity.Folder{}}

	got, err := NewResolver(lister).Descendants(context.Background(), owner, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDescendantsCycleTerminates(t *testing.T) {
	owner := uuid.New()
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	// a -> b -> c -> a: invalid data, traversal must still terminate.
	lister := &stubLister{folders: []*entity.Folder{
		folder(a, &c, owner),
		folder(b, &a, owner),
		folder(c, &b, owner),
	}}

	done := make(chan struct{})
	var got []uuid.UUID
	var err error
	go func() {
		got, err = NewResolver(lister).Descendants(context.Background(), owner, a)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle traversal did not terminate")
	}

	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b, c}, got)
}

func TestDescendantsDeepChain(t *testing.T) {
	owner := uuid.New()
	ids := make([]uuid.UUID, 50)
	folders := make([]*entity.Folder, 0, len(ids))
	for i := range ids {
		ids[i] = uuid.New()
		var parent *uuid.UUID
		if i > 0 {
			parent = &ids[i-1]
		}
		folders = append(folders, folder(ids[i], parent, owner))
	}

	got, err := NewResolver(&stubLister{folders: folders}).Descendants(context.Background(), owner, ids[0])
	require.NoError(t, err)
	assert.Len(t, got, len(ids)-1)
}
