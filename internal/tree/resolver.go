// Package tree resolves folder hierarchies in memory. The store only keeps
// parent pointers, so the transitive closure is walked here instead of in a
// database-side recursive query.
package tree

import (
	"context"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
)

// FolderLister is the slice of the folder repository the resolver needs.
type FolderLister interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Folder, error)
}

type Resolver struct {
	folders FolderLister
}

func NewResolver(folders FolderLister) *Resolver {
	return &Resolver{folders: folders}
}

// Descendants returns the ids of every folder transitively contained in
// rootId for the given owner, excluding rootId itself. A missing or
// foreign-owned root yields an empty result, not an error.
//
// All of the owner's folders (tombstoned ones included) are loaded once and
// walked breadth-first. Every expansion stays inside the owner's rows, so a
// folder whose parent pointer crosses into another account can never pull
// that account's subtree in. A revisited id terminates that branch: cycles
// are forbidden upstream, but a corrupt parent chain must not hang the
// server.
func (r *Resolver) Descendants(ctx context.Context, userId, rootId uuid.UUID) ([]uuid.UUID, error) {
	folders, err := r.folders.FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.WithDeleted{},
	)
	if err != nil {
		return nil, err
	}

	children := make(map[uuid.UUID][]uuid.UUID, len(folders))
	known := make(map[uuid.UUID]bool, len(folders))
	for _, f := range folders {
		known[f.Id] = true
		if f.ParentId != nil {
			children[*f.ParentId] = append(children[*f.ParentId], f.Id)
		}
	}

	if !known[rootId] {
		return []uuid.UUID{}, nil
	}

	result := make([]uuid.UUID, 0)
	visited := map[uuid.UUID]bool{rootId: true}
	queue := []uuid.UUID{rootId}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}

	return result, nil
}
