package docsystem

import (
	"sort"

	models "storm/internal/domain/models/docsystem"
)

// Tree returns the nested folder/file projection used by the explorer
func (s *Store) Tree() *models.TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.treeLocked()
}

// treeLocked builds the tree in three passes: nodes, folder nesting, files.
// Siblings are ordered by name.
func (s *Store) treeLocked() *models.TreeNode {
	folders := make([]*models.Folder, 0, len(s.folders))
	for _, folder := range s.folders {
		folders = append(folders, folder)
	}
	sort.Slice(folders, func(i, j int) bool {
		return nameLess(folders[i].Name, folders[i].ID, folders[j].Name, folders[j].ID)
	})

	files := make([]*models.File, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return nameLess(files[i].Name, files[i].ID, files[j].Name, files[j].ID)
	})

	// First pass: create all folder nodes
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, folder := range folders {
		nodes[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	tree := &models.TreeNode{
		Folders: []*models.FolderTreeNode{},
		Files:   []models.FileTreeNode{},
	}
	for _, folder := range folders {
		node := nodes[folder.ID]
		if folder.ParentID == nil {
			tree.Folders = append(tree.Folders, node)
		} else if parent, exists := nodes[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: add files to their folders
	for _, f := range files {
		fileNode := models.FileTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			Language:  f.Language,
			FolderID:  f.FolderID,
			UpdatedAt: f.UpdatedAt,
		}
		if f.FolderID == nil {
			tree.Files = append(tree.Files, fileNode)
		} else if parent, exists := nodes[*f.FolderID]; exists {
			parent.Files = append(parent.Files, fileNode)
		}
	}

	return tree
}
