package filesystem

import (
	"filebox/internal/domain"
	models "filebox/internal/domain/models/filesystem"
)

// BuildOptions controls how unplaceable records are treated.
type BuildOptions struct {
	// Strict fails the build instead of reporting unplaceable records.
	Strict bool
}

// Forest is the result of nesting a flat record list.
// Every input record ends up in exactly one of Roots (at any depth), Orphans, Cycles or Duplicates.
type Forest struct {
	Roots      []*models.TreeNode
	Orphans    []models.DirectoryRecord
	Cycles     []models.DirectoryRecord
	Duplicates []models.DirectoryRecord
}

// Placed returns the number of records that made it into the tree.
func (f *Forest) Placed() int {
	n := 0
	stack := append([]*models.TreeNode(nil), f.Roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, node.Children...)
	}
	return n
}

// BuildForest nests records into one tree per root (PID == RootParentID).
// Siblings keep their input order. Records that cannot be reached from a root are dropped;
// use Build to get them reported.
func BuildForest(records []models.DirectoryRecord) []*models.TreeNode {
	forest, _ := Build(records, BuildOptions{})
	return forest.Roots
}

// Build nests records and classifies the ones that cannot be placed.
// The first record with a given ID wins; later ones are reported as duplicates.
// In strict mode any unplaceable record fails the build with a *domain.HierarchyError.
func Build(records []models.DirectoryRecord, opts BuildOptions) (*Forest, error) {
	forest := &Forest{
		Roots:      make([]*models.TreeNode, 0),
		Orphans:    make([]models.DirectoryRecord, 0),
		Cycles:     make([]models.DirectoryRecord, 0),
		Duplicates: make([]models.DirectoryRecord, 0),
	}

	// Index by parent in one pass, keeping input order per parent
	parentOf := make(map[string]string, len(records))
	byParent := make(map[string][]int, len(records))
	unique := make([]int, 0, len(records))
	for i, rec := range records {
		if _, dup := parentOf[rec.ID]; dup {
			forest.Duplicates = append(forest.Duplicates, rec)
			continue
		}
		parentOf[rec.ID] = rec.PID
		byParent[rec.PID] = append(byParent[rec.PID], i)
		unique = append(unique, i)
	}

	// Expand from the roots with an explicit stack
	placed := make(map[string]struct{}, len(unique))
	var stack []*models.TreeNode
	for _, i := range byParent[models.RootParentID] {
		node := newTreeNode(records[i], false)
		placed[node.Key] = struct{}{}
		forest.Roots = append(forest.Roots, node)
		stack = append(stack, node)
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := byParent[node.Key]
		if len(children) == 0 {
			continue
		}
		node.Children = make([]*models.TreeNode, 0, len(children))
		for _, i := range children {
			if _, seen := placed[records[i].ID]; seen {
				continue
			}
			child := newTreeNode(records[i], true)
			placed[child.Key] = struct{}{}
			node.Children = append(node.Children, child)
			stack = append(stack, child)
		}
	}

	if len(placed) < len(unique) {
		classifyUnplaced(records, unique, parentOf, placed, forest)
	}

	if opts.Strict {
		if err := strictError(forest); err != nil {
			return nil, err
		}
	}

	return forest, nil
}

func newTreeNode(rec models.DirectoryRecord, withParent bool) *models.TreeNode {
	node := &models.TreeNode{
		Key:      rec.ID,
		Title:    rec.Name,
		Children: []*models.TreeNode{},
	}
	if withParent {
		node.PKey = rec.PID
	}
	return node
}

type placement int

const (
	placementOrphan placement = iota + 1
	placementCycle
)

// classifyUnplaced walks the ancestor chain of every unplaced record. A chain that ends at
// an unknown parent is an orphan; a chain that revisits an id is a cycle.
func classifyUnplaced(
	records []models.DirectoryRecord,
	unique []int,
	parentOf map[string]string,
	placed map[string]struct{},
	forest *Forest,
) {
	status := make(map[string]placement)
	for _, i := range unique {
		id := records[i].ID
		if _, ok := placed[id]; ok {
			continue
		}

		var result placement
		var path []string
		onPath := make(map[string]struct{})
		cur := id
		for {
			if st, ok := status[cur]; ok {
				result = st
				break
			}
			if _, ok := onPath[cur]; ok {
				result = placementCycle
				break
			}
			onPath[cur] = struct{}{}
			path = append(path, cur)

			pid := parentOf[cur]
			if _, known := parentOf[pid]; !known {
				result = placementOrphan
				break
			}
			cur = pid
		}
		for _, p := range path {
			status[p] = result
		}

		if result == placementCycle {
			forest.Cycles = append(forest.Cycles, records[i])
		} else {
			forest.Orphans = append(forest.Orphans, records[i])
		}
	}
}

func strictError(forest *Forest) error {
	if len(forest.Cycles) == 0 && len(forest.Orphans) == 0 && len(forest.Duplicates) == 0 {
		return nil
	}
	kind := domain.ErrMalformedHierarchy
	if len(forest.Cycles) > 0 {
		kind = domain.ErrCyclicHierarchy
	}
	return &domain.HierarchyError{
		Kind:       kind,
		Orphans:    recordIDs(forest.Orphans),
		Cycles:     recordIDs(forest.Cycles),
		Duplicates: recordIDs(forest.Duplicates),
	}
}

func recordIDs(records []models.DirectoryRecord) []string {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}
