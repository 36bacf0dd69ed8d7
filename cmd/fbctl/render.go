package main

import (
	"fmt"
	"io"

	models "filebox/internal/domain/models/filesystem"
)

// printForest draws the forest with box-drawing connectors, one node per line.
// It walks with an explicit stack so deep trees print without recursion.
func printForest(w io.Writer, roots []*models.TreeNode) {
	type frame struct {
		node   *models.TreeNode
		prefix string
		last   bool
		root   bool
	}

	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: roots[i], root: true})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		childPrefix := ""
		if f.root {
			fmt.Fprintln(w, f.node.Title)
		} else {
			connector, indent := "├── ", "│   "
			if f.last {
				connector, indent = "└── ", "    "
			}
			fmt.Fprintln(w, f.prefix+connector+f.node.Title)
			childPrefix = f.prefix + indent
		}

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:   f.node.Children[i],
				prefix: childPrefix,
				last:   i == len(f.node.Children)-1,
			})
		}
	}
}

// printUnplaced lists records that did not make it into the tree
func printUnplaced(w io.Writer, label string, records []models.DirectoryRecord) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", label, len(records))
	for _, r := range records {
		fmt.Fprintf(w, "  %s  %s (parent %q)\n", r.ID, r.Name, r.PID)
	}
}
