package doclai

// DiffResult represents the difference between the units of two document versions.
type DiffResult struct {
	// Added contains units that are new (not in the previous version).
	Added []TextNode

	// Removed contains units that are gone from the new version.
	Removed []TextNode

	// Unchanged contains units present in both versions.
	Unchanged []TextNode

	// Modified pairs a removed and an added unit at the same position or context.
	Modified []ModifiedNode
}

// ModifiedNode represents a unit whose text changed in place.
type ModifiedNode struct {
	Old TextNode
	New TextNode
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns new and modified units.
func (d *DiffResult) NeedsTranslation() []TextNode {
	result := make([]TextNode, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// DiffContent compares two sets of units by text hash. Results keep document order.
func DiffContent(oldNodes, newNodes []TextNode) *DiffResult {
	result := &DiffResult{}

	oldHashes := hashSet(oldNodes)
	newHashes := hashSet(newNodes)

	seen := make(map[string]bool)
	for _, node := range oldNodes {
		if seen[node.Hash] {
			continue
		}
		seen[node.Hash] = true
		if newHashes[node.Hash] {
			result.Unchanged = append(result.Unchanged, node)
		} else {
			result.Removed = append(result.Removed, node)
		}
	}

	seen = make(map[string]bool)
	for _, node := range newNodes {
		if seen[node.Hash] {
			continue
		}
		seen[node.Hash] = true
		if !oldHashes[node.Hash] {
			result.Added = append(result.Added, node)
		}
	}

	return result
}

// DiffContentWithContext also pairs removed and added units that share an ID
// (same position) or a context into Modified.
func DiffContentWithContext(oldNodes, newNodes []TextNode) *DiffResult {
	result := DiffContent(oldNodes, newNodes)

	if len(result.Added) == 0 || len(result.Removed) == 0 {
		return result
	}

	matched := make(map[int]bool) // indices of matched added units
	removedMatched := make(map[int]bool)

	for ri, removed := range result.Removed {
		for ai, added := range result.Added {
			if matched[ai] {
				continue
			}

			samePosition := removed.ID != "" && removed.ID == added.ID
			sameContext := removed.Context != "" && removed.Context == added.Context
			if samePosition || sameContext {
				result.Modified = append(result.Modified, ModifiedNode{Old: removed, New: added})
				matched[ai] = true
				removedMatched[ri] = true
				break
			}
		}
	}

	result.Added = filterUnmatched(result.Added, matched)
	result.Removed = filterUnmatched(result.Removed, removedMatched)

	return result
}

// Untranslated returns the source units that reappear verbatim in the
// translated output's units.
func Untranslated(sourceNodes, outputNodes []TextNode) []TextNode {
	return DiffContent(sourceNodes, outputNodes).Unchanged
}

func hashSet(nodes []TextNode) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		set[node.Hash] = true
	}
	return set
}

func filterUnmatched(nodes []TextNode, matched map[int]bool) []TextNode {
	out := make([]TextNode, 0, len(nodes))
	for i, node := range nodes {
		if !matched[i] {
			out = append(out, node)
		}
	}
	return out
}
