package align

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dentearl/maftools-go/newick"
)

// Errors returned by BlockTree operations.
var (
	ErrTreeRowCountMismatch = errors.New("tree row count mismatch")
	ErrTreeLabelMismatch    = errors.New("tree label mismatch")
	ErrCannotPruneRoot      = errors.New("cannot prune root node")
	ErrRootPruneInvalid     = errors.New("root prune invalid")
	ErrTreeJoinInvalidNodes = errors.New("invalid nodes for tree join")
	ErrSpeciesTreeMismatch  = errors.New("species tree mismatch")
	ErrTreeGenomeLoop       = errors.New("ancestor and descendant share a genome")
)

// TreeNode is one node of a BlockTree: it carries the genome name of its
// bound Component as its label and its position in the rooted tree.
type TreeNode struct {
	Label           string
	BranchLength    float64
	HasBranchLength bool

	Comp     *Component
	Parent   *TreeNode
	Children []*TreeNode

	order int
}

// Order returns the node's DFS post-order index, which matches the order
// of its Component within the owning Block.
func (n *TreeNode) Order() int { return n.order }

// BlockTree is a rooted tree whose nodes are 1:1 with a Block's Components.
type BlockTree struct {
	Root *TreeNode
}

func (t *BlockTree) renumber() {
	idx := 0
	var visit func(n *TreeNode)
	visit = func(n *TreeNode) {
		for _, c := range n.Children {
			visit(c)
		}
		n.order = idx
		idx++
	}
	if t.Root != nil {
		visit(t.Root)
	}
}

// PostOrderComponents returns the tree's Components in DFS post-order.
func (t *BlockTree) PostOrderComponents() []*Component {
	var out []*Component
	var visit func(n *TreeNode)
	visit = func(n *TreeNode) {
		for _, c := range n.Children {
			visit(c)
		}
		out = append(out, n.Comp)
	}
	if t.Root != nil {
		visit(t.Root)
	}
	return out
}

// normalizeNewick flattens unlabeled internal nodes produced by strict
// Newick parsing (which has no Component equivalent) by splicing their
// children into their parent. The top-level node, if unlabeled, is
// resolved by promoting its last child to root and attaching its other
// children as additional children of the promoted root — the convention
// under which "((mm:.1,rn:.1),hg:0);" names hg as the root of mm and rn.
func normalizeNewick(root *newick.Node) *newick.Node {
	collapseChildren(root)
	if root.Label != "" {
		return root
	}
	children := root.Children
	if len(children) == 0 {
		return root
	}
	newRoot := children[len(children)-1]
	others := children[:len(children)-1]
	newRoot.Children = append(newRoot.Children, others...)
	return newRoot
}

func collapseChildren(n *newick.Node) {
	var flat []*newick.Node
	for _, c := range n.Children {
		collapseChildren(c)
		if c.Label == "" && len(c.Children) > 0 {
			flat = append(flat, c.Children...)
		} else {
			flat = append(flat, c)
		}
	}
	n.Children = flat
}

func countNodes(n *newick.Node) int {
	total := 1
	for _, c := range n.Children {
		total += countNodes(c)
	}
	return total
}

// ConstructFromNewick parses newickStr and binds each of its nodes to the
// Component among comps whose Genome name matches the node's label, in
// tree post-order.
func ConstructFromNewick(newickStr string, comps []*Component) (*BlockTree, error) {
	raw, err := newick.Parse(newickStr)
	if err != nil {
		return nil, err
	}
	raw = normalizeNewick(raw)

	if n := countNodes(raw); n != len(comps) {
		return nil, fmt.Errorf("%w: tree has %d nodes, block has %d components", ErrTreeRowCountMismatch, n, len(comps))
	}
	byGenome := make(map[string]*Component, len(comps))
	for _, c := range comps {
		if _, dup := byGenome[c.Seq.Genome.Name]; dup {
			return nil, fmt.Errorf("%w: genome %s has more than one row", ErrTreeLabelMismatch, c.Seq.Genome.Name)
		}
		byGenome[c.Seq.Genome.Name] = c
	}

	var build func(n *newick.Node) (*TreeNode, error)
	build = func(n *newick.Node) (*TreeNode, error) {
		comp, ok := byGenome[n.Label]
		if !ok {
			return nil, fmt.Errorf("%w: label %q not found among block components", ErrTreeLabelMismatch, n.Label)
		}
		tn := &TreeNode{Label: n.Label, Comp: comp, BranchLength: n.BranchLength, HasBranchLength: n.HasBranchLength}
		comp.Node = tn
		for _, c := range n.Children {
			child, err := build(c)
			if err != nil {
				return nil, err
			}
			child.Parent = tn
			tn.Children = append(tn.Children, child)
		}
		return tn, nil
	}
	rootNode, err := build(raw)
	if err != nil {
		return nil, err
	}
	bt := &BlockTree{Root: rootNode}
	bt.renumber()
	return bt, nil
}

// ConstructFromAlignment builds a fallback star tree for a block that
// arrived without one: root becomes the parent of every other Component,
// each attached with defaultBranchLength.
func ConstructFromAlignment(comps []*Component, root *Component, defaultBranchLength float64) *BlockTree {
	rootNode := &TreeNode{Label: root.Seq.Genome.Name, Comp: root}
	root.Node = rootNode
	for _, c := range comps {
		if c == root {
			continue
		}
		child := &TreeNode{
			Label:           c.Seq.Genome.Name,
			Comp:            c,
			Parent:          rootNode,
			BranchLength:    defaultBranchLength,
			HasBranchLength: true,
		}
		c.Node = child
		rootNode.Children = append(rootNode.Children, child)
	}
	bt := &BlockTree{Root: rootNode}
	bt.renumber()
	return bt
}

// PruneNode removes n from the tree, re-parenting its children to its
// parent. The root cannot be pruned.
func (t *BlockTree) PruneNode(n *TreeNode) error {
	if n.Parent == nil {
		return fmt.Errorf("prune_node: %w", ErrCannotPruneRoot)
	}
	parent := n.Parent
	idx := -1
	for i, c := range parent.Children {
		if c == n {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("prune_node: node not found among parent's children")
	}
	replacement := make([]*TreeNode, 0, len(parent.Children)-1+len(n.Children))
	replacement = append(replacement, parent.Children[:idx]...)
	for _, c := range n.Children {
		c.Parent = parent
		replacement = append(replacement, c)
	}
	replacement = append(replacement, parent.Children[idx+1:]...)
	parent.Children = replacement
	if n.Comp != nil {
		n.Comp.Node = nil
	}
	t.renumber()
	return nil
}

// SubrangeClone builds a tree over the subset of Components present as
// keys in mapping, mapped to their replacement Components, preserving
// ancestor/descendant edges: a pruned interior node's surviving
// descendants attach to its nearest surviving ancestor. If the root is
// pruned and more than one child survives, SubrangeClone fails with
// ErrRootPruneInvalid.
func (t *BlockTree) SubrangeClone(mapping map[*Component]*Component) (*BlockTree, error) {
	type result struct {
		node    *TreeNode
		pending []*TreeNode
	}
	var walk func(src *TreeNode) result
	walk = func(src *TreeNode) result {
		var survivingChildren []*TreeNode
		var pending []*TreeNode
		for _, c := range src.Children {
			r := walk(c)
			if r.node != nil {
				survivingChildren = append(survivingChildren, r.node)
			}
			pending = append(pending, r.pending...)
		}
		newComp, ok := mapping[src.Comp]
		if !ok {
			return result{pending: append(survivingChildren, pending...)}
		}
		n := &TreeNode{
			Label:           newComp.Seq.Genome.Name,
			Comp:            newComp,
			BranchLength:    src.BranchLength,
			HasBranchLength: src.HasBranchLength,
		}
		newComp.Node = n
		n.Children = append(survivingChildren, pending...)
		for _, c := range n.Children {
			c.Parent = n
		}
		return result{node: n}
	}
	if t.Root == nil {
		return nil, fmt.Errorf("subrange_clone: %w: empty source tree", ErrRootPruneInvalid)
	}
	r := walk(t.Root)
	var root *TreeNode
	if r.node != nil {
		root = r.node
	} else {
		switch len(r.pending) {
		case 0:
			return nil, fmt.Errorf("subrange_clone: %w: no surviving components", ErrRootPruneInvalid)
		case 1:
			root = r.pending[0]
			root.Parent = nil
		default:
			return nil, fmt.Errorf("subrange_clone: %w: root pruned with %d surviving children", ErrRootPruneInvalid, len(r.pending))
		}
	}
	bt := &BlockTree{Root: root}
	bt.renumber()
	return bt, nil
}

func cloneMapped(n *TreeNode, mapping map[*Component]*Component) (*TreeNode, error) {
	newComp, ok := mapping[n.Comp]
	if !ok {
		return nil, fmt.Errorf("tree join: %w: no mapping for %s", ErrTreeJoinInvalidNodes, n.Label)
	}
	cn := &TreeNode{
		Label:           newComp.Seq.Genome.Name,
		Comp:            newComp,
		BranchLength:    n.BranchLength,
		HasBranchLength: n.HasBranchLength,
	}
	newComp.Node = cn
	for _, c := range n.Children {
		cc, err := cloneMapped(c, mapping)
		if err != nil {
			return nil, err
		}
		cc.Parent = cn
		cn.Children = append(cn.Children, cc)
	}
	return cn, nil
}

func findNode(root *TreeNode, comp *Component) *TreeNode {
	if root.Comp == comp {
		return root
	}
	for _, c := range root.Children {
		if f := findNode(c, comp); f != nil {
			return f
		}
	}
	return nil
}

// Join combines tree1 and tree2 at the shared guide Sequence referenced by
// comp1 (in tree1) and comp2 (in tree2). At least one of comp1, comp2 must
// be its tree's root: root-to-root grafts root2's children under the
// clone of root1; root-of-one to leaf-of-other clones the other tree and
// attaches the root's children at the leaf's position. mapping translates
// every node of both source trees to its Component in the joined result.
// Any other combination of comp1/comp2 fails ErrTreeJoinInvalidNodes.
func Join(tree1 *BlockTree, comp1 *Component, tree2 *BlockTree, comp2 *Component, mapping map[*Component]*Component) (*BlockTree, error) {
	if comp1.Seq != comp2.Seq {
		return nil, fmt.Errorf("tree join: %w: components refer to different sequences", ErrTreeJoinInvalidNodes)
	}
	root1IsComp1 := tree1.Root.Comp == comp1
	root2IsComp2 := tree2.Root.Comp == comp2

	graft := func(newRoot *TreeNode, target *TreeNode, fromChildren []*TreeNode) error {
		for _, c := range fromChildren {
			cc, err := cloneMapped(c, mapping)
			if err != nil {
				return err
			}
			cc.Parent = target
			target.Children = append(target.Children, cc)
		}
		return nil
	}

	switch {
	case root1IsComp1 && root2IsComp2:
		newRoot, err := cloneMapped(tree1.Root, mapping)
		if err != nil {
			return nil, err
		}
		if err := graft(newRoot, newRoot, tree2.Root.Children); err != nil {
			return nil, err
		}
		bt := &BlockTree{Root: newRoot}
		bt.renumber()
		return bt, nil
	case root1IsComp1:
		newRoot, err := cloneMapped(tree2.Root, mapping)
		if err != nil {
			return nil, err
		}
		target := findNode(newRoot, mapping[comp2])
		if target == nil {
			return nil, fmt.Errorf("tree join: %w: leaf node not found in clone", ErrTreeJoinInvalidNodes)
		}
		if err := graft(newRoot, target, tree1.Root.Children); err != nil {
			return nil, err
		}
		bt := &BlockTree{Root: newRoot}
		bt.renumber()
		return bt, nil
	case root2IsComp2:
		newRoot, err := cloneMapped(tree1.Root, mapping)
		if err != nil {
			return nil, err
		}
		target := findNode(newRoot, mapping[comp1])
		if target == nil {
			return nil, fmt.Errorf("tree join: %w: leaf node not found in clone", ErrTreeJoinInvalidNodes)
		}
		if err := graft(newRoot, target, tree2.Root.Children); err != nil {
			return nil, err
		}
		bt := &BlockTree{Root: newRoot}
		bt.renumber()
		return bt, nil
	default:
		return nil, fmt.Errorf("tree join: %w: neither component is its tree's root", ErrTreeJoinInvalidNodes)
	}
}

// ChildLess orders two sibling TreeNodes for SortChildren.
type ChildLess func(a, b *TreeNode) bool

// DefaultChildLess orders by label, falling back to (seq, strand, start,
// end) to break ties deterministically when labels collide.
func DefaultChildLess(a, b *TreeNode) bool {
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	ac, bc := a.Comp, b.Comp
	if ac.Seq != bc.Seq {
		return ac.Seq.Less(bc.Seq)
	}
	if ac.Strand != bc.Strand {
		return ac.Strand < bc.Strand
	}
	if ac.Start != bc.Start {
		return ac.Start < bc.Start
	}
	return ac.End < bc.End
}

func buildNewickSubtree(n *TreeNode) *newick.Node {
	nn := &newick.Node{Label: n.Label, BranchLength: n.BranchLength, HasBranchLength: n.HasBranchLength}
	for _, c := range n.Children {
		nn.Children = append(nn.Children, buildNewickSubtree(c))
	}
	return nn
}

// externalizeRoot reverses normalizeNewick: it wraps the tree's true root
// back into an unlabeled top-level node with the root demoted to the last
// "child" position, matching the convention under which "(mm:.1,hg:0);"
// and "((mm:.1,rn:.1),hg:0);" both name hg as root.
func externalizeRoot(root *TreeNode) *newick.Node {
	rootLeaf := &newick.Node{Label: root.Label, BranchLength: root.BranchLength, HasBranchLength: root.HasBranchLength}
	switch len(root.Children) {
	case 0:
		return rootLeaf
	case 1:
		return &newick.Node{Children: []*newick.Node{buildNewickSubtree(root.Children[0]), rootLeaf}}
	default:
		group := &newick.Node{}
		for _, c := range root.Children {
			group.Children = append(group.Children, buildNewickSubtree(c))
		}
		return &newick.Node{Children: []*newick.Node{group, rootLeaf}}
	}
}

// ToNewick renders t as a "tree=" attribute value, in the same
// root-as-last-child convention accepted by ConstructFromNewick.
func (t *BlockTree) ToNewick() string {
	if t.Root == nil {
		return ""
	}
	return newick.Format(externalizeRoot(t.Root))
}

// SortChildren orders every node's children by less, for reproducible
// Component ordering.
func (t *BlockTree) SortChildren(less ChildLess) {
	var visit func(n *TreeNode)
	visit = func(n *TreeNode) {
		sort.SliceStable(n.Children, func(i, j int) bool { return less(n.Children[i], n.Children[j]) })
		for _, c := range n.Children {
			visit(c)
		}
	}
	if t.Root != nil {
		visit(t.Root)
	}
	t.renumber()
}

// Validate checks that no ancestor-descendant pair in the tree shares a
// Genome.
func (t *BlockTree) Validate() error {
	var visit func(n *TreeNode, ancestors map[string]bool) error
	visit = func(n *TreeNode, ancestors map[string]bool) error {
		g := n.Comp.Seq.Genome.Name
		if ancestors[g] {
			return fmt.Errorf("%w: genome %s", ErrTreeGenomeLoop, g)
		}
		next := make(map[string]bool, len(ancestors)+1)
		for k := range ancestors {
			next[k] = true
		}
		next[g] = true
		for _, c := range n.Children {
			if err := visit(c, next); err != nil {
				return err
			}
		}
		return nil
	}
	if t.Root == nil {
		return nil
	}
	return visit(t.Root, map[string]bool{})
}

// SpeciesTree is a genome-labeled Newick tree used to verify that block
// trees are subtree-homomorphisms of the true phylogeny. It is read in the
// same root-as-last-child convention as block trees.
type SpeciesTree struct {
	root     *newick.Node
	byGenome map[string]*newick.Node
}

// NewSpeciesTree parses newickStr into a SpeciesTree keyed by genome name.
func NewSpeciesTree(newickStr string) (*SpeciesTree, error) {
	root, err := newick.Parse(newickStr)
	if err != nil {
		return nil, err
	}
	root = normalizeNewick(root)
	st := &SpeciesTree{root: root, byGenome: make(map[string]*newick.Node)}
	var index func(n *newick.Node)
	index = func(n *newick.Node) {
		if n.Label != "" {
			st.byGenome[n.Label] = n
		}
		for _, c := range n.Children {
			index(c)
		}
	}
	index(root)
	return st, nil
}

func descendantGenomes(n *newick.Node, set map[string]bool) {
	if n.Label != "" {
		set[n.Label] = true
	}
	for _, c := range n.Children {
		descendantGenomes(c, set)
	}
}

// Contains reports whether genome is ancestorGenome itself or one of its
// species-tree descendants.
func (st *SpeciesTree) Contains(ancestorGenome, genome string) bool {
	node, ok := st.byGenome[ancestorGenome]
	if !ok {
		return false
	}
	set := make(map[string]bool)
	descendantGenomes(node, set)
	return set[genome]
}

// VerifyAgainstSpeciesTree checks that every parent/child edge in t is
// backed by an ancestor/descendant relationship in st.
func (t *BlockTree) VerifyAgainstSpeciesTree(st *SpeciesTree) error {
	var visit func(n *TreeNode) error
	visit = func(n *TreeNode) error {
		for _, c := range n.Children {
			if !st.Contains(n.Comp.Seq.Genome.Name, c.Comp.Seq.Genome.Name) {
				return fmt.Errorf("%w: %s is not a species-tree descendant of %s", ErrSpeciesTreeMismatch, c.Label, n.Label)
			}
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	if t.Root == nil {
		return nil
	}
	return visit(t.Root)
}
