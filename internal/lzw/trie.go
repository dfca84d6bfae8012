package lzw

// maxCode is the largest code a 12-bit GIF LZW stream can hold.
const maxCode = 4095

// listPromoteThreshold is how many children a node may hold as a flat scan
// list before it is worth promoting to a direct-indexed table.
const listPromoteThreshold = 8

// tableLinkCost is the number of child-slots a single promoted node
// consumes out of the global link budget.
const tableLinkCost = 256

// globalLinkBudget bounds the total number of promoted-table entries any
// one trie may allocate across all of its nodes: a small dictionary should
// not pay for 256-wide tables at every node.
const globalLinkBudget = 4096

type childEntry struct {
	suffix byte
	code   int32
}

// nodeChildren is a node's outgoing edges, keyed by the appended palette
// index (the "suffix" byte). Small nodes keep a scan list; nodes with many
// children are promoted to a direct-indexed table once the global link
// budget allows it.
type nodeChildren struct {
	list  []childEntry
	table []int32 // non-nil once promoted; table[suffix]-1 is the code, -1 means absent (stored as code+1 to keep the zero value meaningful)
}

func (n *nodeChildren) find(suffix byte) (int32, bool) {
	if n.table != nil {
		v := n.table[suffix]
		if v == 0 {
			return 0, false
		}
		return v - 1, true
	}
	for _, e := range n.list {
		if e.suffix == suffix {
			return e.code, true
		}
	}
	return 0, false
}

// forEach calls fn for every existing child edge.
func (n *nodeChildren) forEach(fn func(suffix byte, code int32)) {
	if n.table != nil {
		for s, v := range n.table {
			if v != 0 {
				fn(byte(s), v-1)
			}
		}
		return
	}
	for _, e := range n.list {
		fn(e.suffix, e.code)
	}
}

// add inserts a new child edge, promoting the node to a table if it has
// grown past listPromoteThreshold and the global budget still allows it.
func (n *nodeChildren) add(suffix byte, code int32, budget *int) {
	if n.table != nil {
		n.table[suffix] = code + 1
		return
	}
	n.list = append(n.list, childEntry{suffix, code})
	if len(n.list) > listPromoteThreshold && *budget >= tableLinkCost {
		tbl := make([]int32, 256)
		for _, e := range n.list {
			tbl[e.suffix] = e.code + 1
		}
		n.table = tbl
		n.list = nil
		*budget -= tableLinkCost
	}
}

// trie is the dictionary: a flat array of nodeChildren indexed directly by
// LZW code, so a node never needs to store its own code or a parent
// pointer. Codes [0, clearCode) are the literal single-symbol roots and
// start with no children; every code from clearCode+2 upward is allocated
// by extending some existing node with one more suffix byte.
type trie struct {
	nodes      []nodeChildren
	linkBudget int
}

func newTrie() *trie {
	return &trie{
		nodes:      make([]nodeChildren, maxCode+1),
		linkBudget: globalLinkBudget,
	}
}

func (t *trie) reset() {
	for i := range t.nodes {
		t.nodes[i] = nodeChildren{}
	}
	t.linkBudget = globalLinkBudget
}
