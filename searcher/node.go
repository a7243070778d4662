package searcher

import (
	"fmt"
	"strings"

	"onitama/game"
)

const noParent = -1

// Node is one position in the search tree. Reward is accumulated from the
// perspective of the color that moved into the node, so a parent maximizes
// its children's WinRate.
type Node struct {
	Parent   int32
	Children []int32
	Move     game.DoneMove // Move from the parent, zero at the root
	Visits   int
	Reward   float64
	WinRate  float64
	Terminal bool
	Expanded bool
	Color    game.Color // Color to move at this node
	Prior    float64
}

func (n *Node) IsRoot() bool {
	return n.Parent == noParent
}

// Summary is a one-line description for logging.
func (n *Node) Summary() string {
	move := "root"
	if !n.IsRoot() {
		move = n.Move.String()
	}
	return fmt.Sprintf("%s color=%s winrate=%.3f reward=%.1f visits=%d terminal=%t expanded=%t prior=%.3f",
		move, n.Color, n.WinRate, n.Reward, n.Visits, n.Terminal, n.Expanded, n.Prior)
}

// Tree stores nodes in one arena; node 0 is the root. Parent and child links
// are arena indices, so dropping the tree frees every node at once.
type Tree struct {
	nodes []Node
}

func newTree(color game.Color) *Tree {
	t := &Tree{nodes: make([]Node, 0, 1024)}
	t.nodes = append(t.nodes, Node{Parent: noParent, Color: color})
	return t
}

func (t *Tree) Root() *Node {
	return &t.nodes[0]
}

// Node returns the node at i. The pointer is invalidated by the next
// expansion.
func (t *Tree) Node(i int32) *Node {
	return &t.nodes[i]
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) add(parent int32, move game.DoneMove, color game.Color, prior float64, terminal bool) int32 {
	i := int32(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Parent:   parent,
		Move:     move,
		Color:    color,
		Prior:    prior,
		Terminal: terminal,
	})
	t.nodes[parent].Children = append(t.nodes[parent].Children, i)
	return i
}

// backup adds value, seen by the color to move at leaf, to every node from
// leaf to the root, flipping the sign at each step.
func (t *Tree) backup(leaf int32, value float64) {
	reward := -value
	for i := leaf; i != noParent; i = t.nodes[i].Parent {
		n := &t.nodes[i]
		n.Visits++
		n.Reward += reward
		n.WinRate = n.Reward / float64(n.Visits)
		reward = -reward
	}
}

// mostVisited returns the root child with the most visits, breaking ties by
// win rate.
func (t *Tree) mostVisited() int32 {
	best := int32(noParent)
	for _, c := range t.Root().Children {
		if best == noParent {
			best = c
			continue
		}
		n, b := &t.nodes[c], &t.nodes[best]
		if n.Visits > b.Visits || (n.Visits == b.Visits && orderKey(n.WinRate) > orderKey(b.WinRate)) {
			best = c
		}
	}
	return best
}

// String renders the root and its children.
func (t *Tree) String() string {
	var sb strings.Builder
	sb.WriteString(t.Root().Summary())
	for _, c := range t.Root().Children {
		sb.WriteString("\n  ")
		sb.WriteString(t.nodes[c].Summary())
	}
	return sb.String()
}
