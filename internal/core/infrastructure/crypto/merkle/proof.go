package merkle

import (
	"fmt"

	"github.com/weisyn/finality/pkg/types"
)

// ProofStep 证明路径上的一步
type ProofStep struct {
	Sibling types.Hash `json:"sibling"`
	// Left 兄弟节点是否位于左侧
	Left bool `json:"left"`
}

// Proof 叶子包含证明
type Proof struct {
	Index int         `json:"index"`
	Steps []ProofStep `json:"steps"`
}

// Tree 保留所有层的 Merkle 树，用于生成包含证明
type Tree struct {
	calc   *Calculator
	levels [][]types.Hash
}

// NewTree 构建 Merkle 树
func (c *Calculator) NewTree(leaves []types.Hash) *Tree {
	t := &Tree{calc: c}
	if len(leaves) == 0 {
		return t
	}
	level := append([]types.Hash(nil), leaves...)
	t.levels = append(t.levels, level)
	for len(level) > 1 {
		level = c.nextLevel(level)
		t.levels = append(t.levels, level)
	}
	return t
}

// Root 树根，空树为全零哈希
func (t *Tree) Root() types.Hash {
	if len(t.levels) == 0 {
		return types.ZeroHash
	}
	return t.levels[len(t.levels)-1][0]
}

// LeafCount 叶子数量
func (t *Tree) LeafCount() int {
	if len(t.levels) == 0 {
		return 0
	}
	return len(t.levels[0])
}

// Proof 生成第 index 个叶子的包含证明
func (t *Tree) Proof(index int) (*Proof, error) {
	if index < 0 || index >= t.LeafCount() {
		return nil, fmt.Errorf("叶子索引越界: index=%d leaves=%d", index, t.LeafCount())
	}

	proof := &Proof{Index: index}
	pos := index
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling >= len(level) {
			// 奇数层的最后一个节点与自身配对
			sibling = pos
		}
		proof.Steps = append(proof.Steps, ProofStep{
			Sibling: level[sibling],
			Left:    pos%2 == 1,
		})
		pos /= 2
	}
	return proof, nil
}

// VerifyProof 校验叶子包含证明
func (c *Calculator) VerifyProof(leaf types.Hash, proof *Proof, root types.Hash) bool {
	if proof == nil {
		return false
	}
	current := leaf
	for _, step := range proof.Steps {
		if step.Left {
			current = c.parent(step.Sibling, current)
		} else {
			current = c.parent(current, step.Sibling)
		}
	}
	return current == root
}
