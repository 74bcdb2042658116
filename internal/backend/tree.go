package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TreeNode は可視化可能なツール出力から抽出したレンダリング用ノード。
type TreeNode struct {
	Label    string
	Children []*TreeNode
}

// 抽出の上限。巨大な出力でビューポートを溢れさせない。
const (
	treeMaxDepth = 6
	treeMaxNodes = 200
)

// treeProducerKeywords は「構造を出力するツール」と認識するパスのキーワード。
// 行列・インデックススキャナ系はカバレッジツリーを JSON で出力する。
var treeProducerKeywords = []string{"matrix", "index", "coverage", "tree"}

// IsTreeProducer は path のツールが可視化可能な構造を出力するとみなせるかを返す。
func IsTreeProducer(path string) bool {
	p := strings.ToLower(path)
	for _, kw := range treeProducerKeywords {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}

// ExtractTree は stdout を投機的に JSON パースしてレンダリング用ツリーを抽出する。
// パーサーではなく「パースできれば拾う」greedy な抽出であり、
// 失敗しても (nil, false) を返すだけで実行結果には影響しない。
func ExtractTree(stdout string) (*TreeNode, bool) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, false
	}

	budget := treeMaxNodes
	root := buildNode("result", v, 0, &budget)
	if root == nil || len(root.Children) == 0 {
		return nil, false
	}
	return root, true
}

// buildNode は JSON 値をノードに変換する。budget が尽きたら打ち切る。
func buildNode(label string, v any, depth int, budget *int) *TreeNode {
	if *budget <= 0 || depth > treeMaxDepth {
		return nil
	}
	*budget--

	switch val := v.(type) {
	case map[string]any:
		node := &TreeNode{Label: label}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if child := buildNode(k, val[k], depth+1, budget); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node

	case []any:
		node := &TreeNode{Label: fmt.Sprintf("%s (%d)", label, len(val))}
		for i, elem := range val {
			if child := buildNode(fmt.Sprintf("[%d]", i), elem, depth+1, budget); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node

	case nil:
		return &TreeNode{Label: label + ": null"}

	default:
		return &TreeNode{Label: fmt.Sprintf("%s: %v", label, val)}
	}
}

// Render はツリーをインデント付きテキストに整形する（コンソールブロック用）。
func (n *TreeNode) Render() string {
	var sb strings.Builder
	renderNode(&sb, n, "")
	return sb.String()
}

func renderNode(sb *strings.Builder, n *TreeNode, indent string) {
	sb.WriteString(indent)
	sb.WriteString(n.Label)
	sb.WriteByte('\n')
	for _, c := range n.Children {
		renderNode(sb, c, indent+"  ")
	}
}
