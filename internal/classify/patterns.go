package classify

import "regexp"

// PatternSet はパス分類に使う正規表現パターンの集合を保持する。
// ルールテーブルのキーワード判定を1箇所でコンパイルするための補助。
type PatternSet struct {
	patterns []*regexp.Regexp
}

// NewPatternSet は patterns をコンパイルして PatternSet を返す。
// 不正な正規表現はパニックではなくスキップする。
func NewPatternSet(patterns []string) *PatternSet {
	ps := &PatternSet{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue // 不正なパターンは無視
		}
		ps.patterns = append(ps.patterns, re)
	}
	return ps
}

// Match は path がパターンのいずれかに一致するか検査する。
func (ps *PatternSet) Match(path string) bool {
	for _, re := range ps.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
