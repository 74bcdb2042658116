// Package args provides the shell-like tokenizer for the operator argument bar.
package args

import "strings"

// Split はフリーテキストの引数文字列を引数ベクトルに分割する。
//
// ルール:
//   - クォート外の空白がトークン境界。連続する空白は1つの境界に潰れる。
//   - ' と " はそれぞれクォート領域をトグルする。一方がアクティブな間、
//     もう一方のクォート文字はリテラルとして扱う。
//   - シングルクォート外ではバックスラッシュが次の1文字をエスケープする
//     （空白を含む）。シングルクォート内ではバックスラッシュ自体がリテラル。
//   - 空トークンは捨てる。
//
// 閉じられていないクォートや末尾のバックスラッシュは寛容に処理する
// （末尾まで消費、または無効果で脱落）。この関数は決して失敗しない。
// 引数の妥当性はバックエンドのみが判定し、拒否は引数単位で報告される。
func Split(text string) []string {
	var (
		tokens   []string
		cur      strings.Builder
		inSingle bool
		inDouble bool
		escaped  bool
		started  bool // cur が「空トークン」ではなく明示的に開始されたか
	)

	flush := func() {
		if started && cur.Len() > 0 {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
		started = false
	}

	for _, r := range text {
		if escaped {
			// エスケープされた文字はそのまま挿入（空白も含む）
			cur.WriteRune(r)
			started = true
			escaped = false
			continue
		}

		switch {
		case r == '\\' && !inSingle:
			escaped = true

		case r == '\'' && !inDouble:
			inSingle = !inSingle
			started = true // 'a''b' のような隣接クォートでもトークン継続

		case r == '"' && !inSingle:
			inDouble = !inDouble
			started = true

		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inSingle && !inDouble:
			flush()

		default:
			cur.WriteRune(r)
			started = true
		}
	}

	// 末尾バックスラッシュ・未終端クォートは無効果で終端扱い
	flush()
	return tokens
}
