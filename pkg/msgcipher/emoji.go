package msgcipher

import "unicode"

// EmojiRef records one glyph removed from a message before encryption.
// Index is the rune offset in the original text.
type EmojiRef struct {
	Glyph string `json:"emoji"`
	Index int    `json:"index"`
}

// emojiTable covers the blocks the mobile keyboard emits: emoticons,
// pictographs, transport, supplemental symbols, flags, dingbats, plus the
// joiner and variation selector used in sequences.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1},
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1},
	},
}

func isEmoji(r rune) bool {
	return unicode.Is(emojiTable, r)
}

// ExtractEmoji strips emoji runes from s and records each one with its rune
// offset in the original string, so the receiver can re-splice them after
// decrypting the stripped text.
func ExtractEmoji(s string) (string, []EmojiRef) {
	var stripped []rune
	var refs []EmojiRef

	for i, r := range []rune(s) {
		if isEmoji(r) {
			refs = append(refs, EmojiRef{Glyph: string(r), Index: i})
			continue
		}
		stripped = append(stripped, r)
	}
	return string(stripped), refs
}

// Splice re-inserts extracted glyphs at their recorded offsets. refs must be
// in ascending index order, which is what ExtractEmoji produces.
func Splice(stripped string, refs []EmojiRef) string {
	if len(refs) == 0 {
		return stripped
	}

	out := []rune(stripped)
	for _, ref := range refs {
		idx := ref.Index
		if idx > len(out) {
			idx = len(out)
		}
		glyph := []rune(ref.Glyph)
		out = append(out[:idx], append(glyph, out[idx:]...)...)
	}
	return string(out)
}
