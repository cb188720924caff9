// Package icon renders the status symbols of the player output in the variant chosen by icons.variant.
package icon

import (
	"github.com/anisan-cli/playerview/key"
	"github.com/spf13/viper"
)

// Variant names accepted by the icons.variant setting.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// Variants lists the accepted icons.variant values.
func Variants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Progress
	Play
	Pause
	Ended
	Buffer
	Replay
	History
)

var icons = map[Icon]glyphs{
	Success: {
		emoji:   "✅",
		nerd:    "\uf00c",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "▣",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "\uf00d",
		plain:   "X",
		kaomoji: "(╥﹏╥)",
		squares: "▨",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "\uf110",
		plain:   "...",
		kaomoji: "(・_・ヾ",
		squares: "◫",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "\uf04b",
		plain:   ">",
		kaomoji: "ヽ(°〇°)ﾉ",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "\uf04c",
		plain:   "||",
		kaomoji: "(-_-) zzZ",
		squares: "⏸",
	},
	Ended: {
		emoji:   "⏹️",
		nerd:    "\uf04d",
		plain:   "#",
		kaomoji: "(￣▽￣)ノ",
		squares: "■",
	},
	Buffer: {
		emoji:   "📶",
		nerd:    "\uf1eb",
		plain:   "~",
		kaomoji: "(⊙_⊙)",
		squares: "▤",
	},
	Replay: {
		emoji:   "🔁",
		nerd:    "\uf01e",
		plain:   "@",
		kaomoji: "(↻_↻)",
		squares: "◩",
	},
	History: {
		emoji:   "📜",
		nerd:    "\uf1da",
		plain:   "*",
		kaomoji: "φ(..)",
		squares: "▥",
	},
}

// glyphs is one symbol drawn in every variant.
type glyphs struct {
	emoji, nerd, plain, kaomoji, squares string
}

func (g glyphs) in(variant string) string {
	switch variant {
	case emoji:
		return g.emoji
	case nerd:
		return g.nerd
	case plain:
		return g.plain
	case kaomoji:
		return g.kaomoji
	case squares:
		return g.squares
	}
	return ""
}

// Get renders i in the configured variant. Unknown icons and variants render as "".
func Get(i Icon) string {
	g, ok := icons[i]
	if !ok {
		return ""
	}
	return g.in(viper.GetString(key.IconsVariant))
}
