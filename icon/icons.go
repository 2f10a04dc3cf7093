package icon

// Icon identifies a UI symbol in the registry.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Play
	Pause
	Buffering
	Ended
	Loop
	Volume
	Subtitle
	Progress
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "OK",
		kaomoji: "(ᵔᴥᵔ)",
		squares: "🟩",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟦",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "⬜",
	},
	Buffering: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・・ ) ?",
		squares: "🟨",
	},
	Ended: {
		emoji:   "🏁",
		nerd:    "",
		plain:   "END",
		kaomoji: "(￣▽￣)ノ",
		squares: "⬛",
	},
	Loop: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "LOOP",
		kaomoji: "(〜￣▽￣)〜",
		squares: "🟪",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "VOL",
		kaomoji: "ヽ(°〇°)ﾉ",
		squares: "🟧",
	},
	Subtitle: {
		emoji:   "💬",
		nerd:    "",
		plain:   "CC",
		kaomoji: "(・∀・)",
		squares: "🟫",
	},
	Progress: {
		emoji:   "👀",
		nerd:    "",
		plain:   "~",
		kaomoji: "(⊙_⊙)",
		squares: "🔲",
	},
}
