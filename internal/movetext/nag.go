package movetext

import "strings"

var glyphs = map[string]string{
	"$1":   "Good move",
	"$2":   "Mistake",
	"$3":   "Brilliant move",
	"$4":   "Blunder",
	"$5":   "Interesting move",
	"$6":   "Dubious move",
	"$7":   "Forced move",
	"$8":   "Singular move",
	"$9":   "Worst move",
	"$10":  "Equal position",
	"$11":  "Equal chances, quiet position",
	"$12":  "Equal chances, active position",
	"$13":  "Unclear position",
	"$14":  "White is slightly better",
	"$15":  "Black is slightly better",
	"$16":  "White is better",
	"$17":  "Black is better",
	"$18":  "White is winning",
	"$19":  "Black is winning",
	"$20":  "White has a crushing advantage",
	"$21":  "Black has a crushing advantage",
	"$22":  "White is in zugzwang",
	"$23":  "Black is in zugzwang",
	"$32":  "White has a development advantage",
	"$33":  "Black has a development advantage",
	"$36":  "White has the initiative",
	"$37":  "Black has the initiative",
	"$40":  "White has the attack",
	"$41":  "Black has the attack",
	"$44":  "White has compensation for the material",
	"$45":  "Black has compensation for the material",
	"$132": "White has counterplay",
	"$133": "Black has counterplay",
	"$138": "White is in time trouble",
	"$139": "Black is in time trouble",
	"$140": "With the idea",
	"$146": "Novelty",
}

var suffixes = map[string]string{
	"!":  "$1",
	"?":  "$2",
	"!!": "$3",
	"??": "$4",
	"!?": "$5",
	"?!": "$6",
}

// Describe returns the text for a glyph ("$14") or move suffix ("!?"). Unknown
// glyphs return the glyph itself.
func Describe(glyph string) string {
	if nag, ok := suffixes[glyph]; ok {
		glyph = nag
	}
	if text, ok := glyphs[glyph]; ok {
		return text
	}
	return strings.TrimSpace(glyph)
}
