package detect

import (
	"regexp"
	"strings"
)

// SpamThreshold is the score at which a message counts as spam
const SpamThreshold = 2

// Density limits; exceeding either adds one point
const (
	maxSymbols   = 10
	maxLinkLikes = 2
)

// Pattern groups
const (
	GroupSubscription = "subscription"
	GroupFinance      = "finance"
	GroupGambling     = "gambling"
	GroupPromo        = "promo"
	GroupLinks        = "links"
	GroupUrgency      = "urgency"
	GroupDensity      = "density"
)

type spamPattern struct {
	group string
	re    *regexp.Regexp
}

// spamPatterns is evaluated against lowercased text, in order. Space and
// digit classes cover every script.
var spamPatterns = []spamPattern{
	{GroupSubscription, regexp.MustCompile(`(подписыв|subscribe|join|присоедин)[^.]*(@|t\.me|telegram)`)},
	{GroupSubscription, regexp.MustCompile(`(наш[\s\p{Z}]+канал|наша[\s\p{Z}]+группа|our[\s\p{Z}]+channel|our[\s\p{Z}]+group)`)},
	{GroupSubscription, regexp.MustCompile(`(жми[\s\p{Z}]+|нажми[\s\p{Z}]+|click[\s\p{Z}]+|tap[\s\p{Z}]+).*(ссылк|link)`)},

	{GroupFinance, regexp.MustCompile(`(заработ|earn|profit|доход)[^.]*(\$|\p{Nd}+|рубл|usd)`)},
	{GroupFinance, regexp.MustCompile(`(инвест|invest|вклад|депозит)[^.]*(%|процент|profit)`)},
	{GroupFinance, regexp.MustCompile(`(бинарн|binary|опцион|trading|трейд)`)},

	{GroupGambling, regexp.MustCompile(`(казино|casino|ставк|bet|слот|slot)`)},
	{GroupGambling, regexp.MustCompile(`(выигр|win)[^.]*(\$|\p{Nd}+.*рубл|\p{Nd}+.*usd)`)},

	{GroupPromo, regexp.MustCompile(`(промо|promo|скидк|discount|код)[^.]*(\p{Nd}+|%)`)},
	{GroupPromo, regexp.MustCompile(`(акци|action|offer|предложени)`)},

	{GroupLinks, regexp.MustCompile(`t\.me/[^/\s\p{Z}]+`)},
	{GroupLinks, regexp.MustCompile(`@[a-zA-Z0-9_]{5,}`)},

	{GroupUrgency, regexp.MustCompile(`(бесплатн|free)[^.]*(\$|\p{Nd}+|подарок|gift)`)},
	{GroupUrgency, regexp.MustCompile(`(только[\s\p{Z}]+сегодня|today[\s\p{Z}]+only|ограничен|limited)`)},
	{GroupUrgency, regexp.MustCompile(`(не[\s\p{Z}]+упусти|don't[\s\p{Z}]+miss|срочно|urgent)`)},
}

var (
	// symbolRe matches one rune that is neither a word character nor space.
	// Letters of every script count as word characters.
	symbolRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}]`)
	linkLikeRe = regexp.MustCompile(`http|t\.me|@`)
)

// SpamVerdict is the outcome of scoring one text
type SpamVerdict struct {
	Score   int
	Groups  []string
	Symbols int
	Links   int
}

// IsSpam reports whether the verdict reaches SpamThreshold
func (v SpamVerdict) IsSpam() bool {
	return v.Score >= SpamThreshold
}

// ScoreSpam scores text against the pattern catalogue. Each pattern adds at
// most one point; symbol or link density adds one more.
func ScoreSpam(text string) SpamVerdict {
	var v SpamVerdict
	if text == "" {
		return v
	}

	lowered := strings.ToLower(text)

	for _, p := range spamPatterns {
		if p.re.MatchString(lowered) {
			v.Score++
			v.Groups = append(v.Groups, p.group)
		}
	}

	v.Symbols = len(symbolRe.FindAllStringIndex(lowered, -1))
	v.Links = len(linkLikeRe.FindAllStringIndex(lowered, -1))
	if v.Symbols > maxSymbols || v.Links > maxLinkLikes {
		v.Score++
		v.Groups = append(v.Groups, GroupDensity)
	}

	return v
}

// IsSpam reports whether text is promotional spam
func IsSpam(text string) bool {
	return ScoreSpam(text).IsSpam()
}
