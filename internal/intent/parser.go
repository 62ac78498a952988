package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Confidence levels. Binary in practice: a rule either matched or it didn't.
const (
	ConfidenceMatched   = 0.8
	ConfidenceUnmatched = 0.3
)

// rule pairs a keyword pattern with the intent type it detects.
type rule struct {
	re  *regexp.Regexp
	typ Type
}

// rules is evaluated in order and the first match wins. The ordering is a
// committed contract: patterns are not mutually exclusive ("unstake" matches
// the stake family before the withdraw family ever sees it), so reordering
// changes classification.
var rules = []rule{
	{regexp.MustCompile(`swap|exchange|convert|trade`), TypeSwap},
	{regexp.MustCompile(`stake|staking`), TypeStake},
	{regexp.MustCompile(`lend|deposit|supply`), TypeLend},
	{regexp.MustCompile(`withdraw|unstake|remove|pull\s+out|take\s+out`), TypeWithdraw},
	{regexp.MustCompile(`balance|portfolio|holdings`), TypeBalance},
	{regexp.MustCompile(`position|status|check\s+deposit|how\s+much`), TypePosition},
}

var (
	// First numeric token with an optional unit, e.g. "10 SOL", "50%".
	amountRe = regexp.MustCompile(`(\d+\.?\d*)\s*(sol|usdc|%)?`)

	// Swap legs: "<token> to <token>" over the known vocabulary.
	pairRe = regexp.MustCompile(`(sol|usdc|usdt)\s+to\s+(sol|usdc|usdt)`)
)

// Parse converts a free-text command into an Intent. It is a total function:
// every input yields a well-formed Intent, falling back to TypeUnknown with
// low confidence when no keyword pattern matches.
func Parse(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))

	typ := TypeUnknown
	for _, r := range rules {
		if r.re.MatchString(normalized) {
			typ = r.typ
			break
		}
	}

	var amount *float64
	unit := "SOL"
	if m := amountRe.FindStringSubmatch(normalized); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			amount = &v
		}
		if m[2] != "" && m[2] != UnitPercent {
			unit = strings.ToUpper(m[2])
		} else if m[2] == UnitPercent {
			unit = UnitPercent
		}
	}

	var tokens TokenPair
	if typ == TypeSwap {
		if m := pairRe.FindStringSubmatch(normalized); m != nil {
			tokens.From = strings.ToUpper(m[1])
			tokens.To = strings.ToUpper(m[2])
		}
	}

	// Protocol hint. Multiple mentions are not disambiguated: the last
	// presence test in source order wins.
	protocol := ""
	if strings.Contains(normalized, ProtocolJupiter) {
		protocol = ProtocolJupiter
	}
	if strings.Contains(normalized, ProtocolKamino) {
		protocol = ProtocolKamino
	}
	if strings.Contains(normalized, ProtocolJito) {
		protocol = ProtocolJito
	}

	confidence := ConfidenceUnmatched
	if typ != TypeUnknown {
		confidence = ConfidenceMatched
	}

	return Intent{
		Type:       typ,
		Amount:     amount,
		Unit:       unit,
		Tokens:     tokens,
		Protocol:   protocol,
		Raw:        text,
		Confidence: confidence,
	}
}
