package currency

import "github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"

// Match is the result of looking for a currency shared by two symbols.
type Match struct {
	Currency     string      // Shared code; empty when Found is false
	RoleInFirst  domain.Role // Role of Currency in the first symbol
	RoleInSecond domain.Role // Role of Currency in the second symbol
	Found        bool
}

// SameRole reports whether the shared currency sits in the same slot of both symbols.
func (m Match) SameRole() bool {
	return m.Found && m.RoleInFirst == m.RoleInSecond
}

type pair struct {
	base, quote string
}

func (p pair) code(r domain.Role) string {
	if r == domain.RoleBase {
		return p.base
	}
	return p.quote
}

// rule is one row of the matching table: if the currency in role first of the first symbol
// equals the currency in role second of the second symbol, that currency is shared.
type rule struct {
	first, second domain.Role
}

// matchRules is evaluated top to bottom and the first hit wins. A degenerate symbol whose
// base equals its quote can satisfy several rows; the order below decides which one is reported.
var matchRules = []rule{
	{domain.RoleBase, domain.RoleBase},
	{domain.RoleBase, domain.RoleQuote},
	{domain.RoleQuote, domain.RoleBase},
	{domain.RoleQuote, domain.RoleQuote},
}

// FindCommonCurrency returns the first currency shared by s1 and s2 together with
// its role in each symbol.
func FindCommonCurrency(s1, s2 string) Match {
	var p1, p2 pair
	p1.base, p1.quote = SplitSymbol(s1)
	p2.base, p2.quote = SplitSymbol(s2)

	for _, r := range matchRules {
		if c := p1.code(r.first); c == p2.code(r.second) {
			return Match{Currency: c, RoleInFirst: r.first, RoleInSecond: r.second, Found: true}
		}
	}
	return Match{}
}
