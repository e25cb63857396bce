// Package currency resolves how two currency-pair symbols relate through a shared currency
// and translates directional outcomes between them.
package currency

// codeLen is the length of an ISO currency code.
const codeLen = 3

// SplitSymbol splits a pair symbol into base and quote codes: the first three characters
// and the remainder. Nothing is validated, so a symbol whose length is not six yields a
// quote of the wrong length and a short symbol yields an empty quote.
func SplitSymbol(symbol string) (base, quote string) {
	n := codeLen
	if len(symbol) < n {
		n = len(symbol)
	}
	return symbol[:n], symbol[n:]
}

// IsWellFormed reports whether symbol has the six-character base+quote shape.
func IsWellFormed(symbol string) bool {
	return len(symbol) == 2*codeLen
}
