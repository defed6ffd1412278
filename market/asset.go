// market/asset.go
package market

// Symbol identifies a tradable asset.
type Symbol string

const (
	BTC  Symbol = "BTC"
	ETH  Symbol = "ETH"
	SOL  Symbol = "SOL"
	FAKE Symbol = "FAKE"
)

// AssetMeta is immutable reference data for an asset.
type AssetMeta struct {
	Symbol    Symbol
	Name      string
	Display   string
	Synthetic bool
}

var Assets = map[Symbol]AssetMeta{
	BTC: {
		Symbol:  BTC,
		Name:    "Bitcoin",
		Display: "BTC",
	},
	ETH: {
		Symbol:  ETH,
		Name:    "Ethereum",
		Display: "ETH",
	},
	SOL: {
		Symbol:  SOL,
		Name:    "Solana",
		Display: "SOL",
	},
	FAKE: {
		Symbol:    FAKE,
		Name:      "Fake Market",
		Display:   "FAKE",
		Synthetic: true,
	},
}

// AllSymbols lists assets in display order.
var AllSymbols = []Symbol{BTC, ETH, SOL, FAKE}

// Valid reports whether s names a known asset.
func (s Symbol) Valid() bool {
	_, ok := Assets[s]
	return ok
}

// Synthetic reports whether s is the procedurally generated asset.
func (s Symbol) Synthetic() bool {
	return Assets[s].Synthetic
}
