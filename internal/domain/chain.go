package domain

// Chain identifies a blockchain network supported by the Blockspan API.
type Chain string

const (
	ChainEthMain      Chain = "eth-main"
	ChainArbitrumMain Chain = "arbitrum-main"
	ChainOptimismMain Chain = "optimism-main"
	ChainPolyMain     Chain = "poly-main"
	ChainBSCMain      Chain = "bsc-main"
	ChainEthGoerli    Chain = "eth-goerli"
)

// DefaultChain is preselected in the lookup form.
const DefaultChain = ChainEthMain

// SupportedChains lists the selectable chains in display order.
var SupportedChains = []Chain{
	ChainEthMain,
	ChainArbitrumMain,
	ChainOptimismMain,
	ChainPolyMain,
	ChainBSCMain,
	ChainEthGoerli,
}

func (c Chain) String() string {
	return string(c)
}

// Valid reports whether c is one of SupportedChains.
func (c Chain) Valid() bool {
	for _, supported := range SupportedChains {
		if c == supported {
			return true
		}
	}
	return false
}

// ParseChain returns the chain named by raw, or false if it is not supported.
func ParseChain(raw string) (Chain, bool) {
	chain := Chain(raw)
	if !chain.Valid() {
		return "", false
	}
	return chain, true
}

// Query is the chain/contract/token triple a lookup runs against.
type Query struct {
	Chain    Chain  `json:"chain"`
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
}
