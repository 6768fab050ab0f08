package domain

// MediumImageKey selects the 500x500 entry of NFT.CachedImages.
const MediumImageKey = "medium_500_500"

// NFT is the metadata record of a single token as returned by Blockspan.
type NFT struct {
	ID              Scalar            `json:"id"`
	ContractAddress string            `json:"contract_address,omitempty"`
	TokenType       string            `json:"token_type,omitempty"`
	Name            Scalar            `json:"name"`
	TokenName       Scalar            `json:"token_name"`
	RarityRank      Scalar            `json:"rarity_rank"`
	CachedImages    map[string]string `json:"cached_images,omitempty"`
	RecentPrice     *RecentPrice      `json:"recent_price,omitempty"`
}

// RecentPrice is the last sale price of the token.
type RecentPrice struct {
	Price         Scalar `json:"price"`
	PriceUSD      Scalar `json:"price_usd"`
	PriceCurrency Scalar `json:"price_currency"`
}

// MediumImage returns the cached 500x500 image URL, or "" if none is cached.
func (n *NFT) MediumImage() string {
	if n == nil || n.CachedImages == nil {
		return ""
	}
	return n.CachedImages[MediumImageKey]
}

// Transfer is one ownership change of a token.
type Transfer struct {
	FromAddress    Scalar `json:"from_address"`
	ToAddress      Scalar `json:"to_address"`
	TransferType   Scalar `json:"transfer_type"`
	BlockTimestamp Scalar `json:"block_timestamp"`
	Quantity       Scalar `json:"quantity"`
}
