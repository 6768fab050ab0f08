// Package view turns lookup state into the NFT card and the transfer table
// and renders them as HTML or plain text.
package view

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kpozdnikin/nft-history/internal/domain"
	"github.com/kpozdnikin/nft-history/internal/service"
)

const (
	NotAvailable     = "N/A"
	ImageUnavailable = "Image not available."

	ShadedRow = "#f2f2f2"
	PlainRow  = "white"

	usdPlaces    = 2
	nativePlaces = 5
)

var TableHeader = []string{"From", "To", "Transfer Type", "Block Timestamp", "Quantity"}

// Card is the NFT summary region. When Visible is false nothing is shown;
// when HasRecord is false only Error is shown.
type Card struct {
	Visible   bool
	HasRecord bool
	Error     string
	Name      string
	ImageURL  string
	Summary   string
}

// NewCard builds the card for the last lookup result.
func NewCard(result service.ResultState) Card {
	if !result.NFTFetched {
		return Card{}
	}
	if result.NFT == nil {
		return Card{Visible: true, Error: result.Error}
	}

	nft := result.NFT
	return Card{
		Visible:   true,
		HasRecord: true,
		Name:      nft.Name.String(),
		ImageURL:  nft.MediumImage(),
		Summary:   Summary(nft),
	}
}

// Summary is the one-line description under the NFT image.
func Summary(nft *domain.NFT) string {
	return fmt.Sprintf("Id: %s | Token Name: %s | Rarity: %s | Recent Price USD: %s | Recent Price Native Currency: %s",
		orNA(nft.ID),
		orNA(nft.TokenName),
		orNA(nft.RarityRank),
		priceUSD(nft.RecentPrice),
		priceNative(nft.RecentPrice),
	)
}

func priceUSD(price *domain.RecentPrice) string {
	if price == nil || !price.PriceUSD.Present() {
		return NotAvailable
	}
	return Fixed(price.PriceUSD.String(), usdPlaces)
}

func priceNative(price *domain.RecentPrice) string {
	if price == nil || !price.Price.Present() {
		return NotAvailable
	}
	amount := Fixed(price.Price.String(), nativePlaces)
	if amount == NotAvailable {
		return amount
	}
	return strings.TrimSpace(amount + " " + price.PriceCurrency.String())
}

// Fixed formats a decimal string with exactly places digits after the point.
// Values that are not numbers yield NotAvailable.
func Fixed(value string, places int32) string {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return NotAvailable
	}
	return d.StringFixed(places)
}

// Table is the transfer history region. When Visible is false nothing is
// shown; a visible table may have no rows.
type Table struct {
	Visible bool
	Rows    []Row
}

type Row struct {
	Background     string
	From           string
	To             string
	TransferType   string
	BlockTimestamp string
	Quantity       string
}

func (r Row) Cells() []string {
	return []string{r.From, r.To, r.TransferType, r.BlockTimestamp, r.Quantity}
}

// NewTable builds one row per transfer in the given order.
func NewTable(transfers []domain.Transfer) Table {
	if transfers == nil {
		return Table{}
	}

	rows := make([]Row, 0, len(transfers))
	for i, transfer := range transfers {
		background := ShadedRow
		if i%2 == 1 {
			background = PlainRow
		}
		rows = append(rows, Row{
			Background:     background,
			From:           orNA(transfer.FromAddress),
			To:             orNA(transfer.ToAddress),
			TransferType:   orNA(transfer.TransferType),
			BlockTimestamp: orNA(transfer.BlockTimestamp),
			Quantity:       orNA(transfer.Quantity),
		})
	}
	return Table{Visible: true, Rows: rows}
}

func orNA(value domain.Scalar) string {
	if !value.Present() {
		return NotAvailable
	}
	return value.String()
}

type ChainOption struct {
	Value    string
	Selected bool
}

// Page is everything the lookup page shows.
type Page struct {
	Chains   []ChainOption
	Contract string
	TokenID  string
	Loading  bool
	Card     Card
	Table    Table
}

func NewPage(state service.State) Page {
	chains := make([]ChainOption, 0, len(domain.SupportedChains))
	for _, chain := range domain.SupportedChains {
		chains = append(chains, ChainOption{
			Value:    chain.String(),
			Selected: chain == state.Form.Chain,
		})
	}

	return Page{
		Chains:   chains,
		Contract: state.Form.Contract,
		TokenID:  state.Form.TokenID,
		Loading:  state.Form.Loading,
		Card:     NewCard(state.Result),
		Table:    NewTable(state.Result.Transfers),
	}
}
