package domain

// Table is a mongo collection name
type Table string

const (
	TableListings       Table = "listings"
	TableEscrowBalances Table = "escrow_balances"
	TableMarketConfig   Table = "market_config"
)

const (
	TableAssetCollections Table = "asset_collections"
	TableAssetTokens      Table = "asset_tokens"
	TableAssetOperators   Table = "asset_operators"
	TableWalletBalances   Table = "wallet_balances"
)

const (
	TableCounters Table = "counters"
	TableEvents   Table = "events"
)
