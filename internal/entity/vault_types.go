package entity

// Types in this file mirror the upstream vault API responses. The upstream is
// dynamically typed and omits fields freely, so every struct here is
// absent-tolerant: missing keys decode to zero values or nil pointers and no
// field is validated beyond what display logic actually reads.

// VaultInfo is the static/descriptive record for a vault.
type VaultInfo struct {
	Address string  `json:"address"`
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol"`
	APY     float64 `json:"apy"` // percentage, not a fraction
	Roles   Roles   `json:"roles"`
	Fees    Fees    `json:"fees"`
	Assets  []Asset `json:"assets"`
}

// Roles holds the administrative addresses of a vault.
type Roles struct {
	Manager          string `json:"manager"`
	EmergencyManager string `json:"emergencyManager"`
	RebalanceManager string `json:"rebalanceManager"`
	FeeReceiver      string `json:"feeReceiver"`
}

// Fees holds the vault fee structure in basis points.
type Fees struct {
	VaultFeeBps    float64 `json:"vaultFee"`
	ProtocolFeeBps float64 `json:"protocolFee"`
}

// Asset is one underlying asset held by a vault together with the strategies
// it may be allocated to.
type Asset struct {
	Address    string     `json:"address"`
	Name       string     `json:"name"`
	Symbol     string     `json:"symbol"`
	Strategies []Strategy `json:"strategies"`
}

// Strategy is a sub-allocation target of a vault asset.
type Strategy struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Paused  bool   `json:"paused"`
}

// VaultAPY is the APY snapshot endpoint response. The apy value is a plain
// percentage number (12.34 means 12.34%), matching the vault-info field.
type VaultAPY struct {
	Address string  `json:"address"`
	APY     float64 `json:"apy"`
	Period  string  `json:"period,omitempty"`
}

// VaultBalance is one user's position in a vault. Amounts are raw on-chain
// stroop integers serialized as strings.
type VaultBalance struct {
	Address         string `json:"address"`
	UserAddress     string `json:"userAddress"`
	Shares          string `json:"shares"`
	UnderlyingValue string `json:"underlyingValue"`
}

// FactoryAddress is the deployment record of the vault factory contract on a
// given network.
type FactoryAddress struct {
	Address string `json:"address"`
	Network string `json:"network,omitempty"`
}
