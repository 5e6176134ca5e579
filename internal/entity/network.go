package entity

import (
	"fmt"
	"strings"
)

// Network selects which deployment of the upstream vault API a request targets.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// ParseNetwork validates a raw network selector. An empty value defaults to
// mainnet; anything else outside the enum is rejected.
func ParseNetwork(raw string) (Network, error) {
	network := Network(strings.ToLower(strings.TrimSpace(raw)))
	switch network {
	case NetworkMainnet, NetworkTestnet:
		return network, nil
	case "":
		return NetworkMainnet, nil
	default:
		return "", fmt.Errorf("unknown network %q: must be %q or %q", raw, NetworkMainnet, NetworkTestnet)
	}
}

func (n Network) String() string {
	return string(n)
}
