package types

import (
	sdkmath "cosmossdk.io/math"
)

// ChainSelector identifies one of the independently-finalized ledgers.
type ChainSelector uint64

// LockOrBurnIn is the source-leg input of a cross-chain transfer.
type LockOrBurnIn struct {
	Sender              Address
	Amount              sdkmath.Int
	RemoteChainSelector ChainSelector
}

// LockOrBurnOut is what the source pool hands to the transport: the token
// address on the destination chain and the sender's encoded interest rate.
type LockOrBurnOut struct {
	DestTokenAddress Address
	DestPoolData     []byte
}

// ReleaseOrMintIn is the destination-leg input, reconstructed from a
// delivered message.
type ReleaseOrMintIn struct {
	Receiver            Address
	Amount              sdkmath.Int
	SourceChainSelector ChainSelector
	SourcePoolAddress   Address
	SourcePoolData      []byte
}

// ReleaseOrMintOut reports the minted amount back to the transport.
type ReleaseOrMintOut struct {
	DestinationAmount sdkmath.Int
}
