package types

// Enum values for cross-chain transfer records
type TransferState string

const (
	// TransferStatePending: burned locally, message not yet handed to the transport.
	TransferStatePending TransferState = "PENDING"
	// TransferStateSent: message handed to the transport, destination leg unknown.
	TransferStateSent TransferState = "SENT"
	// TransferStateCompleted: destination leg minted.
	TransferStateCompleted TransferState = "COMPLETED"
	// TransferStateFailed: destination leg rejected the message (bad pool data).
	TransferStateFailed TransferState = "FAILED"
)

func (s TransferState) String() string {
	return string(s)
}
