package domain

// TxKind classifies a transaction for the type breakdown.
type TxKind int

const (
	KindContractCall TxKind = iota
	KindValueTransfer
	KindFailed
)

func (k TxKind) String() string {
	switch k {
	case KindContractCall:
		return "Contract Call"
	case KindValueTransfer:
		return "Value Transfer"
	case KindFailed:
		return "Failed Transaction"
	default:
		return "unknown"
	}
}
