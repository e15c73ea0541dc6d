package domain

// TxStatus is the lifecycle state of a transaction handle.
type TxStatus string

const (
	TxOpen       TxStatus = "open"
	TxCommitted  TxStatus = "committed"
	TxRolledBack TxStatus = "rolled_back"
)

// Closed reports whether the handle was already committed or rolled back.
func (s TxStatus) Closed() bool {
	return s == TxCommitted || s == TxRolledBack
}
