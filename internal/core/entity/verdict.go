package entity

// Verdict records the outcome of one conformance check.
type Verdict struct {
	Kind        string `json:"kind"`
	SubjectHash string `json:"subject_hash"`
	Number      uint64 `json:"number,omitempty"`
	Passed      bool   `json:"passed"`
	Reason      string `json:"reason,omitempty"`
	CheckedAtMS int64  `json:"checked_at_ms"`
}

// Verdict kinds.
const (
	KindBlock       = "block"
	KindTransaction = "transaction"
	KindReceipt     = "receipt"
	KindWithdrawal  = "withdrawal"
)
