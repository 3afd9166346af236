package constants

const (
	Create     = "CREATE"
	Update     = "UPDATE"
	Delete     = "DELETE"
	Deactivate = "DEACTIVATE"

	Borrow      = "BORROW"
	Return      = "RETURN"
	Renew       = "RENEW"
	Reserve     = "RESERVE"
	MarkReady   = "MARK_READY"
	Complete    = "COMPLETE"
	Cancel      = "CANCEL"
	Expire      = "EXPIRE"
	IssueFine   = "ISSUE_FINE"
	WaiveFine   = "WAIVE_FINE"
	PayFine     = "PAY_FINE"
	AdjustStock = "ADJUST_STOCK"
)
