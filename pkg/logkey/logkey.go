package logkey

// Keys shared by every slog call so log lines can be joined on them.
const (
	TraceID     = "TRACE ID"
	ERROR       = "ERROR"
	Username    = "Username"
	ProductID   = "ProductID"
	OrderID     = "OrderID"
	SessionID   = "SessionID"
	ComplaintID = "ComplaintID"
)
