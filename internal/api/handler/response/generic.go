package response

// APIError is the uniform failure envelope. ErrorCode is set for soft,
// recoverable conditions ("user_exists"); Output carries captured process
// output when a pmm-admin invocation failed.
type APIError struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	Username  string `json:"username,omitempty"`
	Output    string `json:"output,omitempty"`
}

// Status is the minimal success envelope.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
