package tushare

// apiRequest is the wire request: every endpoint is a POST against the base
// URL with the endpoint name in the body.
type apiRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields,omitempty"`
}

// apiResponse is the wire response; code 0 means success.
type apiResponse struct {
	RequestID string   `json:"request_id"`
	Code      int      `json:"code"`
	Msg       string   `json:"msg"`
	Data      *apiData `json:"data"`
}

type apiData struct {
	Fields  []string `json:"fields"`
	Items   [][]any  `json:"items"`
	HasMore bool     `json:"has_more"`
}

// APIError is a non-zero response code from the remote service.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return e.Msg
}
