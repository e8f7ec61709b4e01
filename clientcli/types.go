package clientcli

// PresignOp selects which presign endpoint to call.
type PresignOp string

const (
	OpGet    PresignOp = "get"
	OpPut    PresignOp = "put"
	OpPost   PresignOp = "post"
	OpDelete PresignOp = "delete"
)

// PresignOptions configures a presign request.
type PresignOptions struct {
	Bucket     string
	Key        string
	Expiration int // seconds, 0 = server default
}

// PresignResult is the gateway's response for GET/PUT/DELETE presigns.
type PresignResult struct {
	URL string `json:"url"`
}

// PostPolicyResult is the gateway's response for POST presigns.
type PostPolicyResult struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// ListOptions configures a bucket listing.
type ListOptions struct {
	Bucket string
	Prefix string
}

// ObjectInfo is one entry of a bucket listing.
type ObjectInfo struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// ListResult is the gateway's bucket-listing response.
type ListResult struct {
	Objects []ObjectInfo `json:"objects"`
}

// tokenResponse mirrors the login response in password mode.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// errorResponse mirrors the gateway's JSON error body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
