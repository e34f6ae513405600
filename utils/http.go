// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// GatewayHTTPClient is shared by the payment gateway wrappers. 15s is the
// client-side ceiling for Flouci's redirect API; slower calls are treated as
// failed and surfaced as {success:false} values.
var GatewayHTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}
