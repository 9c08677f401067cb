package utils

import (
	"net"
	"net/http"
	"time"
)

// GlobalHTTPClient is the shared HTTP client used for all outbound requests
// (Roblox API, webhook logging). Pooled connections, bounded timeouts.
var GlobalHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: 30 * time.Second,
}
