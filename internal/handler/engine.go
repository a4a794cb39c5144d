package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// EngineConfig tunes the gin engine before middleware is attached.
type EngineConfig struct {
	// TrustedProxies lists proxy addresses or CIDRs whose forwarding headers
	// are honoured. Empty means the peer address is the client address.
	TrustedProxies     []string
	MaxMultipartMemory int64
}

// NewEngine returns a bare gin engine with proxy trust configured.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	r := gin.New()
	if cfg.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipartMemory
	}
	var proxies []string
	if len(cfg.TrustedProxies) > 0 {
		proxies = cfg.TrustedProxies
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	return r, nil
}
