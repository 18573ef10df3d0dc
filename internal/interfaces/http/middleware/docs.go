package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inmobiliaria/backend/internal/interfaces/http/dto"
)

// docsCSP relaxes the API policy set by Secure just enough for the Swagger UI
const docsCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline'; img-src 'self' data:"

// DocsGuardConfig configures DocsGuard
type DocsGuardConfig struct {
	// AllowedIPs holds addresses or CIDR ranges. Empty allows every client.
	AllowedIPs []string
	// Auth, when set, runs before the docs are served (typically JWTAuth)
	Auth gin.HandlerFunc
}

// DocsGuard restricts the API documentation routes by client address and,
// optionally, by access token. Unparseable entries in AllowedIPs are ignored.
func DocsGuard(cfg DocsGuardConfig) gin.HandlerFunc {
	prefixes := make([]netip.Prefix, 0, len(cfg.AllowedIPs))
	for _, entry := range cfg.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if p, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if restricted && !addrAllowed(c.ClientIP(), prefixes) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "API documentation is restricted")
			return
		}
		if cfg.Auth != nil {
			cfg.Auth(c)
			if c.IsAborted() {
				return
			}
		}
		c.Writer.Header().Set("Content-Security-Policy", docsCSP)
		c.Next()
	}
}

func addrAllowed(clientIP string, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
