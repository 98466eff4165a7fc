package auth

import "github.com/gin-gonic/gin"

// Content security policies. Rune previews run user scripts, so they are
// served with a policy that allows inline code but keeps the document in an
// opaque origin through the sandbox directive.
const (
	apiCSP     = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	previewCSP = "default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; " +
		"img-src data: https:; font-src data: https:; sandbox allow-scripts; base-uri 'none'"
)

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", apiCSP)
		c.Header("Permissions-Policy",
			"accelerometer=(), camera=(), geolocation=(), gyroscope=(), "+
				"magnetometer=(), microphone=(), payment=(), usb=()")

		c.Next()
	}
}

// PreviewHeaders relaxes framing and scripting for sandboxed preview documents.
// It must run after SecurityHeadersMiddleware.
func PreviewHeaders(c *gin.Context) {
	c.Header("X-Frame-Options", "SAMEORIGIN")
	c.Header("Content-Security-Policy", previewCSP)
	c.Next()
}

// StrictTransportSecurityMiddleware adds HSTS header for HTTPS-only access.
// Only enable this when serving over HTTPS, as it will break HTTP access.
func StrictTransportSecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
