package public

import (
	"github.com/account-activation/internal/http/response"

	"github.com/gin-gonic/gin"
)

const basicAuthRealm = `Basic realm="accounts"`

// basicCredentials 读取 Basic 认证信息，缺失时直接返回 401
func basicCredentials(c *gin.Context) (string, string, bool) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		c.Header("WWW-Authenticate", basicAuthRealm)
		response.Unauthorized(c, msgInvalidCredentials)
		return "", "", false
	}
	return email, password, true
}
