package response

const (
	CodeOK                 = 0
	CodeBadRequest         = 400
	CodeUnauthorized       = 401
	CodeNotFound           = 404
	CodeMethodNotAllowed   = 405
	CodeUnprocessable      = 422
	CodeInternal           = 500
	CodeServiceUnavailable = 503
)
